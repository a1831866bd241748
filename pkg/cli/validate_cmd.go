package cli

import (
	"errors"
	"fmt"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

var errInvalidFile = errors.New("annotation file has problems")

func NewValidateCmd(deps *Deps) *cobra.Command {
	var opts labeler.ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "check an annotation file strictly",
		Long: `Check an annotation file against the annotation schema. Without FILE the
folder's own file is checked and records of missing images are reported too.
Exits non-zero when anything is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = labeler.FolderOptions{Folder: deps.Folder}
			if len(args) > 0 {
				opts.File = args[0]
			}
			res, err := deps.Labeler.Validate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Valid() {
				_, err = fmt.Fprintf(out, "%s: ok\n", res.Path)
				return err
			}
			fmt.Fprintf(out, "%s:\n", res.Path)
			for _, v := range res.Violations {
				fmt.Fprintf(out, "  %s\n", v)
			}
			for _, name := range res.Orphans {
				fmt.Fprintf(out, "  record for missing image %q\n", name)
			}
			return errInvalidFile
		},
	}

	return cmd
}
