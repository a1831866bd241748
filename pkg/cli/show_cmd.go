package cli

import (
	"fmt"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewShowCmd(deps *Deps) *cobra.Command {
	var opts labeler.ShowOptions

	cmd := &cobra.Command{
		Use:   "show [IMAGE]",
		Short: "show the labels of an image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = labeler.FolderOptions{Folder: deps.Folder}
			if len(args) > 0 {
				opts.Image = args[0]
			}
			res, err := deps.Labeler.Show(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Image == "" {
				_, err = fmt.Fprintln(out, res.Position)
				return err
			}
			_, err = fmt.Fprintf(out, "%s: %s\nLabels: %s\n", res.Position, res.Image, labeler.FormatLabels(res.Labels))
			return err
		},
		ValidArgsFunction: completeImages(deps),
	}

	return cmd
}
