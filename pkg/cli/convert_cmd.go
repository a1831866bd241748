package cli

import (
	"fmt"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewConvertCmd(deps *Deps) *cobra.Command {
	var opts labeler.ConvertOptions

	cmd := &cobra.Command{
		Use:   "convert IN [OUT]",
		Short: "convert a legacy annotation file",
		Long: `Rewrite an annotation file that uses the legacy "filename" key so that
every record uses "image". Without OUT the file is converted in place.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.In = args[0]
			if len(args) > 1 {
				opts.Out = args[1]
			}
			res, err := deps.Labeler.Convert(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Converted %d records to %s\n", res.Records, res.Out)
			return err
		},
	}

	cmd.Flags().IntVar(&opts.Indent, "indent", 0, "JSON indentation width (default from config)")

	return cmd
}
