package cli

import (
	"fmt"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewExportCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "export DEST",
		Short: "write the folder's annotations to another file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Labeler.Export(cmd.Context(), labeler.ExportOptions{
				FolderOptions: labeler.FolderOptions{Folder: deps.Folder},
				Dest:          args[0],
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return err
		},
	}
}

func NewSaveCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "rewrite the annotation file in the canonical layout",
		Long: `Load the folder's annotation file and write it back in the canonical
layout. Legacy "filename" keys become "image", records of missing images are
dropped and duplicate labels are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Labeler.Save(cmd.Context(), labeler.FolderOptions{Folder: deps.Folder})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return err
		},
	}
}
