package cli

import (
	"github.com/jlrickert/labeler/pkg/internal"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewAnnotateCmd(deps *Deps) *cobra.Command {
	var opts labeler.AnnotateOptions

	cmd := &cobra.Command{
		Use:   "annotate [FOLDER]",
		Short: "label images one at a time",
		Long: `Walk through the images of a folder and edit their labels.

Type help inside the session for the list of commands. Changes are saved
after every edit unless autosave is turned off in the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = folderOptions(deps, args)
			stream := deps.Runtime.Stream()
			opts.In = cmd.InOrStdin()
			opts.Out = cmd.OutOrStdout()
			opts.Prompt = !stream.IsPiped && (stream.IsTTY || internal.IsTerminal(stream.In))
			return deps.Labeler.Annotate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "image to start on")

	return cmd
}
