package cli

import (
	"fmt"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewWatchCmd(deps *Deps) *cobra.Command {
	var opts labeler.WatchOptions

	cmd := &cobra.Command{
		Use:   "watch [FOLDER]",
		Short: "report label coverage whenever the folder changes",
		Long: `Watch a folder and reload it whenever an image or the annotation file
changes, printing a one-line summary after every reload. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = folderOptions(deps, args)
			out := cmd.OutOrStdout()
			opts.OnLoad = func(s *annotation.Session, report annotation.LoadReport) {
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "Warning: %v\n", w)
				}
				fmt.Fprintf(out, "%s: %d of %d images labeled, %d tags\n",
					s.Folder, s.Labeled(), s.Len(), len(s.Tags()))
			}
			return deps.Labeler.Watch(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", labeler.DefaultWatchDebounce, "quiet period before a reload")

	return cmd
}
