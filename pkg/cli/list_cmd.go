package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewListCmd(deps *Deps) *cobra.Command {
	opts := labeler.ListOptions{}
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list images and their labels",
		Long: `List the images of the folder in navigation order.

--match takes a tag expression: and, or, not, parentheses and quotes for
tags with spaces, e.g. --match 'Car and not "Traffic light"'.`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = labeler.FolderOptions{Folder: deps.Folder}
			items, err := deps.Labeler.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if namesOnly {
				for _, it := range items {
					fmt.Fprintln(out, it.Image)
				}
				return nil
			}
			if len(items) == 0 {
				_, err = fmt.Fprintln(out, "No images found")
				return err
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"#", "image", "labels"})
			for _, it := range items {
				tw.AppendRow(table.Row{it.Index, it.Image, strings.Join(it.Labels, ", ")})
			}
			_, err = fmt.Fprintln(out, tw.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.Labeled, "labeled", false, "only images with labels")
	cmd.Flags().BoolVar(&opts.Unlabeled, "unlabeled", false, "only images without labels")
	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "", "only images carrying this label")
	cmd.Flags().StringVarP(&opts.Expr, "match", "m", "", "only images matching a tag expression")
	cmd.Flags().BoolVar(&namesOnly, "names", false, "print image names only")
	cmd.MarkFlagsMutuallyExclusive("labeled", "unlabeled")

	_ = cmd.RegisterFlagCompletionFunc("tag", completeTags(deps))

	return cmd
}
