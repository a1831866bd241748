package cli

import (
	"fmt"
	"strings"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewTagsCmd(deps *Deps) *cobra.Command {
	var opts labeler.TagsOptions

	cmd := &cobra.Command{
		Use:   "tags [EXPR]",
		Short: "list known tags or the images matching an expression",
		Long: `Without arguments, list the tag vocabulary: default tags from the config
plus every label in use. With an expression, list the images whose labels
match it, e.g. labeler tags 'Car and not Bridge'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = labeler.FolderOptions{Folder: deps.Folder}
			opts.Expr = strings.Join(args, " ")
			items, err := deps.Labeler.Tags(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintln(cmd.OutOrStdout(), it)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Prefix, "prefix", "p", "", "only tags starting with prefix")

	return cmd
}

func completeTags(deps *Deps) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if deps.Labeler == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		tags, err := deps.Labeler.Tags(cmd.Context(), labeler.TagsOptions{
			FolderOptions: labeler.FolderOptions{Folder: deps.Folder},
			Prefix:        toComplete,
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return tags, cobra.ShellCompDirectiveNoFileComp
	}
}
