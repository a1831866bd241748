package cli

import (
	"fmt"
	"io"

	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

// NewAddCmd returns the `add` command.
func NewAddCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "add IMAGE TAG...",
		Short: "add labels to an image",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Labeler.Add(cmd.Context(), editOptions(deps, args))
			if err != nil {
				return err
			}
			return printEdit(cmd.OutOrStdout(), res)
		},
		ValidArgsFunction: completeImages(deps),
	}
}

// NewRmCmd returns the `rm` command.
func NewRmCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rm IMAGE TAG...",
		Short: "remove labels from an image",
		Long:  "Remove labels from an image. The image file itself is never touched; see prune for that.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Labeler.Remove(cmd.Context(), editOptions(deps, args))
			if err != nil {
				return err
			}
			return printEdit(cmd.OutOrStdout(), res)
		},
		ValidArgsFunction: completeImages(deps),
	}
}

func editOptions(deps *Deps, args []string) labeler.EditOptions {
	return labeler.EditOptions{
		FolderOptions: labeler.FolderOptions{Folder: deps.Folder},
		Image:         args[0],
		Tags:          args[1:],
	}
}

func printEdit(out io.Writer, res labeler.EditResult) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", res.Image, labeler.FormatLabels(res.Labels))
	return err
}

// completeImages offers image names of the folder for the first argument.
func completeImages(deps *Deps) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 || deps.Labeler == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		items, err := deps.Labeler.List(cmd.Context(), labeler.ListOptions{
			FolderOptions: labeler.FolderOptions{Folder: deps.Folder},
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.Image)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
