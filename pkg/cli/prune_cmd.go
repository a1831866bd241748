package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jlrickert/labeler/pkg/dataset"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

// previewLimit is how many selected images the confirmation lists.
const previewLimit = 5

func NewPruneCmd(deps *Deps) *cobra.Command {
	var opts labeler.PruneOptions
	var seed uint64
	var yes bool

	cmd := &cobra.Command{
		Use:   "prune [FOLDER]",
		Short: "delete random images carrying a tag",
		Long: `Pick up to --count images at random whose labels include --tag (or match
--match) and delete them from disk together with their records.

The selection is shown and must be confirmed by typing yes, unless --yes is
given. --dry-run only shows what would be deleted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = folderOptions(deps, args)
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			out := cmd.OutOrStdout()
			if !yes {
				opts.Confirm = confirmRemoval(cmd.InOrStdin(), out)
			}
			res, err := deps.Labeler.Prune(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printPrune(out, res)
		},
	}

	cmd.Flags().StringVarP(&opts.Tag, "tag", "t", "", "delete images carrying this label")
	cmd.Flags().StringVarP(&opts.Expr, "match", "m", "", "delete images matching a tag expression")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "maximum number of images to delete")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default random)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the selection without deleting")
	cmd.MarkFlagsMutuallyExclusive("tag", "match")
	cmd.MarkFlagsOneRequired("tag", "match")
	_ = cmd.MarkFlagRequired("count")
	_ = cmd.RegisterFlagCompletionFunc("tag", completeTags(deps))

	return cmd
}

func confirmRemoval(in io.Reader, out io.Writer) dataset.ConfirmFunc {
	return func(ctx context.Context, selected []string) (bool, error) {
		fmt.Fprintf(out, "About to delete %d images:\n", len(selected))
		printPreview(out, selected)
		fmt.Fprint(out, "Type yes to continue: ")

		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("unable to read confirmation: %w", err)
		}
		fmt.Fprintln(out)
		return strings.EqualFold(strings.TrimSpace(answer), "yes"), nil
	}
}

func printPreview(out io.Writer, names []string) {
	for _, name := range names[:min(previewLimit, len(names))] {
		fmt.Fprintf(out, "  %s\n", name)
	}
	if len(names) > previewLimit {
		fmt.Fprintf(out, "  ... and %d more\n", len(names)-previewLimit)
	}
}

func printPrune(out io.Writer, res dataset.RemoveResult) error {
	if res.Matched == 0 {
		_, err := fmt.Fprintln(out, "No images matched")
		return err
	}
	if res.DryRun {
		fmt.Fprintf(out, "Would delete %d of %d matching images:\n", len(res.Selected), res.Matched)
		for _, name := range res.Selected {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	}
	fmt.Fprintf(out, "Deleted %d of %d matching images\n", len(res.Deleted), res.Matched)
	for _, name := range res.Missing {
		fmt.Fprintf(out, "  already gone: %s\n", name)
	}
	for _, itemErr := range res.Failed {
		fmt.Fprintf(out, "  failed: %v\n", itemErr)
	}
	_, err := fmt.Fprintf(out, "Records: %d -> %d in %s\n", res.RecordsBefore, res.RecordsAfter, res.Path)
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d images could not be deleted", len(res.Failed))
	}
	return nil
}
