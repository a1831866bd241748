package cli

import (
	"fmt"
	"io"

	"github.com/jlrickert/labeler/pkg/dataset"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/cobra"
)

func NewSplitCmd(deps *Deps) *cobra.Command {
	var opts labeler.SplitOptions
	var seed uint64

	cmd := &cobra.Command{
		Use:   "split [FOLDER]",
		Short: "copy a random train/test split of a folder",
		Long: `Copy a random selection of images into a training and a testing folder,
each with its own annotation file. When the folder holds fewer images than
requested, both counts shrink proportionally. Pass --seed to repeat a split.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.FolderOptions = folderOptions(deps, args)
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			res, err := deps.Labeler.Split(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printSplit(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&opts.Train, "train", 0, "number of training images")
	cmd.Flags().IntVar(&opts.Test, "test", 0, "number of testing images")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default random, printed)")
	cmd.Flags().StringVar(&opts.TrainDir, "train-dir", "", "training folder (default FOLDER/"+dataset.DefaultTrainDir+")")
	cmd.Flags().StringVar(&opts.TestDir, "test-dir", "", "testing folder (default FOLDER/"+dataset.DefaultTestDir+")")

	return cmd
}

func printSplit(out io.Writer, res dataset.SplitResult) error {
	if res.Shrunk {
		fmt.Fprintf(out, "Requested %d training and %d testing images but only %d are available\n",
			res.RequestedTrain, res.RequestedTest, res.Available)
	}
	for _, part := range []struct {
		name string
		part dataset.SplitPart
	}{
		{"Training", res.Train},
		{"Testing", res.Test},
	} {
		fmt.Fprintf(out, "%s: %d images (%d annotated) in %s\n",
			part.name, len(part.part.Images), part.part.Annotated, part.part.Dir)
	}
	_, err := fmt.Fprintf(out, "Seed: %d\n", res.Seed)
	return err
}
