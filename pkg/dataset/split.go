package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTrainDir    = "training"
	DefaultTestDir     = "testing"
	DefaultConcurrency = 4
)

// SplitOptions configures Split.
type SplitOptions struct {
	// Source is the folder holding the images and their annotation file.
	Source string
	Train  int
	Test   int
	Seed   uint64
	// TrainDir and TestDir are resolved against Source when relative.
	TrainDir       string
	TestDir        string
	AnnotationFile string
	Indent         int
	// Concurrency bounds parallel file copies.
	Concurrency int
}

func (o SplitOptions) withDefaults() SplitOptions {
	if o.TrainDir == "" {
		o.TrainDir = DefaultTrainDir
	}
	if o.TestDir == "" {
		o.TestDir = DefaultTestDir
	}
	o.Source = filepath.Clean(o.Source)
	if !filepath.IsAbs(o.TrainDir) {
		o.TrainDir = filepath.Join(o.Source, o.TrainDir)
	}
	if !filepath.IsAbs(o.TestDir) {
		o.TestDir = filepath.Join(o.Source, o.TestDir)
	}
	o.TrainDir = filepath.Clean(o.TrainDir)
	o.TestDir = filepath.Clean(o.TestDir)
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// SplitPart is one side of a finished split.
type SplitPart struct {
	Dir    string
	Images []string
	// Annotated counts the images that carried labels in the source.
	Annotated int
}

// SplitResult describes a finished split.
type SplitResult struct {
	Seed      uint64
	Available int
	// RequestedTrain and RequestedTest are the counts before shrinking.
	RequestedTrain int
	RequestedTest  int
	Shrunk         bool
	Train          SplitPart
	Test           SplitPart
}

// ShrinkCounts fits a train/test request into available images. When the
// request fits it is returned unchanged. Otherwise both counts are scaled by
// available/(train+test) and floored; the at most one image lost to flooring
// goes to the larger request, or to train on a tie. Negative values count as
// zero.
func ShrinkCounts(available, train, test int) (int, int) {
	available, train, test = max(available, 0), max(train, 0), max(test, 0)
	total := uint64(train) + uint64(test)
	if total <= uint64(available) {
		return train, test
	}
	newTrain := scaleCount(train, available, total)
	newTest := scaleCount(test, available, total)
	if rest := available - newTrain - newTest; rest > 0 {
		if test > train {
			newTest += rest
		} else {
			newTrain += rest
		}
	}
	return newTrain, newTest
}

// scaleCount returns floor(n*available/total) without overflowing. total
// must exceed available.
func scaleCount(n, available int, total uint64) int {
	hi, lo := bits.Mul64(uint64(n), uint64(available))
	q, _ := bits.Div64(hi, lo, total)
	return int(q)
}

// Split partitions the images of Source into two disjoint random subsets,
// copies them into the train and test folders and writes a filtered
// annotation file into each. The image list is sorted before the seeded
// shuffle so a seed reproduces the same split for the same folder. The test
// subset is taken first.
func Split(ctx context.Context, fs afero.Fs, opts SplitOptions) (SplitResult, error) {
	lg := mylog.LoggerFromContext(ctx)
	opts = opts.withDefaults()
	res := SplitResult{
		Seed:           opts.Seed,
		RequestedTrain: opts.Train,
		RequestedTest:  opts.Test,
	}
	if opts.Train < 0 || opts.Test < 0 {
		return res, invalidOptions("split counts must not be negative (train=%d, test=%d)", opts.Train, opts.Test)
	}
	if opts.TrainDir == opts.TestDir {
		return res, invalidOptions("train and test folders must differ")
	}
	for _, dir := range []string{opts.TrainDir, opts.TestDir} {
		if dir == opts.Source {
			return res, invalidOptions("split folder %s must differ from the source folder", dir)
		}
	}

	store, report := annotation.LoadStore(ctx, fs, opts.Source, annotation.StoreOptions{
		AnnotationFile: opts.AnnotationFile,
		Indent:         opts.Indent,
	})
	for _, w := range report.Warnings {
		if errors.Is(w, annotation.ErrCorruptAnnotations) {
			return res, w
		}
	}
	images := store.Files()
	if len(images) == 0 {
		if err := report.Warning(); err != nil {
			return res, err
		}
	}

	res.Available = len(images)
	train, test := ShrinkCounts(len(images), opts.Train, opts.Test)
	res.Shrunk = train != opts.Train || test != opts.Test
	if res.Shrunk {
		lg.Warn("not enough images, shrinking split",
			"available", len(images), "train", train, "test", test)
	}

	order := shuffled(images, opts.Seed)
	res.Test = SplitPart{Dir: opts.TestDir, Images: order[:test]}
	res.Train = SplitPart{Dir: opts.TrainDir, Images: order[test : test+train]}

	for _, part := range []*SplitPart{&res.Train, &res.Test} {
		if err := fs.MkdirAll(part.Dir, 0o755); err != nil {
			return res, fmt.Errorf("unable to create %s: %w", part.Dir, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, part := range []SplitPart{res.Train, res.Test} {
		for _, name := range part.Images {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				src := filepath.Join(opts.Source, name)
				dst := filepath.Join(part.Dir, name)
				if err := copyFile(fs, src, dst); err != nil {
					return &ItemError{Image: name, Err: err}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, part := range []*SplitPart{&res.Train, &res.Test} {
		n, err := writeSubset(ctx, fs, store, part, opts)
		if err != nil {
			return res, err
		}
		part.Annotated = n
	}

	lg.Info("dataset split",
		"source", opts.Source, "seed", opts.Seed,
		"train", len(res.Train.Images), "test", len(res.Test.Images))
	return res, nil
}

// writeSubset saves the labels of part's images into part.Dir. The file is
// written even when no image is labeled so every split folder has one.
func writeSubset(ctx context.Context, fs afero.Fs, src *annotation.Store, part *SplitPart, opts SplitOptions) (int, error) {
	sub := annotation.NewStore(fs, part.Images, annotation.StoreOptions{
		AnnotationFile: opts.AnnotationFile,
		Indent:         opts.Indent,
	})
	for _, name := range part.Images {
		if err := sub.SetLabels(name, src.Labels(name)); err != nil {
			return 0, err
		}
	}
	if err := sub.Save(ctx, part.Dir); err != nil {
		return 0, err
	}
	return sub.Labeled(), nil
}

// copyFile copies contents, mode and modification time.
func copyFile(fs afero.Fs, src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("refusing to copy %s onto itself", src)
	}
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
