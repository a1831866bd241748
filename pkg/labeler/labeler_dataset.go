package labeler

import (
	"context"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/dataset"
)

type ConvertOptions struct {
	In string
	// Out defaults to In.
	Out    string
	Indent int
}

func (l *Labeler) Convert(ctx context.Context, opts ConvertOptions) (dataset.ConvertResult, error) {
	in, err := l.ResolvePath(opts.In)
	if err != nil {
		return dataset.ConvertResult{}, err
	}
	out := ""
	if opts.Out != "" {
		if out, err = l.ResolvePath(opts.Out); err != nil {
			return dataset.ConvertResult{}, err
		}
	}
	indent := opts.Indent
	if indent <= 0 {
		cfg, err := l.UserConfig(ctx)
		if err != nil {
			return dataset.ConvertResult{}, err
		}
		indent = DefaultConfig().Merge(cfg).Indent
	}
	return dataset.Convert(ctx, l.FS, in, out, indent)
}

type SplitOptions struct {
	FolderOptions

	Train int
	Test  int
	// Seed makes the split reproducible. Nil picks a random seed, which is
	// reported in the result.
	Seed     *uint64
	TrainDir string
	TestDir  string
}

func (l *Labeler) Split(ctx context.Context, opts SplitOptions) (dataset.SplitResult, error) {
	folder, err := l.ResolvePath(opts.Folder)
	if err != nil {
		return dataset.SplitResult{}, err
	}
	cfg, err := l.FolderConfig(ctx, folder)
	if err != nil {
		return dataset.SplitResult{}, err
	}
	so := dataset.SplitOptions{
		Source:         folder,
		Train:          opts.Train,
		Test:           opts.Test,
		Seed:           seedOrRandom(opts.Seed),
		AnnotationFile: cfg.AnnotationFile,
		Indent:         cfg.Indent,
	}
	if opts.TrainDir != "" {
		if so.TrainDir, err = l.resolveFrom(folder, opts.TrainDir); err != nil {
			return dataset.SplitResult{}, err
		}
	}
	if opts.TestDir != "" {
		if so.TestDir, err = l.resolveFrom(folder, opts.TestDir); err != nil {
			return dataset.SplitResult{}, err
		}
	}
	return dataset.Split(ctx, l.FS, so)
}

type PruneOptions struct {
	FolderOptions

	Tag   string
	Expr  string
	Count int
	Seed  *uint64
	// Confirm is asked before deleting. Nil deletes without asking.
	Confirm dataset.ConfirmFunc
	DryRun  bool
}

// Prune deletes up to Count random images that carry Tag (or match Expr)
// and drops their records.
func (l *Labeler) Prune(ctx context.Context, opts PruneOptions) (dataset.RemoveResult, error) {
	folder, err := l.ResolvePath(opts.Folder)
	if err != nil {
		return dataset.RemoveResult{}, err
	}
	cfg, err := l.FolderConfig(ctx, folder)
	if err != nil {
		return dataset.RemoveResult{}, err
	}
	ro := dataset.RemoveOptions{
		Folder:         folder,
		AnnotationFile: cfg.AnnotationFile,
		Indent:         cfg.Indent,
		Tag:            opts.Tag,
		Count:          opts.Count,
		Seed:           seedOrRandom(opts.Seed),
		Confirm:        opts.Confirm,
		DryRun:         opts.DryRun,
	}
	if opts.Tag == "" && opts.Expr != "" {
		if ro.Match, err = annotation.ParseTagExpr(opts.Expr); err != nil {
			return dataset.RemoveResult{}, err
		}
	}
	return dataset.RemoveByTag(ctx, l.FS, ro)
}

func seedOrRandom(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return dataset.RandomSeed()
}
