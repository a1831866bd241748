package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/internal"
	"github.com/spf13/afero"
)

// ConfirmFunc is asked before anything is deleted. selected holds the images
// that would be removed. Returning false cancels the run.
type ConfirmFunc func(ctx context.Context, selected []string) (bool, error)

// RemoveOptions configures RemoveByTag.
type RemoveOptions struct {
	Folder         string
	AnnotationFile string
	Indent         int
	// Tag selects records carrying this exact label. When empty, Match is
	// used instead.
	Tag   string
	Match annotation.TagExpr
	// Count caps how many matching images are removed.
	Count int
	Seed  uint64
	// Confirm is consulted once before deleting. Nil means no confirmation.
	Confirm ConfirmFunc
	// DryRun selects and reports without touching the disk.
	DryRun bool
}

// RemoveResult describes a finished or previewed removal.
type RemoveResult struct {
	Path    string
	Matched int
	// Selected are the images chosen for removal, in selection order.
	Selected []string
	// Deleted are the image files actually removed.
	Deleted []string
	// Missing are selected images that were already gone from disk. Their
	// records are still dropped.
	Missing []string
	// Failed are selected images that could not be removed. Their records
	// are kept.
	Failed        []*ItemError
	RecordsBefore int
	RecordsAfter  int
	DryRun        bool
}

// RemoveByTag deletes up to Count randomly chosen images whose labels match
// and rewrites the annotation file without their records. Per-image
// failures do not stop the batch; they are collected in the result.
func RemoveByTag(ctx context.Context, fsys afero.Fs, opts RemoveOptions) (RemoveResult, error) {
	lg := mylog.LoggerFromContext(ctx)
	file := opts.AnnotationFile
	if file == "" {
		file = annotation.DefaultAnnotationFile
	}
	res := RemoveResult{Path: filepath.Join(opts.Folder, file), DryRun: opts.DryRun}

	if opts.Count <= 0 {
		return res, invalidOptions("count must be positive, got %d", opts.Count)
	}
	match := opts.Match
	if opts.Tag != "" {
		match = annotation.TagLiteral(opts.Tag)
	}
	if match.String() == "" {
		return res, invalidOptions("a tag or a tag expression is required")
	}

	data, err := afero.ReadFile(fsys, res.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("%w: %s", ErrNoAnnotationFile, res.Path)
	}
	if err != nil {
		return res, fmt.Errorf("unable to read %s: %w", res.Path, err)
	}
	records, err := annotation.DecodeRecords(data)
	if err != nil {
		return res, &annotation.CorruptAnnotationsError{Path: res.Path, Err: err}
	}
	res.RecordsBefore = len(records)

	matched := make([]string, 0)
	for _, r := range records {
		if r.Image == "" || slices.Contains(matched, r.Image) {
			continue
		}
		if match.Match(r.Labels) {
			matched = append(matched, r.Image)
		}
	}
	res.Matched = len(matched)
	lg.Debug("records matched", "path", res.Path, "expr", match.String(), "matched", len(matched))
	if len(matched) == 0 {
		res.RecordsAfter = len(records)
		return res, nil
	}

	res.Selected = shuffled(matched, opts.Seed)[:min(opts.Count, len(matched))]
	if opts.DryRun {
		res.RecordsAfter = len(records) - countRecords(records, res.Selected)
		return res, nil
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(ctx, res.Selected)
		if err != nil {
			return res, err
		}
		if !ok {
			lg.Info("removal cancelled", "path", res.Path)
			return res, ErrCancelled
		}
	}

	dropped := make([]string, 0, len(res.Selected))
	for _, name := range res.Selected {
		if !internal.PlainName(name) {
			res.Failed = append(res.Failed, &ItemError{Image: name, Err: fmt.Errorf("not a plain file name")})
			continue
		}
		err := fsys.Remove(filepath.Join(opts.Folder, name))
		switch {
		case err == nil:
			res.Deleted = append(res.Deleted, name)
			dropped = append(dropped, name)
			lg.Debug("image deleted", "image", name)
		case errors.Is(err, fs.ErrNotExist):
			res.Missing = append(res.Missing, name)
			dropped = append(dropped, name)
			lg.Warn("image already missing", "image", name)
		default:
			res.Failed = append(res.Failed, &ItemError{Image: name, Err: err})
			lg.Error("unable to delete image", "image", name, "err", err)
		}
	}

	kept := slices.DeleteFunc(slices.Clone(records), func(r annotation.Record) bool {
		return slices.Contains(dropped, r.Image)
	})
	encoded, err := annotation.EncodeRecords(kept, opts.Indent)
	if err != nil {
		return res, err
	}
	if err := annotation.WriteFileAtomic(fsys, res.Path, encoded, 0o644); err != nil {
		return res, &annotation.SaveError{Path: res.Path, Err: err}
	}
	res.RecordsAfter = len(kept)

	lg.Info("images removed",
		"path", res.Path, "deleted", len(res.Deleted),
		"missing", len(res.Missing), "failed", len(res.Failed))
	return res, nil
}

func countRecords(records []annotation.Record, names []string) int {
	n := 0
	for _, r := range records {
		if slices.Contains(names, r.Image) {
			n++
		}
	}
	return n
}
