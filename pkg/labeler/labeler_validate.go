package labeler

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/spf13/afero"
)

type ValidateOptions struct {
	FolderOptions

	// File is validated when set; otherwise the folder's annotation file.
	File string
}

type ValidateResult struct {
	Path       string
	Violations []annotation.Violation
	// Orphans are records whose image is missing from the folder. Only
	// reported when validating a folder.
	Orphans []string
}

// Valid reports whether nothing was found.
func (r ValidateResult) Valid() bool {
	return len(r.Violations) == 0 && len(r.Orphans) == 0
}

// Validate checks an annotation file strictly against the schema and, for a
// folder, cross-checks records against the images on disk.
func (l *Labeler) Validate(ctx context.Context, opts ValidateOptions) (ValidateResult, error) {
	var res ValidateResult
	var report *annotation.LoadReport
	if opts.File != "" {
		path, err := l.ResolvePath(opts.File)
		if err != nil {
			return res, err
		}
		res.Path = path
	} else {
		s, r, err := l.Open(ctx, opts.FolderOptions)
		if err != nil {
			return res, err
		}
		res.Path = s.Path()
		report = &r
	}

	data, err := afero.ReadFile(l.FS, res.Path)
	if err != nil {
		return res, fmt.Errorf("unable to read %s: %w", filepath.Base(res.Path), err)
	}
	res.Violations, err = annotation.Validate(data)
	if err != nil {
		return res, err
	}
	if report != nil {
		res.Orphans = report.Orphans
	}
	return res, nil
}
