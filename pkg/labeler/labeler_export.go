package labeler

import (
	"context"
	"fmt"
)

type ExportOptions struct {
	FolderOptions

	// Dest is the output file.
	Dest string
}

type SaveResult struct {
	Path   string
	Images int
}

// Message renders the confirmation shown after an explicit save or export.
func (r SaveResult) Message() string {
	return fmt.Sprintf("Saved annotations for %d images to %s", r.Images, r.Path)
}

// Export writes the folder's annotations to Dest without touching the
// folder's own file. A folder without labels is refused.
func (l *Labeler) Export(ctx context.Context, opts ExportOptions) (SaveResult, error) {
	if opts.Dest == "" {
		return SaveResult{}, fmt.Errorf("destination is required")
	}
	dest, err := l.ResolvePath(opts.Dest)
	if err != nil {
		return SaveResult{}, err
	}
	s, _, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return SaveResult{}, err
	}
	if s.Labeled() == 0 {
		return SaveResult{}, ErrNothingToExport
	}
	if err := s.Export(ctx, dest); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Path: dest, Images: s.Labeled()}, nil
}

// Save rewrites the folder's annotation file in the canonical layout. Legacy
// keys, orphan records and duplicate labels are dropped on the way.
func (l *Labeler) Save(ctx context.Context, opts FolderOptions) (SaveResult, error) {
	s, _, _, err := l.openOneShot(ctx, opts)
	if err != nil {
		return SaveResult{}, err
	}
	if err := s.Save(ctx); err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Path: s.Path(), Images: s.Labeled()}, nil
}
