package labeler

import (
	"context"
	"fmt"
)

type EditOptions struct {
	FolderOptions

	Image string
	Tags  []string
}

// EditResult reports the labels of the image after an edit and which tags
// actually changed it.
type EditResult struct {
	Image   string
	Labels  []string
	Changed []string
	Path    string
}

// Add applies tags to one image in order and saves once.
func (l *Labeler) Add(ctx context.Context, opts EditOptions) (EditResult, error) {
	return l.edit(ctx, opts, true)
}

// Remove deletes tags from one image and saves once.
func (l *Labeler) Remove(ctx context.Context, opts EditOptions) (EditResult, error) {
	return l.edit(ctx, opts, false)
}

func (l *Labeler) edit(ctx context.Context, opts EditOptions, add bool) (EditResult, error) {
	res := EditResult{Image: opts.Image}
	if len(opts.Tags) == 0 {
		return res, fmt.Errorf("at least one tag is required")
	}
	s, _, _, err := l.openOneShot(ctx, opts.FolderOptions)
	if err != nil {
		return res, err
	}
	res.Path = s.Path()

	for _, tag := range opts.Tags {
		var changed bool
		if add {
			changed, err = s.AddTo(ctx, opts.Image, tag)
		} else {
			changed, err = s.RemoveFrom(ctx, opts.Image, tag)
		}
		if err != nil {
			return res, err
		}
		if changed {
			res.Changed = append(res.Changed, tag)
		}
	}
	res.Labels = s.Labels()

	if len(res.Changed) == 0 {
		return res, nil
	}
	if err := s.Save(ctx); err != nil {
		return res, err
	}
	return res, nil
}
