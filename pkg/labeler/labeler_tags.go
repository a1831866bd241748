package labeler

import (
	"context"

	"github.com/jlrickert/labeler/pkg/annotation"
)

type TagsOptions struct {
	FolderOptions

	// Expr, when set, lists the images matching the expression instead of
	// the tag vocabulary.
	Expr string
	// Prefix filters the vocabulary case-insensitively.
	Prefix string
}

// Tags lists the vocabulary of the folder (config defaults plus every label
// in use) or, with an expression, the images that match it.
func (l *Labeler) Tags(ctx context.Context, opts TagsOptions) ([]string, error) {
	var expr annotation.TagExpr
	if opts.Expr != "" {
		var err error
		expr, err = annotation.ParseTagExpr(opts.Expr)
		if err != nil {
			return nil, err
		}
	}
	s, _, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return nil, err
	}
	if opts.Expr != "" {
		return s.Match(expr), nil
	}
	if opts.Prefix != "" {
		return s.TagsMatching(opts.Prefix), nil
	}
	return s.Tags(), nil
}
