package labeler

import (
	"context"
	"fmt"
	"slices"

	"github.com/jlrickert/labeler/pkg/annotation"
)

type ListOptions struct {
	FolderOptions

	// Labeled keeps only images with at least one label.
	Labeled bool
	// Unlabeled keeps only images without labels.
	Unlabeled bool
	// Tag keeps only images carrying this exact label.
	Tag string
	// Expr keeps only images matching a tag expression.
	Expr string
}

type ListItem struct {
	// Index is the one-based position in the folder.
	Index  int
	Image  string
	Labels []string
}

func (l *Labeler) List(ctx context.Context, opts ListOptions) ([]ListItem, error) {
	if opts.Labeled && opts.Unlabeled {
		return nil, fmt.Errorf("--labeled and --unlabeled are mutually exclusive")
	}
	var filters []annotation.TagExpr
	if opts.Tag != "" {
		filters = append(filters, annotation.TagLiteral(opts.Tag))
	}
	if opts.Expr != "" {
		e, err := annotation.ParseTagExpr(opts.Expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, e)
	}

	s, _, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return nil, err
	}
	out := make([]ListItem, 0, s.Len())
	for i, name := range s.Files() {
		labels := s.LabelsOf(name)
		if (opts.Labeled && len(labels) == 0) || (opts.Unlabeled && len(labels) > 0) {
			continue
		}
		if !slices.ContainsFunc(filters, func(e annotation.TagExpr) bool { return !e.Match(labels) }) {
			out = append(out, ListItem{Index: i + 1, Image: name, Labels: labels})
		}
	}
	return out, nil
}
