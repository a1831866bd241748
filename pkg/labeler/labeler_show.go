package labeler

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlrickert/labeler/pkg/annotation"
)

type ShowOptions struct {
	FolderOptions

	// Image to show. Empty shows the first image.
	Image string
}

type ShowResult struct {
	Image    string
	Position string
	Labels   []string
}

func (l *Labeler) Show(ctx context.Context, opts ShowOptions) (ShowResult, error) {
	s, _, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return ShowResult{}, err
	}
	if opts.Image != "" {
		if err := s.Seek(opts.Image); err != nil {
			return ShowResult{}, err
		}
	}
	name, ok := s.Current()
	if !ok {
		return ShowResult{Position: s.Position(), Labels: []string{}}, nil
	}
	return ShowResult{Image: name, Position: s.Position(), Labels: s.Labels()}, nil
}

// FormatLabels renders a label list for display.
func FormatLabels(labels []string) string {
	if len(labels) == 0 {
		return "No labels yet"
	}
	return strings.Join(labels, ", ")
}

// LoadMessage renders the user-facing summary of a load.
func LoadMessage(report annotation.LoadReport) string {
	if report.Labeled == 0 {
		return ""
	}
	return fmt.Sprintf("Loaded existing annotations for %d images", report.Labeled)
}
