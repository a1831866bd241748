package labeler

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/internal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type TagCount struct {
	Tag    string
	Images int
}

type Stats struct {
	Folder    string
	Images    int
	Labeled   int
	Unlabeled int
	// Tags is sorted by descending count, then by name.
	Tags []TagCount
	// Unused are vocabulary tags no image carries.
	Unused      []string
	GeneratedAt string
}

// Stats summarizes label coverage of a folder.
func (l *Labeler) Stats(ctx context.Context, opts FolderOptions) (Stats, error) {
	s, _, err := l.Open(ctx, opts)
	if err != nil {
		return Stats{}, err
	}
	counts := s.LabelCounts()
	st := Stats{
		Folder:      s.Folder,
		Images:      s.Len(),
		Labeled:     s.Labeled(),
		Unlabeled:   s.Len() - s.Labeled(),
		Tags:        make([]TagCount, 0, len(counts)),
		Unused:      make([]string, 0),
		GeneratedAt: internal.ISO8601(l.Runtime.Clock().Now()),
	}
	for tag, n := range counts {
		st.Tags = append(st.Tags, TagCount{Tag: tag, Images: n})
	}
	slices.SortFunc(st.Tags, func(a, b TagCount) int {
		if c := cmp.Compare(b.Images, a.Images); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	for _, tag := range s.Tags() {
		if counts[tag] == 0 {
			st.Unused = append(st.Unused, tag)
		}
	}
	return st, nil
}

// Coverage is the labeled share of images in percent.
func (st Stats) Coverage() float64 {
	if st.Images == 0 {
		return 0
	}
	return float64(st.Labeled) * 100 / float64(st.Images)
}

// Markdown renders the stats as a markdown report.
func (st Stats) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Annotation report\n\n")
	fmt.Fprintf(&b, "Folder: `%s`  \nGenerated: %s\n\n", st.Folder, st.GeneratedAt)
	fmt.Fprintf(&b, "- Images: %d\n", st.Images)
	fmt.Fprintf(&b, "- Labeled: %d (%.1f%%)\n", st.Labeled, st.Coverage())
	fmt.Fprintf(&b, "- Unlabeled: %d\n\n", st.Unlabeled)
	if len(st.Tags) > 0 {
		b.WriteString("## Tags\n\n| Tag | Images |\n| --- | ---: |\n")
		for _, tc := range st.Tags {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(tc.Tag), tc.Images)
		}
		b.WriteString("\n")
	}
	if len(st.Unused) > 0 {
		b.WriteString("## Unused tags\n\n")
		for _, tag := range st.Unused {
			fmt.Fprintf(&b, "- %s\n", tag)
		}
	}
	return b.String()
}

// HTML renders the markdown report as an HTML fragment.
func (st Stats) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(st.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("unable to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteReport resolves path and writes data to it atomically. It returns the
// resolved path.
func (l *Labeler) WriteReport(path string, data []byte) (string, error) {
	dest, err := l.ResolvePath(path)
	if err != nil {
		return "", err
	}
	if err := annotation.WriteFileAtomic(l.FS, dest, data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write %s: %w", dest, err)
	}
	return dest, nil
}
