package annotation

import (
	"iter"
	"slices"
	"strings"
)

// Registry is the vocabulary of tags offered for quick picking. It only
// grows: removing the last use of a tag keeps it available.
type Registry struct {
	tags map[string]struct{}
}

// NewRegistry returns a registry seeded with defaults. Blank defaults are
// ignored.
func NewRegistry(defaults ...string) *Registry {
	r := &Registry{tags: map[string]struct{}{}}
	for _, t := range defaults {
		r.Register(t)
	}
	return r
}

// Register adds tag after trimming it. It reports whether the tag was new.
// Empty and whitespace-only tags are ignored.
func (r *Registry) Register(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	if _, ok := r.tags[tag]; ok {
		return false
	}
	r.tags[tag] = struct{}{}
	return true
}

// Contains reports whether tag is known.
func (r *Registry) Contains(tag string) bool {
	_, ok := r.tags[strings.TrimSpace(tag)]
	return ok
}

// Len returns the number of known tags.
func (r *Registry) Len() int { return len(r.tags) }

// All yields the known tags in lexicographic order. Each iteration takes a
// fresh snapshot, so the sequence can be ranged over again after the
// registry changed.
func (r *Registry) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, t := range r.sorted() {
			if !yield(t) {
				return
			}
		}
	}
}

// Slice returns All as a slice.
func (r *Registry) Slice() []string {
	return r.sorted()
}

// Matching returns the known tags starting with prefix, compared
// case-insensitively, in lexicographic order.
func (r *Registry) Matching(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]string, 0, len(r.tags))
	for _, t := range r.sorted() {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) sorted() []string {
	out := make([]string, 0, len(r.tags))
	for t := range r.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
