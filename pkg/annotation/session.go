package annotation

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/spf13/afero"
)

// AutosavePolicy decides when a Session persists mutations.
type AutosavePolicy int

const (
	// AutosaveImmediate saves after every successful mutation.
	AutosaveImmediate AutosavePolicy = iota
	// AutosaveManual leaves persistence to explicit Save calls.
	AutosaveManual
)

func (p AutosavePolicy) String() string {
	switch p {
	case AutosaveImmediate:
		return "immediate"
	case AutosaveManual:
		return "manual"
	default:
		return "unknown"
	}
}

// SessionOptions configures Open.
type SessionOptions struct {
	AnnotationFile string
	Indent         int
	// DefaultTags seeds the tag registry in addition to every loaded label.
	DefaultTags []string
	Autosave    AutosavePolicy
}

// Session is the editing context for one open folder: the store, the tag
// registry and the navigation cursor. All methods are safe for concurrent
// use; a mutation and the save that follows it happen under one lock so two
// saves never interleave and the last one wins.
type Session struct {
	ID     string
	Folder string

	fs       afero.Fs
	opts     SessionOptions
	mu       sync.Mutex
	store    *Store
	registry *Registry
	cursor   *Cursor
	dirty    bool
}

// Open loads folder into a fresh session. Loading never fails; problems are
// described by the returned LoadReport.
func Open(ctx context.Context, fs afero.Fs, folder string, opts SessionOptions) (*Session, LoadReport) {
	s := &Session{
		ID:     uuid.New().String(),
		Folder: folder,
		fs:     fs,
		opts:   opts,
	}
	ctx = s.withLogger(ctx)
	store, report := LoadStore(ctx, fs, folder, s.storeOptions())
	s.store = store
	s.registry = seedRegistry(store, opts.DefaultTags)
	s.cursor = NewCursor(store.Files())

	mylog.LoggerFromContext(ctx).Debug("session opened",
		"folder", folder, "images", store.Len(), "labeled", store.Labeled(),
		"autosave", opts.Autosave.String())
	return s, report
}

func (s *Session) storeOptions() StoreOptions {
	return StoreOptions{AnnotationFile: s.opts.AnnotationFile, Indent: s.opts.Indent}
}

func (s *Session) withLogger(ctx context.Context) context.Context {
	lg := mylog.LoggerFromContext(ctx).With("session", s.ID)
	return mylog.WithLogger(ctx, lg)
}

func seedRegistry(store *Store, defaults []string) *Registry {
	r := NewRegistry(defaults...)
	for _, e := range store.Entries() {
		for _, l := range e.Labels {
			r.Register(l)
		}
	}
	return r
}

// Reload re-reads the folder from disk, discarding unsaved changes. The
// cursor stays on the same image when it still exists and the registry keeps
// every tag it already knew.
func (s *Session) Reload(ctx context.Context) LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.withLogger(ctx)

	current, _ := s.cursor.Current()
	store, report := LoadStore(ctx, s.fs, s.Folder, s.storeOptions())
	s.store = store
	for _, e := range store.Entries() {
		for _, l := range e.Labels {
			s.registry.Register(l)
		}
	}
	s.cursor = NewCursor(store.Files())
	if current != "" {
		_ = s.cursor.Seek(current)
	}
	s.dirty = false
	return report
}

// Add appends tag to the labels of the current image. Blank tags, tags the
// image already has and an empty folder are no-ops and report false. The
// returned error is an autosave failure; the label stays applied in memory.
func (s *Session) Add(ctx context.Context, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.cursor.Current()
	if !ok {
		return false, nil
	}
	return s.add(s.withLogger(ctx), name, tag)
}

// AddTo moves the cursor to name and adds tag there.
func (s *Session) AddTo(ctx context.Context, name, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cursor.Seek(name); err != nil {
		return false, err
	}
	return s.add(s.withLogger(ctx), name, tag)
}

func (s *Session) add(ctx context.Context, name, tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false, nil
	}
	labels := s.store.Labels(name)
	if slices.Contains(labels, tag) {
		return false, nil
	}
	if err := s.store.SetLabels(name, append(labels, tag)); err != nil {
		return false, err
	}
	s.registry.Register(tag)
	s.dirty = true
	mylog.LoggerFromContext(ctx).Debug("label added", "image", name, "tag", tag)
	return true, s.autosave(ctx)
}

// Remove deletes tag from the labels of the current image. A tag the image
// does not carry is a no-op and reports false. The returned error is an
// autosave failure.
func (s *Session) Remove(ctx context.Context, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.cursor.Current()
	if !ok {
		return false, nil
	}
	return s.remove(s.withLogger(ctx), name, tag)
}

// RemoveFrom moves the cursor to name and removes tag there.
func (s *Session) RemoveFrom(ctx context.Context, name, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cursor.Seek(name); err != nil {
		return false, err
	}
	return s.remove(s.withLogger(ctx), name, tag)
}

func (s *Session) remove(ctx context.Context, name, tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	labels := s.store.Labels(name)
	i := slices.Index(labels, tag)
	if i < 0 {
		return false, nil
	}
	if err := s.store.SetLabels(name, slices.Delete(labels, i, i+1)); err != nil {
		return false, err
	}
	s.dirty = true
	mylog.LoggerFromContext(ctx).Debug("label removed", "image", name, "tag", tag)
	return true, s.autosave(ctx)
}

// SetLabels replaces the labels of name, registers every label and
// autosaves.
func (s *Session) SetLabels(ctx context.Context, name string, labels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = s.withLogger(ctx)
	if err := s.store.SetLabels(name, labels); err != nil {
		return err
	}
	for _, l := range labels {
		s.registry.Register(l)
	}
	s.dirty = true
	return s.autosave(ctx)
}

func (s *Session) autosave(ctx context.Context) error {
	if s.opts.Autosave != AutosaveImmediate {
		return nil
	}
	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.Folder); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Save writes the canonical annotation file for the folder.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(s.withLogger(ctx))
}

// Export writes the canonical serialization to path without touching the
// folder's own annotation file.
func (s *Session) Export(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Export(s.withLogger(ctx), path)
}

// Dirty reports whether there are mutations not yet written by a
// successful save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Autosave returns the active autosave policy.
func (s *Session) Autosave() AutosavePolicy { return s.opts.Autosave }

// Path returns the canonical annotation file path.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Path(s.Folder)
}

// Current returns the filename under the cursor.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Current()
}

// Labels returns the labels of the current image.
func (s *Session) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.cursor.Current()
	if !ok {
		return []string{}
	}
	return s.store.Labels(name)
}

// LabelsOf returns the labels of name, empty for unknown images.
func (s *Session) LabelsOf(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Labels(name)
}

// Has reports whether name is an image of the folder.
func (s *Session) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Has(name)
}

// Next advances the cursor and reports whether it moved.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Next()
}

// Previous moves the cursor back and reports whether it moved.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Previous()
}

// Seek moves the cursor to name.
func (s *Session) Seek(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Seek(name)
}

// First moves the cursor to the first image.
func (s *Session) First() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.First()
}

// Last moves the cursor to the last image.
func (s *Session) Last() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Last()
}

// Index returns the cursor position, -1 when the folder has no images.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Index()
}

// Position renders the progress line for the cursor.
func (s *Session) Position() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Position()
}

// Files returns the sorted image filenames.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Files()
}

// Entries returns the labeled images in folder order.
func (s *Session) Entries() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Entries()
}

// LabelCounts returns how many images carry each label.
func (s *Session) LabelCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LabelCounts()
}

// Len returns the number of images.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Labeled returns the number of labeled images.
func (s *Session) Labeled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Labeled()
}

// Tags returns the registry contents in lexicographic order.
func (s *Session) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Slice()
}

// TagsMatching returns registry tags starting with prefix.
func (s *Session) TagsMatching(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Matching(prefix)
}

// RegisterTag adds tag to the registry without labeling any image.
func (s *Session) RegisterTag(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Register(tag)
}

// Match returns the images whose labels satisfy expr, in folder order.
func (s *Session) Match(expr TagExpr) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for _, f := range s.store.files {
		if expr.Match(s.store.entries[f]) {
			out = append(out, f)
		}
	}
	return out
}
