package annotation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/spf13/afero"
)

// Store is the in-memory mapping of image filename to ordered labels for a
// single folder. Keys are always filenames from the folder scan. Store does
// no locking; Session serializes access.
type Store struct {
	fs             afero.Fs
	files          []string
	known          map[string]struct{}
	entries        map[string][]string
	annotationFile string
	indent         int
}

// StoreOptions tunes where and how the canonical file is written.
type StoreOptions struct {
	// AnnotationFile is the canonical file name inside the folder. Defaults
	// to DefaultAnnotationFile.
	AnnotationFile string
	// Indent is the JSON indentation width. Zero selects DefaultIndent.
	Indent int
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.AnnotationFile == "" {
		o.AnnotationFile = DefaultAnnotationFile
	}
	if o.Indent <= 0 {
		o.Indent = DefaultIndent
	}
	return o
}

// LoadReport describes what LoadStore found. Warnings are non-fatal: the
// store is always usable, possibly empty.
type LoadReport struct {
	Folder string
	// Path is the canonical annotation file path.
	Path string
	// Images is the number of image files found by the scan.
	Images int
	// Found is true when an annotation file existed.
	Found bool
	// Records is the number of records decoded from the file.
	Records int
	// Labeled is the number of images that ended up with labels.
	Labeled int
	// Orphans lists record filenames that are not in the folder.
	Orphans []string
	// Duplicates lists filenames that appeared in more than one record. The
	// last record wins.
	Duplicates []string
	Warnings   []error
}

// Warning joins all load warnings into one error, or returns nil.
func (r LoadReport) Warning() error {
	return errors.Join(r.Warnings...)
}

// NewStore returns an empty store over the given file listing.
func NewStore(fs afero.Fs, files []string, opts StoreOptions) *Store {
	opts = opts.withDefaults()
	known := make(map[string]struct{}, len(files))
	list := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := known[f]; ok {
			continue
		}
		known[f] = struct{}{}
		list = append(list, f)
	}
	slices.Sort(list)
	return &Store{
		fs:             fs,
		files:          list,
		known:          known,
		entries:        map[string][]string{},
		annotationFile: opts.AnnotationFile,
		indent:         opts.Indent,
	}
}

// LoadStore scans folder for images and merges the canonical annotation file
// when one exists. Any scan, read or parse failure leaves the store empty
// (or without labels) and is reported in the returned LoadReport.
func LoadStore(ctx context.Context, fs afero.Fs, folder string, opts StoreOptions) (*Store, LoadReport) {
	lg := mylog.LoggerFromContext(ctx)
	opts = opts.withDefaults()
	report := LoadReport{
		Folder: folder,
		Path:   filepath.Join(folder, opts.AnnotationFile),
	}

	files, err := ScanImages(fs, folder)
	if err != nil {
		lg.Warn("unable to scan image folder", "folder", folder, "err", err)
		report.Warnings = append(report.Warnings, err)
	}
	s := NewStore(fs, files, opts)
	report.Images = len(s.files)

	exists, err := afero.Exists(fs, report.Path)
	if err != nil {
		lg.Warn("unable to stat annotation file", "path", report.Path, "err", err)
		report.Warnings = append(report.Warnings, &CorruptAnnotationsError{Path: report.Path, Err: err})
		return s, report
	}
	if !exists {
		lg.Debug("no annotation file", "path", report.Path)
		return s, report
	}
	report.Found = true

	data, err := afero.ReadFile(fs, report.Path)
	if err != nil {
		lg.Warn("unable to read annotation file", "path", report.Path, "err", err)
		report.Warnings = append(report.Warnings, &CorruptAnnotationsError{Path: report.Path, Err: err})
		return s, report
	}
	records, err := DecodeRecords(data)
	if err != nil {
		lg.Warn("annotation file is corrupt, starting empty", "path", report.Path, "err", err)
		report.Warnings = append(report.Warnings, &CorruptAnnotationsError{Path: report.Path, Err: err})
		return s, report
	}
	report.Records = len(records)

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := s.known[r.Image]; !ok {
			if !slices.Contains(report.Orphans, r.Image) {
				report.Orphans = append(report.Orphans, r.Image)
			}
			continue
		}
		if _, ok := seen[r.Image]; ok && !slices.Contains(report.Duplicates, r.Image) {
			report.Duplicates = append(report.Duplicates, r.Image)
		}
		seen[r.Image] = struct{}{}
		s.put(r.Image, r.Labels)
	}
	report.Labeled = len(s.entries)

	if len(report.Orphans) > 0 {
		lg.Warn("annotation records without a matching image",
			"path", report.Path, "count", len(report.Orphans))
		report.Warnings = append(report.Warnings,
			fmt.Errorf("%d annotation records reference images missing from %s", len(report.Orphans), folder))
	}
	if len(report.Duplicates) > 0 {
		lg.Warn("duplicate annotation records", "path", report.Path, "images", report.Duplicates)
	}
	lg.Debug("annotations loaded", "path", report.Path, "records", report.Records, "labeled", report.Labeled)
	return s, report
}

// Files returns the sorted image filenames of the folder.
func (s *Store) Files() []string {
	return slices.Clone(s.files)
}

// Has reports whether name is an image of the folder.
func (s *Store) Has(name string) bool {
	_, ok := s.known[name]
	return ok
}

// Labels returns a copy of the labels for name. Unknown or unlabeled images
// yield an empty slice.
func (s *Store) Labels(name string) []string {
	labels := s.entries[name]
	if len(labels) == 0 {
		return []string{}
	}
	return slices.Clone(labels)
}

// SetLabels replaces the labels of name. Labels are trimmed, empty labels are
// dropped and duplicates keep their first position. An empty result removes
// the entry.
func (s *Store) SetLabels(name string, labels []string) error {
	if !s.Has(name) {
		return &ImageNotFoundError{Name: name}
	}
	s.put(name, labels)
	return nil
}

func (s *Store) put(name string, labels []string) {
	labels = normalizeLabels(labels)
	if len(labels) == 0 {
		delete(s.entries, name)
		return
	}
	s.entries[name] = labels
}

// Entries returns the labeled images in folder order. Images with no labels
// are omitted.
func (s *Store) Entries() []Record {
	out := make([]Record, 0, len(s.entries))
	for _, f := range s.files {
		labels := s.entries[f]
		if len(labels) == 0 {
			continue
		}
		out = append(out, Record{Image: f, Labels: slices.Clone(labels)})
	}
	return out
}

// Len returns the number of images in the folder.
func (s *Store) Len() int { return len(s.files) }

// Labeled returns the number of images with at least one label.
func (s *Store) Labeled() int { return len(s.entries) }

// LabelCounts returns how many images carry each label.
func (s *Store) LabelCounts() map[string]int {
	out := map[string]int{}
	for _, labels := range s.entries {
		for _, l := range labels {
			out[l]++
		}
	}
	return out
}

// Marshal renders the canonical file content for the current state.
func (s *Store) Marshal() ([]byte, error) {
	return EncodeRecords(s.Entries(), s.indent)
}

// Path returns the canonical annotation file path for folder.
func (s *Store) Path(folder string) string {
	return filepath.Join(folder, s.annotationFile)
}

// Save writes the canonical annotation file into folder, replacing any
// previous file atomically.
func (s *Store) Save(ctx context.Context, folder string) error {
	return s.Export(ctx, s.Path(folder))
}

// Export writes the canonical serialization to path. On failure the previous
// file at path is left untouched and a *SaveError is returned.
func (s *Store) Export(ctx context.Context, path string) error {
	lg := mylog.LoggerFromContext(ctx)
	data, err := s.Marshal()
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if err := WriteFileAtomic(s.fs, path, data, 0o644); err != nil {
		lg.Error("failed to write annotations", "path", path, "err", err)
		return &SaveError{Path: path, Err: err}
	}
	lg.Debug("annotations written", "path", path, "images", s.Labeled())
	return nil
}
