package annotation

import (
	"errors"
	"fmt"
)

// Sentinel errors used for simple equality-style checks.
var (
	// ErrCorruptAnnotations indicates the annotation file exists but is not
	// a valid record list.
	ErrCorruptAnnotations = errors.New("annotation: corrupt annotation file")

	// ErrSave indicates the annotation file could not be written.
	ErrSave = errors.New("annotation: save failed")

	// ErrNoFolder indicates an operation needs an open folder.
	ErrNoFolder = errors.New("annotation: no folder open")

	// ErrImageNotFound indicates a filename is not part of the folder.
	ErrImageNotFound = errors.New("annotation: image not found")

	// ErrInvalidTagExpr indicates a tag expression failed to parse.
	ErrInvalidTagExpr = errors.New("annotation: invalid tag expression")
)

// CorruptAnnotationsError carries the path of an annotation file that could
// not be decoded.
type CorruptAnnotationsError struct {
	Path string
	Err  error
}

func (e *CorruptAnnotationsError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to load annotations from %s", e.Path)
	}
	return fmt.Sprintf("failed to load annotations from %s: %v", e.Path, e.Err)
}

func (e *CorruptAnnotationsError) Is(target error) bool {
	return target == ErrCorruptAnnotations
}

func (e *CorruptAnnotationsError) Unwrap() error { return e.Err }

// SaveError reports a failed write of the annotation file. The in-memory
// state is untouched when a SaveError is returned.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save annotations to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Is(target error) bool {
	return target == ErrSave
}

func (e *SaveError) Unwrap() error { return e.Err }

// IsSaveError reports whether err is (or wraps) a save failure.
func IsSaveError(err error) bool {
	return errors.Is(err, ErrSave)
}

// ImageNotFoundError is returned when seeking to a filename that is not in
// the folder listing.
type ImageNotFoundError struct {
	Name string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("image not found: %q", e.Name)
}

func (e *ImageNotFoundError) Is(target error) bool {
	return target == ErrImageNotFound
}

// IsImageNotFound reports whether err is (or wraps) an image-not-found
// condition.
func IsImageNotFound(err error) bool {
	return errors.Is(err, ErrImageNotFound)
}
