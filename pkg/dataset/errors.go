package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled indicates the user declined a destructive operation.
	ErrCancelled = errors.New("dataset: cancelled")

	// ErrNoAnnotationFile indicates a tool needs an annotation file that
	// does not exist.
	ErrNoAnnotationFile = errors.New("dataset: annotation file not found")

	// ErrInvalidOptions indicates options that can never succeed, such as
	// negative counts.
	ErrInvalidOptions = errors.New("dataset: invalid options")
)

// ItemError is a per-image failure of a batch operation. Batches keep going
// after an ItemError.
type ItemError struct {
	Image string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Image, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func invalidOptions(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
