package labeler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a config file failed to parse or validate.
	ErrInvalidConfig = errors.New("labeler: invalid config")

	// ErrNothingToExport indicates an export was requested for a folder
	// without a single labeled image.
	ErrNothingToExport = errors.New("labeler: no annotations to export")
)

// InvalidConfigError represents a parse or validation failure for a config
// file.
type InvalidConfigError struct {
	Path string
	Msg  string
}

func (e *InvalidConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid labeler config: %s", e.Msg)
	}
	return fmt.Sprintf("invalid labeler config %s: %s", e.Path, e.Msg)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsInvalidConfig reports whether err is (or wraps) an invalid-config
// condition.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
