package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/dataset"
	"github.com/jlrickert/labeler/pkg/labeler"
)

func renderUserError(err error, deps *Deps) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, labeler.ErrNothingToExport) {
		return "No annotations to export"
	}
	if errors.Is(err, dataset.ErrCancelled) {
		return "cancelled, nothing was deleted"
	}

	var corrupt *annotation.CorruptAnnotationsError
	if errors.As(err, &corrupt) {
		if isDebugLogLevel(deps) {
			return err.Error()
		}
		return fmt.Sprintf("annotation file %s is not valid, run `labeler validate` for details", corrupt.Path)
	}

	var notFound *annotation.ImageNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("no image named %q in this folder", notFound.Name)
	}

	return err.Error()
}

func isDebugLogLevel(deps *Deps) bool {
	if deps == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(deps.LogLevel), "debug")
}
