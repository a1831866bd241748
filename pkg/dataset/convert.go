package dataset

import (
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/spf13/afero"
)

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	In      string
	Out     string
	Records int
}

// Convert rewrites an annotation file in the canonical layout. Legacy
// "filename" keys become "image"; record order and label order are kept.
// An empty out converts in place, replacing the file atomically.
func Convert(ctx context.Context, fs afero.Fs, in, out string, indent int) (ConvertResult, error) {
	lg := mylog.LoggerFromContext(ctx)
	if out == "" {
		out = in
	}
	res := ConvertResult{In: in, Out: out}

	data, err := afero.ReadFile(fs, in)
	if err != nil {
		return res, fmt.Errorf("unable to read %s: %w", in, err)
	}
	records, err := annotation.DecodeRecords(data)
	if err != nil {
		return res, &annotation.CorruptAnnotationsError{Path: in, Err: err}
	}
	encoded, err := annotation.EncodeRecords(records, indent)
	if err != nil {
		return res, err
	}
	if err := annotation.WriteFileAtomic(fs, out, encoded, 0o644); err != nil {
		return res, &annotation.SaveError{Path: out, Err: err}
	}

	res.Records = len(records)
	lg.Info("annotation file converted", "in", in, "out", out, "records", res.Records)
	return res, nil
}
