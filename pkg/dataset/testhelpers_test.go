package dataset_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testFolder = "/data/images"

func testContext(t *testing.T) (context.Context, *log.TestHandler) {
	lg, th := log.NewTestLogger(t)
	return mylog.WithLogger(context.Background(), lg), th
}

// numberedFolder creates n images named img00.jpg, img01.jpg, ... with
// distinct contents.
func numberedFolder(t *testing.T, n int) (afero.Fs, []string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testFolder, 0o755))
	names := make([]string, 0, n)
	for i := range n {
		name := fmt.Sprintf("img%02d.jpg", i)
		names = append(names, name)
		require.NoError(t, afero.WriteFile(fs, filepath.Join(testFolder, name), []byte("image "+name), 0o644))
	}
	return fs, names
}

func writeFile(t *testing.T, fs afero.Fs, path, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
}

func readRecords(t *testing.T, fs afero.Fs, path string) []annotation.Record {
	t.Helper()
	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	records, err := annotation.DecodeRecords(b)
	require.NoError(t, err)
	return records
}
