package annotation_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testFolder = "/data/images"

// newFolder returns an in-memory filesystem holding the named files under
// testFolder.
func newFolder(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testFolder, 0o755))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(testFolder, f), []byte("img"), 0o644))
	}
	return fs
}

func writeAnnotations(t *testing.T, fs afero.Fs, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testFolder, "annotations.json"), []byte(body), 0o644))
}

func readAnnotations(t *testing.T, fs afero.Fs) string {
	t.Helper()
	b, err := afero.ReadFile(fs, filepath.Join(testFolder, "annotations.json"))
	require.NoError(t, err)
	return string(b)
}

func testContext(t *testing.T) (context.Context, *log.TestHandler) {
	lg, th := log.NewTestLogger(t)
	return mylog.WithLogger(context.Background(), lg), th
}
