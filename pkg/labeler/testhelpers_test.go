package labeler_test

import (
	"context"
	"embed"
	"path/filepath"
	"testing"

	"github.com/jlrickert/cli-toolkit/sandbox"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

//go:embed all:data/**
var testdata embed.FS

const photos = "/data/photos"

func NewSandbox(t *testing.T, opts ...sandbox.Option) *sandbox.Sandbox {
	return sandbox.NewSandbox(t,
		&sandbox.Options{
			Data: testdata,
			Home: filepath.FromSlash("/home/testuser"),
			User: "testuser",
		}, opts...)
}

type fixture struct {
	sb  *sandbox.Sandbox
	ctx context.Context
	fs  afero.Fs
	l   *labeler.Labeler
}

// newFixture builds a labeler over an in-memory filesystem holding a copy of
// data/photos at /data/photos and data/config at /etc/labeler.
func newFixture(t *testing.T, opts ...sandbox.Option) *fixture {
	t.Helper()
	sb := NewSandbox(t, opts...)
	fs := afero.NewMemMapFs()
	copyEmbedded(t, fs, "data/photos", photos)
	copyEmbedded(t, fs, "data/config", "/etc/labeler")

	l, err := labeler.New(labeler.Options{
		Root:       photos,
		ConfigPath: "/etc/labeler/config.yaml",
		Runtime:    sb.Runtime(),
		FS:         fs,
	})
	require.NoError(t, err)
	return &fixture{sb: sb, ctx: sb.Context(), fs: fs, l: l}
}

func copyEmbedded(t *testing.T, fs afero.Fs, src, dst string) {
	t.Helper()
	entries, err := testdata.ReadDir(src)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(dst, 0o755))
	for _, e := range entries {
		data, err := testdata.ReadFile(src + "/" + e.Name())
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dst, e.Name()), data, 0o644))
	}
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	b, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, f.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(f.fs, path, []byte(body), 0o644))
}
