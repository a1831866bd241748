package annotation_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadStore_ScansImagesOnly(t *testing.T) {
	t.Parallel()
	fs := newFolder(t, "c.png", "a.jpg", "b.JPEG", "notes.txt", "d.Gif", "e.bmp", "f.webp", ".hidden.jpg", "._a.jpg")
	require.NoError(t, fs.MkdirAll(filepath.Join(testFolder, "nested.jpg"), 0o755))
	ctx, _ := testContext(t)

	s, report := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})

	require.Equal(t, []string{"a.jpg", "b.JPEG", "c.png", "d.Gif", "e.bmp"}, s.Files())
	require.Equal(t, 5, report.Images)
	require.False(t, report.Found)
	require.NoError(t, report.Warning())
	require.Equal(t, 0, s.Labeled())
}

func TestLoadStore_MissingFolderDegrades(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)

	s, report := annotation.LoadStore(ctx, afero.NewMemMapFs(), "/nope", annotation.StoreOptions{})

	require.Equal(t, 0, s.Len())
	require.Error(t, report.Warning())
}

func TestLoadStore_LegacyAndCanonicalLoadAlike(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)

	canonical := newFolder(t, "a.jpg", "b.jpg")
	writeAnnotations(t, canonical, `[
		{"image": "a.jpg", "annotations": ["Bridge"]},
		{"image": "b.jpg", "annotations": ["Car", "Bridge"]}
	]`)
	legacy := newFolder(t, "a.jpg", "b.jpg")
	writeAnnotations(t, legacy, `[
		{"filename": "a.jpg", "annotations": ["Bridge"]},
		{"filename": "b.jpg", "annotations": ["Car", "Bridge"]}
	]`)

	cs, _ := annotation.LoadStore(ctx, canonical, testFolder, annotation.StoreOptions{})
	ls, _ := annotation.LoadStore(ctx, legacy, testFolder, annotation.StoreOptions{})

	require.Equal(t, cs.Entries(), ls.Entries())
	require.Equal(t, []string{"Car", "Bridge"}, ls.Labels("b.jpg"))
}

func TestLoadStore_CorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()
	ctx, th := testContext(t)
	fs := newFolder(t, "a.jpg")
	writeAnnotations(t, fs, `[{"image": "a.jpg", "annotations": ["Car"]`)

	s, report := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})

	require.True(t, report.Found)
	require.Equal(t, 1, s.Len())
	require.Equal(t, 0, s.Labeled())
	require.ErrorIs(t, report.Warning(), annotation.ErrCorruptAnnotations)
	require.NotEmpty(t, log.FindEntries(th, log.AtLevel(slog.LevelWarn)))
}

func TestLoadStore_OrphansAndDuplicates(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)
	fs := newFolder(t, "a.jpg")
	writeAnnotations(t, fs, `[
		{"image": "a.jpg", "annotations": ["Car"]},
		{"image": "gone.jpg", "annotations": ["Tree"]},
		{"annotations": ["Sky"]},
		{"image": "a.jpg", "annotations": [" Boat ", "", "Boat", "Sky"]}
	]`)

	s, report := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})

	require.Equal(t, 4, report.Records)
	require.Equal(t, []string{"gone.jpg", ""}, report.Orphans)
	require.Equal(t, []string{"a.jpg"}, report.Duplicates)
	require.Error(t, report.Warning())
	require.Equal(t, []string{"Boat", "Sky"}, s.Labels("a.jpg"))
	require.False(t, s.Has("gone.jpg"))
}

func TestStore_LabelsUnknownImageIsEmpty(t *testing.T) {
	t.Parallel()
	s := annotation.NewStore(afero.NewMemMapFs(), []string{"a.jpg"}, annotation.StoreOptions{})

	require.Equal(t, []string{}, s.Labels("missing.jpg"))
	require.True(t, annotation.IsImageNotFound(s.SetLabels("missing.jpg", []string{"Car"})))
}

func TestStore_SaveScenario(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)
	fs := newFolder(t, "c.jpg", "b.jpg", "a.jpg")
	s, _ := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})

	require.NoError(t, s.SetLabels("b.jpg", []string{"Car", "Bridge"}))
	require.NoError(t, s.SetLabels("a.jpg", []string{"Bridge"}))
	require.NoError(t, s.Save(ctx, testFolder))

	require.Equal(t, `[
    {
        "image": "a.jpg",
        "annotations": [
            "Bridge"
        ]
    },
    {
        "image": "b.jpg",
        "annotations": [
            "Car",
            "Bridge"
        ]
    }
]
`, readAnnotations(t, fs))
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)
	fs := newFolder(t, "a.jpg", "b.jpg")
	s, _ := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})
	require.NoError(t, s.SetLabels("a.jpg", []string{"Tree", "Sky"}))

	require.NoError(t, s.Save(ctx, testFolder))
	first := readAnnotations(t, fs)
	require.NoError(t, s.Save(ctx, testFolder))
	require.Equal(t, first, readAnnotations(t, fs))
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)
	fs := newFolder(t, "a.jpg", "b.png", "c.gif")
	s, _ := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})
	require.NoError(t, s.SetLabels("a.jpg", []string{"Lake"}))
	require.NoError(t, s.SetLabels("c.gif", []string{"Cave", "Desert"}))
	require.NoError(t, s.Save(ctx, testFolder))

	again, report := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{})

	require.NoError(t, report.Warning())
	require.Equal(t, s.Entries(), again.Entries())
	require.Equal(t, []string{}, again.Labels("b.png"))
}

func TestStore_SaveFailureKeepsStateAndFile(t *testing.T) {
	t.Parallel()
	ctx, _ := testContext(t)
	base := newFolder(t, "a.jpg")
	writeAnnotations(t, base, `[{"image": "a.jpg", "annotations": ["Old"]}]`)
	ro := afero.NewReadOnlyFs(base)

	s, _ := annotation.LoadStore(ctx, ro, testFolder, annotation.StoreOptions{})
	require.NoError(t, s.SetLabels("a.jpg", []string{"New"}))

	err := s.Save(ctx, testFolder)
	require.Error(t, err)
	require.True(t, annotation.IsSaveError(err))
	var se *annotation.SaveError
	require.True(t, errors.As(err, &se))
	require.Equal(t, filepath.Join(testFolder, "annotations.json"), se.Path)

	require.Equal(t, []string{"New"}, s.Labels("a.jpg"))
	require.Equal(t, `[{"image": "a.jpg", "annotations": ["Old"]}]`, readAnnotations(t, base))
}

func TestStore_ExportToArbitraryPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFolder(t, "a.jpg", "b.jpg")
	require.NoError(t, fs.MkdirAll("/exports", 0o755))
	s, _ := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{Indent: 2})
	require.NoError(t, s.SetLabels("b.jpg", []string{"Farm"}))

	require.NoError(t, s.Export(ctx, "/exports/out.json"))

	b, err := afero.ReadFile(fs, "/exports/out.json")
	require.NoError(t, err)
	require.Equal(t, "[\n  {\n    \"image\": \"b.jpg\",\n    \"annotations\": [\n      \"Farm\"\n    ]\n  }\n]\n", string(b))
	exists, err := afero.Exists(fs, filepath.Join(testFolder, "annotations.json"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStore_CustomAnnotationFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFolder(t, "a.jpg")
	s, _ := annotation.LoadStore(ctx, fs, testFolder, annotation.StoreOptions{AnnotationFile: "labels.json"})
	require.NoError(t, s.SetLabels("a.jpg", []string{"Road"}))
	require.NoError(t, s.Save(ctx, testFolder))

	exists, err := afero.Exists(fs, filepath.Join(testFolder, "labels.json"))
	require.NoError(t, err)
	require.True(t, exists)
}

func TestStore_LabelCounts(t *testing.T) {
	t.Parallel()
	s := annotation.NewStore(afero.NewMemMapFs(), []string{"a.jpg", "b.jpg"}, annotation.StoreOptions{})
	require.NoError(t, s.SetLabels("a.jpg", []string{"Car", "Tree"}))
	require.NoError(t, s.SetLabels("b.jpg", []string{"Car"}))

	require.Equal(t, map[string]int{"Car": 2, "Tree": 1}, s.LabelCounts())
}
