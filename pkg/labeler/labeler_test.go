package labeler_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jlrickert/cli-toolkit/sandbox"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/dataset"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesConfigAndLoadsLegacyFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	s, report, err := f.l.Open(f.ctx, labeler.FolderOptions{})
	require.NoError(t, err)
	require.NoError(t, report.Warning())
	require.Equal(t, photos, s.Folder)
	require.Equal(t, []string{"a.jpg", "b.jpg", "c.png"}, s.Files())
	require.Equal(t, []string{"Car"}, s.LabelsOf("b.jpg"))
	require.Equal(t, []string{"Bridge", "Car"}, s.Tags())
	require.Equal(t, "Loaded existing annotations for 1 images", labeler.LoadMessage(report))
}

func TestOpen_FolderConfigOverrides(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.write(t, filepath.Join(photos, labeler.LocalConfigFile), "default_tags: [Lake]\nautosave: false\n")

	s, _, err := f.l.Open(f.ctx, labeler.FolderOptions{Folder: "."})
	require.NoError(t, err)
	require.Equal(t, annotation.AutosaveManual, s.Autosave())
	require.Equal(t, []string{"Bridge", "Car", "Lake"}, s.Tags())
}

func TestOpen_ExplicitConfigMustExist(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.l.ConfigPath = "/etc/labeler/missing.yaml"

	_, _, err := f.l.Open(f.ctx, labeler.FolderOptions{})
	require.ErrorIs(t, err, labeler.ErrInvalidConfig)
}

func TestAddAndRemove(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.l.Add(f.ctx, labeler.EditOptions{Image: "a.jpg", Tags: []string{"Bridge", " ", "Car", "Bridge"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Bridge", "Car"}, res.Labels)
	require.Equal(t, []string{"Bridge", "Car"}, res.Changed)

	records, err := annotation.DecodeRecords([]byte(f.read(t, filepath.Join(photos, "annotations.json"))))
	require.NoError(t, err)
	require.Equal(t, []annotation.Record{
		{Image: "a.jpg", Labels: []string{"Bridge", "Car"}},
		{Image: "b.jpg", Labels: []string{"Car"}},
	}, records)

	res, err = f.l.Remove(f.ctx, labeler.EditOptions{Image: "b.jpg", Tags: []string{"Car"}})
	require.NoError(t, err)
	require.Equal(t, []string{}, res.Labels)
	require.NotContains(t, f.read(t, filepath.Join(photos, "annotations.json")), "b.jpg")

	_, err = f.l.Add(f.ctx, labeler.EditOptions{Image: "zzz.jpg", Tags: []string{"Car"}})
	require.ErrorIs(t, err, annotation.ErrImageNotFound)

	_, err = f.l.Add(f.ctx, labeler.EditOptions{Image: "a.jpg"})
	require.Error(t, err)
}

func TestAdd_RefusesCorruptFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	path := filepath.Join(photos, "annotations.json")
	f.write(t, path, "{broken")

	_, err := f.l.Add(f.ctx, labeler.EditOptions{Image: "a.jpg", Tags: []string{"Car"}})
	require.ErrorIs(t, err, annotation.ErrCorruptAnnotations)
	require.Equal(t, "{broken", f.read(t, path))
}

func TestShow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.l.Show(f.ctx, labeler.ShowOptions{})
	require.NoError(t, err)
	require.Equal(t, "a.jpg", res.Image)
	require.Equal(t, "Image 1 of 3", res.Position)
	require.Equal(t, "No labels yet", labeler.FormatLabels(res.Labels))

	res, err = f.l.Show(f.ctx, labeler.ShowOptions{Image: "b.jpg"})
	require.NoError(t, err)
	require.Equal(t, "Image 2 of 3", res.Position)
	require.Equal(t, "Car", labeler.FormatLabels(res.Labels))

	_, err = f.l.Show(f.ctx, labeler.ShowOptions{Image: "nope.jpg"})
	require.True(t, annotation.IsImageNotFound(err))
}

func TestList(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cases := []struct {
		name string
		opts labeler.ListOptions
		want []string
	}{
		{name: "all", want: []string{"a.jpg", "b.jpg", "c.png"}},
		{name: "labeled", opts: labeler.ListOptions{Labeled: true}, want: []string{"b.jpg"}},
		{name: "unlabeled", opts: labeler.ListOptions{Unlabeled: true}, want: []string{"a.jpg", "c.png"}},
		{name: "expression", opts: labeler.ListOptions{Expr: "not Car"}, want: []string{"a.jpg", "c.png"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(innerT *testing.T) {
			innerT.Parallel()
			items, err := f.l.List(f.ctx, tc.opts)
			require.NoError(innerT, err)
			got := make([]string, 0, len(items))
			for _, it := range items {
				got = append(got, it.Image)
			}
			require.Equal(innerT, tc.want, got)
		})
	}

	_, err := f.l.List(f.ctx, labeler.ListOptions{Labeled: true, Unlabeled: true})
	require.Error(t, err)
	_, err = f.l.List(f.ctx, labeler.ListOptions{Expr: "Car and"})
	require.ErrorIs(t, err, annotation.ErrInvalidTagExpr)
}

func TestTags(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tags, err := f.l.Tags(f.ctx, labeler.TagsOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"Bridge", "Car"}, tags)

	tags, err = f.l.Tags(f.ctx, labeler.TagsOptions{Prefix: "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"Bridge"}, tags)

	images, err := f.l.Tags(f.ctx, labeler.TagsOptions{Expr: "Car or Bridge"})
	require.NoError(t, err)
	require.Equal(t, []string{"b.jpg"}, images)
}

func TestExportAndSave(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/out", 0o755))

	res, err := f.l.Export(f.ctx, labeler.ExportOptions{Dest: "/out/export.json"})
	require.NoError(t, err)
	require.Equal(t, "Saved annotations for 1 images to /out/export.json", res.Message())
	require.Contains(t, f.read(t, "/out/export.json"), `"image": "b.jpg"`)
	require.Contains(t, f.read(t, filepath.Join(photos, "annotations.json")), `"filename"`)

	saved, err := f.l.Save(f.ctx, labeler.FolderOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, saved.Images)
	require.NotContains(t, f.read(t, filepath.Join(photos, "annotations.json")), `"filename"`)

	_, err = f.l.Remove(f.ctx, labeler.EditOptions{Image: "b.jpg", Tags: []string{"Car"}})
	require.NoError(t, err)
	_, err = f.l.Export(f.ctx, labeler.ExportOptions{Dest: "/out/again.json"})
	require.ErrorIs(t, err, labeler.ErrNothingToExport)
}

func TestConvert(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.l.Convert(f.ctx, labeler.ConvertOptions{In: "annotations.json", Out: "converted.json"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(photos, "converted.json"), res.Out)
	require.Contains(t, f.read(t, res.Out), `"image": "b.jpg"`)
}

func TestSplit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	seed := uint64(11)

	res, err := f.l.Split(f.ctx, labeler.SplitOptions{Train: 2, Test: 2, Seed: &seed})
	require.NoError(t, err)
	require.True(t, res.Shrunk)
	require.Equal(t, uint64(11), res.Seed)
	require.Equal(t, 3, len(res.Train.Images)+len(res.Test.Images))
	require.Equal(t, filepath.Join(photos, dataset.DefaultTrainDir), res.Train.Dir)

	again, err := f.l.Split(f.ctx, labeler.SplitOptions{Train: 2, Test: 2, Seed: &seed, TrainDir: "t2", TestDir: "/elsewhere/test"})
	require.NoError(t, err)
	require.Equal(t, res.Train.Images, again.Train.Images)
	require.Equal(t, filepath.Join(photos, "t2"), again.Train.Dir)
	require.Equal(t, "/elsewhere/test", again.Test.Dir)
}

func TestPrune(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	var confirmed []string
	res, err := f.l.Prune(f.ctx, labeler.PruneOptions{
		Expr:  "Car",
		Count: 1,
		Confirm: func(_ context.Context, selected []string) (bool, error) {
			confirmed = selected
			return true, nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b.jpg"}, confirmed)
	require.Equal(t, []string{"b.jpg"}, res.Deleted)
	exists, err := afero.Exists(f.fs, filepath.Join(photos, "b.jpg"))
	require.NoError(t, err)
	require.False(t, exists)
	require.Equal(t, "[]\n", f.read(t, filepath.Join(photos, "annotations.json")))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.l.Validate(f.ctx, labeler.ValidateOptions{})
	require.NoError(t, err)
	require.True(t, res.Valid())

	f.write(t, "/tmp/bad.json", `[{"image": "gone.jpg", "annotations": ["A", "A"]}]`)
	res, err = f.l.Validate(f.ctx, labeler.ValidateOptions{File: "/tmp/bad.json"})
	require.NoError(t, err)
	require.False(t, res.Valid())
	require.Equal(t, "/0/annotations", res.Violations[0].Location)

	f.write(t, filepath.Join(photos, "annotations.json"), `[{"image": "gone.jpg", "annotations": ["A"]}]`)
	res, err = f.l.Validate(f.ctx, labeler.ValidateOptions{})
	require.NoError(t, err)
	require.Empty(t, res.Violations)
	require.Equal(t, []string{"gone.jpg"}, res.Orphans)
}

func TestStats(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, sandbox.WithClock(now))
	_, err := f.l.Add(f.ctx, labeler.EditOptions{Image: "a.jpg", Tags: []string{"Car", "Lake|Pond"}})
	require.NoError(t, err)

	st, err := f.l.Stats(f.ctx, labeler.FolderOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, st.Images)
	require.Equal(t, 2, st.Labeled)
	require.Equal(t, 1, st.Unlabeled)
	require.Equal(t, []labeler.TagCount{{Tag: "Car", Images: 2}, {Tag: "Lake|Pond", Images: 1}}, st.Tags)
	require.Equal(t, []string{"Bridge"}, st.Unused)
	require.Equal(t, "2026-05-01T12:00:00Z", st.GeneratedAt)

	md := st.Markdown()
	require.Contains(t, md, "- Labeled: 2 (66.7%)")
	require.Contains(t, md, `| Lake\|Pond | 1 |`)

	html, err := st.HTML()
	require.NoError(t, err)
	require.Contains(t, string(html), "<h1>Annotation report</h1>")
	require.Contains(t, string(html), "<table>")
	require.Contains(t, string(html), "<td>Car</td>")

	dest, err := f.l.WriteReport("report.html", html)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(photos, "report.html"), dest)
	require.True(t, strings.HasPrefix(f.read(t, dest), "<h1>"))
}

func TestNewRuntimeFs_UsesJail(t *testing.T) {
	t.Parallel()
	sb := NewSandbox(t)
	l, err := labeler.New(labeler.Options{Root: "/home/testuser", Runtime: sb.Runtime()})
	require.NoError(t, err)

	require.NoError(t, l.FS.MkdirAll("/home/testuser", 0o755))
	require.NoError(t, afero.WriteFile(l.FS, "/home/testuser/a.jpg", []byte("img"), 0o644))
	res, err := l.Add(sb.Context(), labeler.EditOptions{Image: "a.jpg", Tags: []string{"Boat"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Boat"}, res.Labels)
	require.Contains(t, string(sb.MustReadFile("/home/testuser/annotations.json")), `"Boat"`)
}
