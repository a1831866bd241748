package labeler_test

import (
	"testing"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/labeler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		data    string
		wantErr bool
		check   func(t *testing.T, cfg *labeler.Config)
	}{
		{
			name: "empty",
			data: "  \n",
			check: func(t *testing.T, cfg *labeler.Config) {
				require.Nil(t, cfg.Autosave)
				require.Empty(t, cfg.DefaultTags)
			},
		},
		{
			name: "full",
			data: "default_tags: [Road, Lake]\nannotation_file: labels.json\nautosave: false\nindent: 2\n",
			check: func(t *testing.T, cfg *labeler.Config) {
				require.Equal(t, []string{"Road", "Lake"}, cfg.DefaultTags)
				require.Equal(t, "labels.json", cfg.AnnotationFile)
				require.NotNil(t, cfg.Autosave)
				require.False(t, *cfg.Autosave)
				require.Equal(t, 2, cfg.Indent)
			},
		},
		{name: "bad yaml", data: "default_tags: [", wantErr: true},
		{name: "negative indent", data: "indent: -1", wantErr: true},
		{name: "path as file name", data: "annotation_file: ../x.json", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(innerT *testing.T) {
			innerT.Parallel()
			cfg, err := labeler.ParseConfig([]byte(tc.data), "config.yaml")
			if tc.wantErr {
				require.Error(innerT, err)
				require.True(innerT, labeler.IsInvalidConfig(err))
				return
			}
			require.NoError(innerT, err)
			tc.check(innerT, cfg)
		})
	}
}

func TestConfigMergeAndSessionOptions(t *testing.T) {
	t.Parallel()
	off := false
	user := &labeler.Config{DefaultTags: []string{"Bridge", "Car"}, Indent: 2}
	local := &labeler.Config{DefaultTags: []string{"Car", "Lake"}, Autosave: &off, AnnotationFile: "labels.json"}

	cfg := labeler.DefaultConfig().Merge(user).Merge(local)

	require.Equal(t, []string{"Bridge", "Car", "Lake"}, cfg.DefaultTags)
	require.Equal(t, "labels.json", cfg.AnnotationFile)
	require.Equal(t, 2, cfg.Indent)

	so := cfg.SessionOptions()
	require.Equal(t, annotation.AutosaveManual, so.Autosave)
	require.Equal(t, []string{"Bridge", "Car", "Lake"}, so.DefaultTags)

	require.Equal(t, annotation.AutosaveImmediate, labeler.DefaultConfig().SessionOptions().Autosave)
	require.Equal(t, []string{"Bridge", "Car"}, user.Merge(nil).DefaultTags)
}

func TestReadConfig_Missing(t *testing.T) {
	t.Parallel()
	cfg, err := labeler.ReadConfig(afero.NewMemMapFs(), "/nope.yaml")
	require.NoError(t, err)
	require.Nil(t, cfg)
}
