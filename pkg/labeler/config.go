package labeler

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the shape of both the user config and the folder-local
// .labeler.yaml.
type Config struct {
	// DefaultTags seed the tag vocabulary of every session.
	DefaultTags []string `yaml:"default_tags,omitempty"`
	// AnnotationFile overrides the canonical file name.
	AnnotationFile string `yaml:"annotation_file,omitempty"`
	// Autosave toggles saving after every mutation. Unset means on.
	Autosave *bool `yaml:"autosave,omitempty"`
	// Indent is the JSON indentation width.
	Indent int `yaml:"indent,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	on := true
	return &Config{
		AnnotationFile: annotation.DefaultAnnotationFile,
		Autosave:       &on,
		Indent:         annotation.DefaultIndent,
	}
}

// ParseConfig decodes YAML config data. Empty input yields an empty config.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &InvalidConfigError{Path: path, Msg: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: path, Msg: err.Error()}
	}
	return cfg, nil
}

// ReadConfig reads a config file. A missing file is not an error and yields
// (nil, nil).
func ReadConfig(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Indent)
	}
	if strings.ContainsAny(c.AnnotationFile, `/\`) {
		return fmt.Errorf("annotation_file must be a file name, got %q", c.AnnotationFile)
	}
	return nil
}

// Merge overlays other onto c and returns the result. Tags are unioned, c's
// first; scalar fields from other win when set.
func (c *Config) Merge(other *Config) *Config {
	if c == nil {
		c = &Config{}
	}
	out := *c
	out.DefaultTags = slices.Clone(c.DefaultTags)
	if other == nil {
		return &out
	}
	for _, t := range other.DefaultTags {
		if !slices.Contains(out.DefaultTags, t) {
			out.DefaultTags = append(out.DefaultTags, t)
		}
	}
	if other.AnnotationFile != "" {
		out.AnnotationFile = other.AnnotationFile
	}
	if other.Autosave != nil {
		v := *other.Autosave
		out.Autosave = &v
	}
	if other.Indent != 0 {
		out.Indent = other.Indent
	}
	return &out
}

// SessionOptions converts the config into options for annotation.Open.
func (c *Config) SessionOptions() annotation.SessionOptions {
	policy := annotation.AutosaveImmediate
	if c.Autosave != nil && !*c.Autosave {
		policy = annotation.AutosaveManual
	}
	return annotation.SessionOptions{
		AnnotationFile: c.AnnotationFile,
		Indent:         c.Indent,
		DefaultTags:    slices.Clone(c.DefaultTags),
		Autosave:       policy,
	}
}

// ToYAML serializes the config.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
