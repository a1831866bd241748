package labeler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/labeler/pkg/annotation"
	"github.com/jlrickert/labeler/pkg/internal"
	"github.com/spf13/afero"
)

// Labeler is the service layer behind the CLI and the MCP server. It owns
// path resolution, configuration and the filesystem every operation uses.
type Labeler struct {
	// Root is the working directory folders are resolved against.
	Root string
	// Runtime carries process-level dependencies.
	Runtime *toolkit.Runtime
	// FS is the filesystem annotation files and images are read from. Paths
	// handed to it are the runtime's virtual paths.
	FS afero.Fs

	// ConfigPath is an explicit user config file. When empty the default
	// per-user location is used.
	ConfigPath string

	mu        sync.Mutex
	userCache *Config
}

type Options struct {
	Root       string
	ConfigPath string
	Runtime    *toolkit.Runtime
	// FS overrides the filesystem. Defaults to the OS filesystem, confined
	// to the runtime jail when one is set.
	FS afero.Fs
}

func New(opts Options) (*Labeler, error) {
	rt := opts.Runtime
	if rt == nil {
		var err error
		rt, err = toolkit.NewRuntime()
		if err != nil {
			return nil, fmt.Errorf("unable to create runtime: %w", err)
		}
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runtime: %w", err)
	}

	if opts.Root == "" {
		wd, err := rt.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to determine working directory: %w", err)
		}
		opts.Root = wd
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = NewRuntimeFs(rt)
	}
	return &Labeler{
		Root:       opts.Root,
		Runtime:    rt,
		FS:         fsys,
		ConfigPath: opts.ConfigPath,
	}, nil
}

// NewRuntimeFs returns the OS filesystem seen through the runtime jail.
func NewRuntimeFs(rt *toolkit.Runtime) afero.Fs {
	fsys := afero.NewOsFs()
	if jail := strings.TrimSpace(rt.GetJail()); jail != "" {
		return afero.NewBasePathFs(fsys, jail)
	}
	return fsys
}

// HostPath maps a virtual path to the real OS path. It is needed only by
// code that talks to the OS directly, such as the file watcher.
func (l *Labeler) HostPath(path string) string {
	jail := strings.TrimSpace(l.Runtime.GetJail())
	if jail == "" {
		return path
	}
	return filepath.Join(jail, strings.TrimPrefix(path, string(filepath.Separator)))
}

// ResolvePath resolves a user supplied path. Relative paths are resolved
// against Root and "~" expands to the home directory.
func (l *Labeler) ResolvePath(path string) (string, error) {
	return l.resolveFrom(l.Root, path)
}

func (l *Labeler) resolveFrom(base, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
		path = filepath.Join(base, path)
	}
	resolved, err := l.Runtime.ResolvePath(path, true)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", path, err)
	}
	return filepath.Clean(resolved), nil
}

// UserConfigPath returns the user config file in effect.
func (l *Labeler) UserConfigPath() (string, error) {
	if l.ConfigPath != "" {
		return l.ResolvePath(l.ConfigPath)
	}
	home, _ := l.Runtime.GetHome()
	dir, err := internal.ConfigDir(l.Runtime.Get, home, DefaultAppName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// UserConfig reads the user config once. An explicit config path must parse;
// problems with the implicit file are logged and ignored.
func (l *Labeler) UserConfig(ctx context.Context) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.userCache != nil {
		return l.userCache, nil
	}
	lg := mylog.LoggerFromContext(ctx)
	path, err := l.UserConfigPath()
	if err != nil {
		if l.ConfigPath != "" {
			return nil, err
		}
		lg.Debug("no user config location", "err", err)
		l.userCache = &Config{}
		return l.userCache, nil
	}
	cfg, err := ReadConfig(l.FS, path)
	if err != nil {
		if l.ConfigPath != "" {
			return nil, err
		}
		lg.Warn("ignoring user config", "path", path, "err", err)
		cfg = nil
	}
	if cfg == nil {
		if l.ConfigPath != "" {
			return nil, &InvalidConfigError{Path: path, Msg: "file does not exist"}
		}
		cfg = &Config{}
	}
	l.userCache = cfg
	return cfg, nil
}

// FolderConfig merges the defaults, the user config and the folder-local
// .labeler.yaml, in that order. A broken folder-local file is skipped with a
// warning.
func (l *Labeler) FolderConfig(ctx context.Context, folder string) (*Config, error) {
	user, err := l.UserConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig().Merge(user)

	localPath := filepath.Join(folder, LocalConfigFile)
	local, err := ReadConfig(l.FS, localPath)
	if err != nil {
		mylog.LoggerFromContext(ctx).Warn("ignoring folder config", "path", localPath, "err", err)
		return cfg, nil
	}
	return cfg.Merge(local), nil
}

// FolderOptions selects the image folder of an operation.
type FolderOptions struct {
	// Folder is the image folder. Empty means Root.
	Folder string
}

// Open resolves the folder, applies its config and loads a session.
func (l *Labeler) Open(ctx context.Context, opts FolderOptions) (*annotation.Session, annotation.LoadReport, error) {
	folder, err := l.ResolvePath(opts.Folder)
	if err != nil {
		return nil, annotation.LoadReport{}, err
	}
	cfg, err := l.FolderConfig(ctx, folder)
	if err != nil {
		return nil, annotation.LoadReport{}, err
	}
	s, report := annotation.Open(ctx, l.FS, folder, cfg.SessionOptions())
	return s, report, nil
}

// openOneShot opens a session for a single command. Autosave is turned off
// and the command saves once at the end. A corrupt annotation file is an
// error here: a one-shot save would replace it with a nearly empty one.
func (l *Labeler) openOneShot(ctx context.Context, opts FolderOptions) (*annotation.Session, annotation.LoadReport, *Config, error) {
	folder, err := l.ResolvePath(opts.Folder)
	if err != nil {
		return nil, annotation.LoadReport{}, nil, err
	}
	cfg, err := l.FolderConfig(ctx, folder)
	if err != nil {
		return nil, annotation.LoadReport{}, nil, err
	}
	so := cfg.SessionOptions()
	so.Autosave = annotation.AutosaveManual
	s, report := annotation.Open(ctx, l.FS, folder, so)
	for _, w := range report.Warnings {
		if errors.Is(w, annotation.ErrCorruptAnnotations) {
			return nil, report, nil, w
		}
	}
	return s, report, cfg, nil
}
