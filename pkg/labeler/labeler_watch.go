package labeler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/labeler/pkg/annotation"
)

// DefaultWatchDebounce is how long the folder must stay quiet before a
// reload.
const DefaultWatchDebounce = 120 * time.Millisecond

type WatchOptions struct {
	FolderOptions

	Debounce time.Duration
	// OnLoad is called with the session after the initial load and after
	// every reload.
	OnLoad func(s *annotation.Session, report annotation.LoadReport)
	// Ready, when set, is closed once the watcher is installed.
	Ready chan<- struct{}
}

// Watch keeps a session in sync with the folder on disk. Image files and the
// annotation file are watched; bursts of events are coalesced into one
// reload. It returns when ctx is cancelled.
func (l *Labeler) Watch(ctx context.Context, opts WatchOptions) error {
	lg := mylog.LoggerFromContext(ctx)
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchDebounce
	}
	onLoad := opts.OnLoad
	if onLoad == nil {
		onLoad = func(*annotation.Session, annotation.LoadReport) {}
	}

	s, report, err := l.Open(ctx, opts.FolderOptions)
	if err != nil {
		return err
	}
	annotationFile := filepath.Base(s.Path())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch folder: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watcher.Add(l.HostPath(s.Folder)); err != nil {
		return fmt.Errorf("watch folder %s: %w", s.Folder, err)
	}
	onLoad(s, report)
	if opts.Ready != nil {
		close(opts.Ready)
	}

	relevant := func(name string) bool {
		base := filepath.Base(name)
		if strings.HasPrefix(base, ".") && strings.Contains(base, ".tmp-") {
			return false
		}
		return base == annotationFile || annotation.IsImageFile(base)
	}

	var (
		pending     bool
		pendingFrom time.Time
	)
	tick := min(opts.Debounce, 100*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if pending && time.Since(pendingFrom) >= opts.Debounce {
				pending = false
				report := s.Reload(ctx)
				lg.Debug("folder reloaded", "folder", s.Folder, "images", s.Len(), "labeled", s.Labeled())
				onLoad(s, report)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending = true
				pendingFrom = time.Now()
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			lg.Warn("folder watcher error", "folder", s.Folder, "err", watchErr)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
