// Package watch re-runs a handler when SQL files change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before calling the handler.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives the sorted, de-duplicated paths that changed.
type Handler func(ctx context.Context, changed []string)

// Watcher watches directories and files for changes to SQL files.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   *slog.Logger

	// files limits events to explicitly named files; directories match any
	// SQL file beneath them.
	files map[string]bool
	dirs  []string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher over paths, which may name files or directories.
func New(paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		paths:    paths,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled, calling handle after each burst of
// changes. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range w.paths {
		if err := w.add(watcher, path); err != nil {
			return err
		}
	}
	w.logger.Debug("watching", slog.Any("paths", w.paths))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(watcher, event.Name)
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			clear(pending)
			slices.Sort(changed)
			w.logger.Debug("change detected", slog.Int("files", len(changed)))
			handle(ctx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) add(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if !info.IsDir() {
		w.files[filepath.Clean(path)] = true
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	}
	w.dirs = append(w.dirs, filepath.Clean(path))
	if err := watchDirRecursive(watcher, path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return nil
}

// watchNewDir starts watching a directory created under a watched tree.
func (w *Watcher) watchNewDir(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || !w.underDir(path) {
		return
	}
	if err := watchDirRecursive(watcher, path); err != nil {
		w.logger.Warn("failed to watch new directory", slog.String("path", path), slog.Any("error", err))
	}
}

func (w *Watcher) matches(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".sql") && w.underDir(path)
}

func (w *Watcher) underDir(path string) bool {
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchDirRecursive adds a directory and all subdirectories to the watcher,
// skipping hidden directories.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
