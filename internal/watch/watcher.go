// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package watch re-runs a callback when shader sources under a directory change.
//
// Events are filtered by doublestar patterns and coalesced over a debounce
// window; the callback receives the sorted set of changed paths, relative to
// the watched directory, and never runs concurrently with itself.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// defaultIgnores are never reported, whatever the patterns say.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Dir is the watched directory (default: working directory).
	Dir string

	// Patterns select reported files, e.g. "**/*.vert". Empty matches all.
	Patterns []string

	// Ignore lists extra patterns that are never reported.
	Ignore []string

	// Debounce is the quiet period before OnChange fires (default: 200ms).
	Debounce time.Duration

	// OnChange receives the changed paths. Errors are logged, not fatal.
	OnChange func(ctx context.Context, changed []string) error

	// Logger receives watcher diagnostics. Nil discards.
	Logger *log.Logger
}

// Watcher monitors a directory tree. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	dir      string
	ignores  []string
	debounce time.Duration
	logger   *log.Logger
	started  atomic.Bool
}

// New validates cfg and registers every non-ignored directory under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve directory: %w", err)
	}
	if err := validatePatterns("watch", cfg.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns("ignore", cfg.Ignore); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		dir:      abs,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}

	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Scan returns every existing file that Run would report, sorted.
func (w *Watcher) Scan() ([]string, error) {
	patterns := w.cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"**"}
	}

	fsys := os.DirFS(w.dir)
	found := make(map[string]struct{})
	for _, pat := range patterns {
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("watch: scan %q: %w", pat, err)
		}
		for _, m := range matches {
			if !w.ignored(m) {
				found[filepath.FromSlash(m)] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(found)), nil
}

// Run processes events until ctx is canceled, which returns nil. Fatal
// watcher errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Op == fsnotify.Chmod {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addNewDir(evt.Name)
			}
			rel, err := filepath.Rel(w.dir, evt.Name)
			if err != nil || !w.reported(rel) {
				continue
			}
			w.logger.Debug("change", "path", rel, "op", evt.Op)

			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("change handler failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(w.dir, path); relErr == nil && rel != "." && w.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %q: %w", root, err)
	}
	return nil
}

// addNewDir extends the watch to a directory created after New.
func (w *Watcher) addNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) reported(rel string) bool {
	if w.ignored(rel) {
		return false
	}
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, rel)
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) ignoredDir(rel string) bool {
	return w.ignored(rel) || w.ignored(rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	name := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func validatePatterns(label string, patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
