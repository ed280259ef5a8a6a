// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// startWatcher runs w until the test ends.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errCh)
	})
}

func TestWatcher_DebouncesMatchingChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan struct{}, 1)
	w, err := New(Config{
		Dir:      dir,
		Patterns: []string{"**/*.vert", "**/*.frag"},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	require.NoError(t, err)
	startWatcher(t, w)

	for _, name := range []string{"a.vert", "b.frag", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name), "void main() {}\n")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"a.vert", "b.frag"}, calls[0])
}

func TestWatcher_NewDirectories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	changed := make(chan []string, 4)
	w, err := New(Config{
		Dir:      dir,
		Patterns: []string{"**/*.vert"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, c []string) error {
			changed <- c
			return nil
		},
	})
	require.NoError(t, err)
	startWatcher(t, w)

	sub := filepath.Join(dir, "shaders")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "unlit.vert"), "void main() {}\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if slices.Contains(c, filepath.Join("shaders", "unlit.vert")) {
				return
			}
		case <-deadline:
			t.Fatal("change in a new directory was not reported")
		}
	}
}

func TestWatcher_Ignore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "out"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	changed := make(chan []string, 4)
	w, err := New(Config{
		Dir:      dir,
		Ignore:   []string{"out/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, c []string) error {
			changed <- c
			return nil
		},
	})
	require.NoError(t, err)
	startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "out", "a.vert"), "x")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "x")
	time.Sleep(20 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "b.vert"), "x")

	select {
	case c := <-changed:
		assert.Equal(t, []string{"b.vert"}, c)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Error(t, w.Run(ctx))
}

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.vert", "lib/b.frag", "lib/c.txt", "node_modules/x.vert", "out/d.vert"} {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), "x")
	}

	w, err := New(Config{
		Dir:      dir,
		Patterns: []string{"**/*.vert", "**/*.frag"},
		Ignore:   []string{"out/**"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })

	files, err := w.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.vert", filepath.Join("lib", "b.frag")}, files)
	assert.True(t, filepath.IsAbs(w.Dir()))
}

func TestNew_InvalidPatterns(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir(), Patterns: []string{"[unclosed"}})
	assert.ErrorContains(t, err, "invalid watch pattern")

	_, err = New(Config{Dir: t.TempDir(), Ignore: []string{"{a,b"}})
	assert.ErrorContains(t, err, "invalid ignore pattern")
}

func TestMatching(t *testing.T) {
	w := &Watcher{
		cfg:     Config{Patterns: []string{"**/*.vert"}},
		ignores: slices.Concat(defaultIgnores, []string{"build/**"}),
	}
	tests := []struct {
		rel  string
		want bool
	}{
		{"a.vert", true},
		{filepath.Join("deep", "er", "a.vert"), true},
		{"a.frag", false},
		{filepath.Join("build", "a.vert"), false},
		{filepath.Join(".git", "a.vert"), false},
		{"a.vert.swp", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.reported(tt.rel), tt.rel)
	}
	assert.True(t, w.ignoredDir("node_modules"))
	assert.False(t, w.ignoredDir("shaders"))
}
