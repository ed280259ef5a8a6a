package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/webglsl/internal/watch"
)

const defaultWatchOut = "webgl"

func (a *app) watchCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "watch [--out dir] [dir]",
		Short: "Rewrite shaders whenever they change",
		Long: `Watch a directory and rewrite every shader or glTF payload matching
watch.patterns, first once for all existing files and then on each change.
Results are written under --out with the same relative path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return a.runWatch(cmd.Context(), dir, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: <dir>/"+defaultWatchOut+")")
	return cmd
}

func (a *app) runWatch(ctx context.Context, dir, out string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(absDir, defaultWatchOut)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}

	var ignore []string
	if rel, err := filepath.Rel(absDir, absOut); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel)+"/**")
	}

	w, err := watch.New(watch.Config{
		Dir:      absDir,
		Patterns: a.cfg.Watch.Patterns,
		Ignore:   ignore,
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logger.WithPrefix("webglslc/watch"),
		OnChange: func(ctx context.Context, changed []string) error {
			return a.rewriteAll(ctx, absDir, absOut, changed)
		},
	})
	if err != nil {
		return err
	}

	existing, err := w.Scan()
	if err != nil {
		return err
	}
	if err := a.rewriteAll(ctx, absDir, absOut, existing); err != nil {
		a.logger.Error("initial rewrite failed", "error", err)
	}

	a.logger.Info("watching", "dir", absDir, "out", absOut, "patterns", a.cfg.Watch.Patterns)
	return w.Run(ctx)
}

// rewriteAll rewrites each path (relative to dir) into the same relative
// path under out. Deleted files are skipped. Errors are logged per file; the
// joined error is returned.
func (a *app) rewriteAll(ctx context.Context, dir, out string, paths []string) error {
	var errs []error
	written := 0
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(dir, rel)
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			a.logger.Debug("skipping removed file", "file", rel)
			continue
		}

		handled, err := a.transcodeFile(ctx, src, filepath.Join(out, rel))
		switch {
		case err != nil:
			a.logger.Error("rewrite failed", "file", rel, "error", err)
			errs = append(errs, err)
		case !handled:
			a.logger.Debug("skipping unsupported file", "file", rel)
		default:
			written++
		}
	}
	if written > 0 {
		a.success("rewrote %d file(s) into %s", written, out)
	}
	return errors.Join(errs...)
}
