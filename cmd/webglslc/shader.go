package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/webglsl"
	"github.com/gogpu/webglsl/shader"
)

// stageByExt maps file extensions to pipeline stages.
var stageByExt = map[string]shader.Stage{
	".vert": shader.StageVertex,
	".vs":   shader.StageVertex,
	".frag": shader.StageFragment,
	".fs":   shader.StageFragment,
}

// stageFromPath infers a stage from the file extension.
func stageFromPath(path string) (shader.Stage, bool) {
	s, ok := stageByExt[strings.ToLower(filepath.Ext(path))]
	return s, ok
}

func (a *app) shaderCommand() *cobra.Command {
	var (
		stageName string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "shader [--stage vertex|fragment] [-o output] <file>",
		Short: "Rewrite a single GLSL shader",
		Long: `Rewrite a single GLSL shader for WebGL2.

The stage is inferred from .vert/.vs and .frag/.fs extensions unless
--stage is given. Output goes to stdout unless -o is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := resolveStage(stageName, args[0])
			if err != nil {
				return err
			}
			t, err := a.transcoder()
			if err != nil {
				return err
			}

			code, err := a.transcodeShader(t, args[0], stage)
			if err != nil {
				return exitError(err)
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), code)
				return err
			}
			if err := writeOutput(output, []byte(code)); err != nil {
				return err
			}
			a.success("rewrote %s to %s", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVar(&stageName, "stage", "", "shader stage: vertex or fragment (default: from file extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func resolveStage(name, path string) (shader.Stage, error) {
	if name != "" {
		return shader.ParseStage(name)
	}
	if stage, ok := stageFromPath(path); ok {
		return stage, nil
	}
	return 0, fmt.Errorf("cannot infer shader stage of %s; use --stage", path)
}

// transcodeShader reads and rewrites one shader file.
func (a *app) transcodeShader(t *webglsl.Transcoder, path string, stage shader.Stage) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read shader: %w", err)
	}

	p := &shader.Program{Name: filepath.Base(path), Stage: stage, Code: string(source)}
	stats, err := t.TranscodeWithStats(p)
	if err != nil {
		return "", err
	}
	a.logger.Debug("shader rewritten", "file", path, "stage", stage,
		"lines", stats.Lines, "commented", stats.CommentedLines,
		"renamed", stats.RenamedAttributes, "downgraded", stats.DowngradedVersion)
	return p.Code, nil
}

// transcodeFile rewrites path into out, choosing the shader or extension
// pipeline by file extension. It reports false for files it does not handle.
func (a *app) transcodeFile(ctx context.Context, path, out string) (bool, error) {
	if isExtensionFile(path) {
		return true, a.transcodeExtensionFile(ctx, path, out)
	}
	stage, ok := stageFromPath(path)
	if !ok {
		return false, nil
	}
	t, err := a.transcoder()
	if err != nil {
		return true, err
	}
	code, err := a.transcodeShader(t, path, stage)
	if err != nil {
		return true, err
	}
	return true, writeOutput(out, []byte(code))
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

