package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/webglsl/casstore"
	"github.com/gogpu/webglsl/extension"
	"github.com/gogpu/webglsl/shader"
)

func isExtensionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".json":
		return true
	}
	return false
}

func (a *app) extensionCommand() *cobra.Command {
	var output, blobs string
	cmd := &cobra.Command{
		Use:   "extension [-o output] [--blobs dir] <file.gltf|file.json>",
		Short: "Rewrite every shader of a KHR_techniques_webgl payload",
		Long: `Rewrite every shader of a glTF document or a bare KHR_techniques_webgl
object. Shader sources may be inline code or data URIs; both are replaced by
the rewritten text. All other fields are kept.

With extension.on_error set to "skip", failed shaders are left as they were
and reported as warnings; with "fail" (the default) nothing is written.

With rewrite.reference set to "sha256", each shader uri becomes the digest of
its rewritten text and --blobs names a directory that receives one
<digest>.glsl file per shader.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.transcodeExtension(cmd.Context(), args[0], blobs)
			if err != nil {
				return exitError(err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			a.success("rewrote %s to %s", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&blobs, "blobs", "", "directory for sha256-referenced shader sources")
	return cmd
}

// transcodeExtension decodes, processes and re-encodes one payload file.
// Content-addressed sources are written to blobs when it is set.
func (a *app) transcodeExtension(ctx context.Context, path, blobs string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	defer f.Close()

	doc, err := extension.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := a.transcoder()
	if err != nil {
		return nil, err
	}
	proc, policy, err := a.processor(t)
	if err != nil {
		return nil, err
	}

	report, err := proc.Process(ctx, doc.Collection())
	if err != nil {
		// Under PolicySkip the document is still written when every error
		// is a per-shader failure.
		committed := policy == extension.PolicySkip && len(report.Failures) > 0 && ctx.Err() == nil
		if !committed {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, f := range report.Failures {
		a.warn("skipped shader %d (%s): %v", f.Index, f.Name, f.Err)
	}
	a.logger.Info("payload rewritten", "file", path, "shaders", report.Transcoded,
		"failed", len(report.Failures), "lines", report.Stats.Lines)

	if blobs != "" {
		n, err := writeBlobs(blobs, t.Codec())
		if err != nil {
			return nil, err
		}
		a.logger.Debug("wrote shader blobs", "dir", blobs, "count", n)
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *app) transcodeExtensionFile(ctx context.Context, path, out string) error {
	data, err := a.transcodeExtension(ctx, path, "")
	if err != nil {
		return err
	}
	return writeOutput(out, data)
}

// writeBlobs writes every source held by a content-addressed codec as
// <digest>.glsl under dir. Other codecs embed their sources and write nothing.
func writeBlobs(dir string, codec shader.Codec) (int, error) {
	store, ok := codec.(*casstore.Store)
	if !ok {
		return 0, nil
	}
	blobs := store.Blobs()
	for ref, text := range blobs {
		name := strings.TrimPrefix(ref, casstore.Scheme) + ".glsl"
		if err := writeOutput(filepath.Join(dir, name), []byte(text)); err != nil {
			return 0, err
		}
	}
	return len(blobs), nil
}
