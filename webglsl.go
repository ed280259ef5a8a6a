// Package webglsl ports cross-compiled GLSL shaders to WebGL2.
//
// Shaders produced by desktop cross-compilers use constructs WebGL2 rejects:
// unsupported #version numbers, uniform blocks, layout qualifiers, inout
// parameters and engine-specific attribute names. webglsl rewrites such a
// shader line by line into a form a WebGL2 context accepts, keeping the line
// count so compiler diagnostics still point at the original source.
//
// Example usage:
//
//	out, err := webglsl.Transcode(source, shader.StageVertex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Shader records that carry their source as an encoded reference (a data URI
// inside a glTF KHR_techniques_webgl extension, for instance) are handled by
// a Transcoder:
//
//	t := webglsl.New(webglsl.DefaultOptions())
//	if err := t.Transcode(program); err != nil {
//	    log.Fatal(err)
//	}
//
// The rewrite rules live in the rewrite package; the extension package
// processes whole shader collections.
package webglsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/webglsl/datauri"
	"github.com/gogpu/webglsl/rewrite"
	"github.com/gogpu/webglsl/shader"
)

// Options configures a Transcoder.
type Options struct {
	// Rewrite configures the line rewrite pass.
	Rewrite rewrite.Options

	// Codec decodes and encodes shader references (default: datauri.Codec).
	Codec shader.Codec
}

// DefaultOptions returns options targeting GLSL ES 3.00 with data URI references.
func DefaultOptions() Options {
	return Options{
		Rewrite: rewrite.DefaultOptions(),
		Codec:   datauri.Codec{},
	}
}

// Transcoder rewrites shader programs. It holds no per-call state and is
// safe for concurrent use as long as its Codec is.
type Transcoder struct {
	engine *rewrite.Engine
	codec  shader.Codec
}

// New creates a Transcoder. A nil Codec selects datauri.Codec.
func New(opts Options) *Transcoder {
	codec := opts.Codec
	if codec == nil {
		codec = datauri.Codec{}
	}
	return &Transcoder{
		engine: rewrite.New(opts.Rewrite),
		codec:  codec,
	}
}

// Codec returns the reference codec used by t.
func (t *Transcoder) Codec() shader.Codec {
	return t.codec
}

// Transcode resolves the source of p, rewrites it for p.Stage and stores the
// result in both p.Code and p.Reference.
//
// p is modified only when every step succeeds. A program with neither inline
// code nor a decodable reference fails with an error for which
// shader.IsMissingShaderSource reports true.
func (t *Transcoder) Transcode(p *shader.Program) error {
	_, err := t.TranscodeWithStats(p)
	return err
}

// TranscodeWithStats is like Transcode and also returns rewrite statistics.
func (t *Transcoder) TranscodeWithStats(p *shader.Program) (rewrite.Stats, error) {
	source, err := shader.Resolve(p, t.codec)
	if err != nil {
		return rewrite.Stats{}, err
	}

	code, stats := t.engine.RewriteWithStats(source, p.Stage)

	reference, err := t.codec.Encode(code)
	if err != nil {
		return rewrite.Stats{}, fmt.Errorf("webglsl: encode shader %q: %w", p.Name, err)
	}

	p.Code = code
	p.Reference = reference
	return stats, nil
}

// TranscodeSource rewrites raw source text for stage.
func (t *Transcoder) TranscodeSource(source string, stage shader.Stage) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", shader.MissingShaderSourceError("", nil)
	}
	return t.engine.Rewrite(source, stage), nil
}

var defaultTranscoder = New(DefaultOptions())

// Transcode rewrites raw source text for stage using DefaultOptions.
func Transcode(source string, stage shader.Stage) (string, error) {
	return defaultTranscoder.TranscodeSource(source, stage)
}
