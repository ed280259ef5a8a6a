package webglsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/webglsl/casstore"
	"github.com/gogpu/webglsl/datauri"
	"github.com/gogpu/webglsl/rewrite"
	"github.com/gogpu/webglsl/shader"
)

const vertexSource = `#version 310 es
uniform 	vec4 hlslcc_mtx4x4unity_ObjectToWorld[4];
in highp vec3 in_POSITION0;
void main()
{
    gl_Position = hlslcc_mtx4x4unity_ObjectToWorld[3] * vec4(in_POSITION0, 1.0);
    return;
}
`

const fragmentSource = `#version 300 es
precision highp float;
layout(location = 0) out highp vec4 SV_Target0;
void main()
{
    SV_Target0 = vec4(1.0);
}
`

// failingCodec decodes from a map and refuses to encode.
type failingCodec struct {
	refs map[string]string
}

func (c failingCodec) Decode(ref string) (string, error) {
	if text, ok := c.refs[ref]; ok {
		return text, nil
	}
	return "", errors.New("unknown reference")
}

func (failingCodec) Encode(string) (string, error) {
	return "", errors.New("encode disabled")
}

// TestTranscode tests the package-level convenience function.
func TestTranscode(t *testing.T) {
	out, err := Transcode(vertexSource, shader.StageVertex)
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if !strings.HasPrefix(out, "#version 300 es\n// downgraded version from 310") {
		t.Errorf("version was not downgraded:\n%s", out)
	}
	if !strings.Contains(out, "in highp vec3 position;") {
		t.Errorf("attribute was not renamed:\n%s", out)
	}
	if !strings.Contains(out, "vec4 osw[4] = hlslcc_mtx4x4unity_ObjectToWorld;") {
		t.Errorf("main prologue missing:\n%s", out)
	}
}

// TestTranscode_EmptySource tests that blank input is a missing shader source.
func TestTranscode_EmptySource(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t\n"} {
		_, err := Transcode(src, shader.StageFragment)
		if !shader.IsMissingShaderSource(err) {
			t.Errorf("Transcode(%q) error = %v, want missing shader source", src, err)
		}
	}
}

// TestTranscoder_InlineCode tests a program carrying inline code.
func TestTranscoder_InlineCode(t *testing.T) {
	tr := New(DefaultOptions())
	p := &shader.Program{Name: "unlit", Stage: shader.StageFragment, Code: fragmentSource}

	if err := tr.Transcode(p); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if strings.Contains(p.Code, "layout(") {
		t.Errorf("layout qualifier survived:\n%s", p.Code)
	}
	if !strings.HasPrefix(p.Reference, "data:text/plain") {
		t.Errorf("Reference = %q, want a data URI", p.Reference)
	}

	decoded, err := datauri.Codec{}.Decode(p.Reference)
	if err != nil {
		t.Fatalf("Decode(Reference) failed: %v", err)
	}
	if decoded != p.Code {
		t.Errorf("Reference decodes to %q, want Code %q", decoded, p.Code)
	}
}

// TestTranscoder_Reference tests a program carrying only a reference.
func TestTranscoder_Reference(t *testing.T) {
	ref, _ := datauri.Codec{}.Encode(vertexSource)
	p := &shader.Program{Name: "unlit", Stage: shader.StageVertex, Reference: ref}

	if err := New(DefaultOptions()).Transcode(p); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	want := rewrite.Rewrite(vertexSource, shader.StageVertex)
	if p.Code != want {
		t.Errorf("Code =\n%s\nwant\n%s", p.Code, want)
	}
}

// TestTranscoder_CustomCodec tests that the reference codec is substitutable.
func TestTranscoder_CustomCodec(t *testing.T) {
	store := casstore.New()
	ref, _ := store.Encode(fragmentSource)

	tr := New(Options{Rewrite: rewrite.DefaultOptions(), Codec: store})
	p := &shader.Program{Name: "lit", Stage: shader.StageFragment, Reference: ref}
	if err := tr.Transcode(p); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if p.Reference != casstore.Key(p.Code) {
		t.Errorf("Reference = %q, want key of rewritten code", p.Reference)
	}
	if store.Len() != 2 {
		t.Errorf("store holds %d blobs, want 2", store.Len())
	}
}

// TestTranscoder_MissingSource tests programs without any usable source.
func TestTranscoder_MissingSource(t *testing.T) {
	tr := New(DefaultOptions())
	tests := []struct {
		name string
		p    *shader.Program
	}{
		{"empty", &shader.Program{Name: "a"}},
		{"whitespace code", &shader.Program{Name: "b", Code: " \n "}},
		{"bad reference", &shader.Program{Name: "c", Reference: "not-a-data-uri"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.p
			err := tr.Transcode(tt.p)
			if !shader.IsMissingShaderSource(err) {
				t.Fatalf("error = %v, want missing shader source", err)
			}
			if *tt.p != before {
				t.Errorf("program modified on failure: %+v", *tt.p)
			}
		})
	}

	if err := tr.Transcode(nil); !shader.IsMissingInput(err) {
		t.Errorf("Transcode(nil) error = %v, want missing input", err)
	}
}

// TestTranscoder_AllOrNothing tests that an encode failure leaves the program untouched.
func TestTranscoder_AllOrNothing(t *testing.T) {
	codec := failingCodec{refs: map[string]string{"ref:1": vertexSource}}
	tr := New(Options{Rewrite: rewrite.DefaultOptions(), Codec: codec})

	p := &shader.Program{Name: "unlit", Stage: shader.StageVertex, Reference: "ref:1"}
	err := tr.Transcode(p)
	if err == nil {
		t.Fatal("expected encode error")
	}
	if shader.IsMissingShaderSource(err) {
		t.Errorf("encode failure misreported as missing source: %v", err)
	}
	if !strings.Contains(err.Error(), `"unlit"`) {
		t.Errorf("error %q does not name the shader", err)
	}
	if p.Code != "" || p.Reference != "ref:1" {
		t.Errorf("program modified on failure: %+v", *p)
	}
}

// TestTranscoder_Stats tests that statistics are reported per call.
func TestTranscoder_Stats(t *testing.T) {
	p := &shader.Program{Name: "unlit", Stage: shader.StageVertex, Code: vertexSource}
	stats, err := New(DefaultOptions()).TranscodeWithStats(p)
	if err != nil {
		t.Fatalf("TranscodeWithStats failed: %v", err)
	}
	if !stats.DowngradedVersion || !stats.InjectedInstancing {
		t.Errorf("stats = %+v, want downgrade and instancing", stats)
	}
	if stats.RenamedAttributes != 2 {
		t.Errorf("RenamedAttributes = %d, want 2", stats.RenamedAttributes)
	}
}

// TestNew_NilCodec tests that a nil codec falls back to data URIs.
func TestNew_NilCodec(t *testing.T) {
	tr := New(Options{})
	if _, ok := tr.Codec().(datauri.Codec); !ok {
		t.Errorf("Codec() = %T, want datauri.Codec", tr.Codec())
	}
	out, err := tr.TranscodeSource(fragmentSource, shader.StageFragment)
	if err != nil {
		t.Fatalf("TranscodeSource failed: %v", err)
	}
	if !strings.HasPrefix(out, "#version 300 es\n") {
		t.Errorf("zero options should target 300 es:\n%s", out)
	}
}
