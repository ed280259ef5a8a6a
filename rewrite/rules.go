// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rewrite

import (
	"regexp"
	"strings"
)

// Anchors matched against the cross-compiler output.
const (
	legacyPrecision   = "precision mediump float;"
	uniformKeyword    = "uniform"
	uniformScopeToken = "UNITY_UNIFORM"
	inoutPrefix       = "inout "
	lineComment       = "//"

	removedBlockComment = "// removed unsupported block: "
	downgradeComment    = "\n// downgraded version from %s (unsupported shader version)"
)

// Vertex instancing anchors and the names the runtime expects.
const (
	positionDecl     = "in highp vec3 position;"
	mainDecl         = "void main()"
	objectToWorld    = "hlslcc_mtx4x4unity_ObjectToWorld"
	localToWorld     = "osw"
	instancingFlag   = "USE_INSTANCING"
	instanceMatrixID = "instanceMatrix"
)

// commentedDirectives are the preprocessor prefixes that WebGL builds of the
// cross-compiled shaders cannot keep.
var commentedDirectives = []string{"#define", "#if", "#endif", "#else"}

// unsupportedExtensions are texture-sampling extensions without a WebGL2
// equivalent in the runtime.
var unsupportedExtensions = []string{
	"GL_EXT_shader_texture_lod",
	"GL_EXT_shader_framebuffer_fetch",
}

var (
	versionDirective = regexp.MustCompile(`^(\s*#\s*version\s+)(\d{3})(\s+(?:es|core|compatibility))?\b`)
	blockStart       = regexp.MustCompile(`.*?uniform\s+.+?\s+\{`)
	layoutQualifier  = regexp.MustCompile(`layout\(.+?\)\s+?`)
	macroInvocation  = regexp.MustCompile(`[A-Z_]+\(\d\)\s?`)
)

// attributeRenames maps the cross-compiler's vertex inputs to the attribute
// names three.js binds geometry to.
var attributeRenames = [...]struct{ from, to string }{
	{"in_POSITION0", "position"},
	{"in_NORMAL0", "normal"},
	{"in_TANGENT0", "tangent"},
	{"in_TEXCOORD0", "uv"},
	{"in_TEXCOORD1", "uv2"},
	{"in_TEXCOORD2", "uv3"},
	{"in_TEXCOORD3", "uv4"},
	{"in_COLOR0", "color"},
}

// attributePattern matches any table entry as a whole identifier, so a name
// that merely starts with an entry (in_TEXCOORD10) is left alone.
var (
	attributePattern = buildAttributePattern()
	attributeLookup  = buildAttributeLookup()
)

func buildAttributePattern() *regexp.Regexp {
	names := make([]string, len(attributeRenames))
	for i, r := range attributeRenames {
		names[i] = regexp.QuoteMeta(r.from)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`)
}

func buildAttributeLookup() map[string]string {
	m := make(map[string]string, len(attributeRenames))
	for _, r := range attributeRenames {
		m[r.from] = r.to
	}
	return m
}

// instancingDecl is inserted before the position attribute.
var instancingDecl = []string{
	"#ifdef " + instancingFlag,
	"  in mat4 " + instanceMatrixID + ";",
	"#endif",
}

// mainPrologue follows "void main() {". It copies the object-to-world matrix
// into a writable local and, when instancing is enabled at runtime, applies
// the per-instance transform to it column by column.
var mainPrologue = []string{
	"vec4 " + localToWorld + "[4] = " + objectToWorld + ";",
	"#ifdef " + instancingFlag,
	"mat4 _" + localToWorld + ";",
	"_" + localToWorld + "[0] = " + objectToWorld + "[0];",
	"_" + localToWorld + "[1] = " + objectToWorld + "[1];",
	"_" + localToWorld + "[2] = " + objectToWorld + "[2];",
	"_" + localToWorld + "[3] = " + objectToWorld + "[3];",
	"_" + localToWorld + " = " + instanceMatrixID + " * _" + localToWorld + ";",
	localToWorld + "[0] = _" + localToWorld + "[0];",
	localToWorld + "[1] = _" + localToWorld + "[1];",
	localToWorld + "[2] = _" + localToWorld + "[2];",
	localToWorld + "[3] = _" + localToWorld + "[3];",
	"#endif",
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isLineComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), lineComment)
}

func isCommentedDirective(line string) bool {
	for _, d := range commentedDirectives {
		if strings.HasPrefix(line, d) {
			return true
		}
	}
	return false
}

func referencesUnsupportedExtension(line string) bool {
	for _, ext := range unsupportedExtensions {
		if strings.Contains(line, ext) {
			return true
		}
	}
	return false
}

func isInoutParameter(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), inoutPrefix)
}

func isBlockStart(line string) bool {
	return strings.Contains(line, uniformKeyword) && blockStart.MatchString(line)
}

func isBlockEnd(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "}")
}
