// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rewrite

import (
	"fmt"
	"strings"

	"github.com/gogpu/webglsl/shader"
)

// Stats summarizes what a rewrite changed.
type Stats struct {
	// Lines is the number of input lines read.
	Lines int

	// CommentedLines counts lines kept as "// ..." comments.
	CommentedLines int

	// DroppedLines counts input lines with no output: leading blank lines,
	// uniform block closing braces and the brace after void main().
	DroppedLines int

	// RemovedBlocks counts unwrapped uniform blocks.
	RemovedBlocks int

	// StrippedQualifiers counts lines that lost a layout(...) qualifier or a
	// macro invocation.
	StrippedQualifiers int

	// RenamedAttributes counts replaced vendor attribute identifiers.
	RenamedAttributes int

	// DowngradedVersion is set when a #version directive was rewritten.
	DowngradedVersion bool

	// InjectedInstancing is set when the instanceMatrix attribute was declared.
	InjectedInstancing bool
}

// Add returns the sum of s and o. Flags are combined with OR.
func (s Stats) Add(o Stats) Stats {
	s.Lines += o.Lines
	s.CommentedLines += o.CommentedLines
	s.DroppedLines += o.DroppedLines
	s.RemovedBlocks += o.RemovedBlocks
	s.StrippedQualifiers += o.StrippedQualifiers
	s.RenamedAttributes += o.RenamedAttributes
	s.DowngradedVersion = s.DowngradedVersion || o.DowngradedVersion
	s.InjectedInstancing = s.InjectedInstancing || o.InjectedInstancing
	return s
}

// state is carried from one line to the next. It lives for a single rewrite.
type state struct {
	inUniformBlock   bool
	inVertexMain     bool
	suppressNextLine bool
	emittedAnyText   bool
}

// Engine rewrites shader sources. The zero value is not usable; call [New].
type Engine struct {
	opts Options
}

// New creates an Engine. The options are copied.
func New(opts Options) *Engine {
	opts = opts.clone()
	if opts.TargetVersion.IsZero() {
		opts.TargetVersion = VersionES300
	}
	return &Engine{opts: opts}
}

// Options returns a copy of the engine's options.
func (e *Engine) Options() Options {
	return e.opts.clone()
}

var defaultEngine = New(DefaultOptions())

// Rewrite rewrites source with the default options.
func Rewrite(source string, stage shader.Stage) string {
	return defaultEngine.Rewrite(source, stage)
}

// Rewrite returns the WebGL2 form of source. Every emitted line ends in "\n".
// An empty or blank source yields an empty string.
func (e *Engine) Rewrite(source string, stage shader.Stage) string {
	out, _ := e.RewriteWithStats(source, stage)
	return out
}

// RewriteWithStats is like Rewrite and also reports what changed.
func (e *Engine) RewriteWithStats(source string, stage shader.Stage) (string, Stats) {
	r := rewriter{
		opts:   &e.opts,
		vertex: stage == shader.StageVertex && e.opts.Instancing,
	}
	r.out.Grow(len(source) + len(source)/8)

	for line := range strings.Lines(source) {
		r.stats.Lines++
		r.line(strings.TrimRight(line, "\r\n"))
	}
	return r.out.String(), r.stats
}

// rewriter holds the output and state of one Rewrite call.
type rewriter struct {
	opts   *Options
	vertex bool
	st     state
	stats  Stats
	out    strings.Builder
}

func (r *rewriter) emit(line string) {
	r.out.WriteString(line)
	r.out.WriteByte('\n')
	r.st.emittedAnyText = true
}

// line runs one source line through the rule pipeline.
func (r *rewriter) line(line string) {
	if r.st.suppressNextLine {
		r.st.suppressNextLine = false
		r.stats.DroppedLines++
		return
	}

	line = r.downgradeVersion(line)
	if !r.st.emittedAnyText && isBlank(line) {
		r.stats.DroppedLines++
		return
	}

	// Lines that are already comments are never reclassified. This keeps the
	// pass stable on its own output.
	wasComment := isLineComment(line)
	commented := false
	commentOut := func() {
		if !commented {
			line = "// " + line
			commented = true
			r.stats.CommentedLines++
		}
	}

	if !wasComment {
		if isCommentedDirective(line) && !r.opts.isPreserved(line) {
			commentOut()
		}
		if strings.Contains(line, legacyPrecision) {
			commentOut()
		}
	}

	switch {
	case !wasComment && !commented && isBlockStart(line):
		r.st.inUniformBlock = true
		line = removedBlockComment + line
		// The blank line stands in for the dropped closing brace. None is
		// written before any other output, where a rerun would drop it.
		if r.st.emittedAnyText {
			line = "\n" + line
		}
		commented = true
		r.stats.RemovedBlocks++
		r.stats.CommentedLines++
	case r.st.inUniformBlock:
		if isBlockEnd(line) {
			r.st.inUniformBlock = false
			r.stats.DroppedLines++
			return
		}
		if !wasComment && !commented && !isBlank(line) {
			line = strings.ReplaceAll(line, uniformScopeToken, "")
			line = uniformKeyword + " " + strings.TrimLeft(line, " \t")
		}
	}

	line = r.strip(line)

	if !wasComment && (referencesUnsupportedExtension(line) || isInoutParameter(line)) {
		commentOut()
	}

	line = attributePattern.ReplaceAllStringFunc(line, func(name string) string {
		r.stats.RenamedAttributes++
		return attributeLookup[name]
	})

	if r.vertex {
		if strings.Contains(line, positionDecl) {
			for _, l := range instancingDecl {
				r.emit(l)
			}
			r.emit(line)
			r.stats.InjectedInstancing = true
			return
		}

		if strings.TrimSpace(line) == mainDecl {
			r.st.inVertexMain = true
			r.st.suppressNextLine = true
			r.emit(line + " {")
			for _, l := range mainPrologue {
				r.emit(l)
			}
			return
		}

		if r.st.inVertexMain {
			line = strings.ReplaceAll(line, objectToWorld, localToWorld)
		}
	}

	r.emit(line)
}

// downgradeVersion rewrites an unsupported #version directive to the target
// version and appends a note on the following line.
func (r *rewriter) downgradeVersion(line string) string {
	m := versionDirective.FindStringSubmatchIndex(line)
	if m == nil {
		return line
	}

	number := line[m[4]:m[5]]
	profile := ""
	if m[6] >= 0 {
		profile = line[m[6]:m[7]]
	}
	v, err := ParseVersion(number + profile)
	if err != nil || !r.opts.isUnsupported(v) {
		return line
	}

	r.stats.DowngradedVersion = true
	rewritten := line[:m[4]] + r.opts.TargetVersion.String() + line[m[1]:]
	return rewritten + fmt.Sprintf(downgradeComment, v.VersionNumber())
}

// strip removes layout qualifiers and single-digit macro invocations.
func (r *rewriter) strip(line string) string {
	stripped := false
	if layoutQualifier.MatchString(line) {
		line = layoutQualifier.ReplaceAllString(line, "")
		stripped = true
	}
	if macroInvocation.MatchString(line) {
		line = macroInvocation.ReplaceAllString(line, "")
		stripped = true
	}
	if stripped {
		r.stats.StrippedQualifiers++
	}
	return line
}
