// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"
	"strings"
)

// Stage is the pipeline stage of a shader program.
// Values are the OpenGL shader type enums used by glTF.
type Stage uint32

const (
	// StageFragment is GL_FRAGMENT_SHADER.
	StageFragment Stage = 35632

	// StageVertex is GL_VERTEX_SHADER.
	StageVertex Stage = 35633
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint32(s))
	}
}

// ParseStage parses a stage name. It accepts "vertex"/"vert"/"vs" and
// "fragment"/"frag"/"fs", case-insensitively.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vertex", "vert", "vs":
		return StageVertex, nil
	case "fragment", "frag", "fs":
		return StageFragment, nil
	default:
		return 0, fmt.Errorf("shader: unknown stage %q", name)
	}
}

// Program is a single shader of an exported material technique.
type Program struct {
	// Name identifies the shader in error messages. Not required to be unique.
	Name string `json:"name,omitempty"`

	// Stage selects vertex or fragment processing.
	Stage Stage `json:"type"`

	// Code is the inline GLSL source, if any.
	Code string `json:"code,omitempty"`

	// Reference is an encoded form of Code (a data URI by default).
	// After transcoding it always reflects the new Code.
	Reference string `json:"uri,omitempty"`
}

// Clone returns a shallow copy of p.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Collection is the ordered list of shaders of one exported technique.
// Entries are processed independently and duplicate names are allowed.
type Collection struct {
	Shaders []*Program `json:"shaders"`
}

// Len returns the number of shaders, treating a nil collection as empty.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Shaders)
}
