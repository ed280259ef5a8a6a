// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rewrite

import (
	"slices"
	"strings"
)

// DirectiveSingleTarget maps the cross-compiler's fragment output to the
// legacy single-buffer output. The runtime relies on it, so it survives the
// preprocessor pass by default.
const DirectiveSingleTarget = "#define SV_TARGET0 gl_FragData[0]"

// Options configures an [Engine].
type Options struct {
	// TargetVersion replaces unsupported #version values.
	// Defaults to VersionES300 if zero.
	TargetVersion Version

	// UnsupportedVersions lists the versions that are downgraded to
	// TargetVersion. Other #version lines are left alone.
	UnsupportedVersions []Version

	// PreservedDirectives lists line prefixes exempt from preprocessor
	// comment-out.
	PreservedDirectives []string

	// Instancing enables the vertex instancing injection.
	Instancing bool
}

// DefaultOptions returns the options used by the exporter.
func DefaultOptions() Options {
	return Options{
		TargetVersion:       VersionES300,
		UnsupportedVersions: []Version{VersionES310, VersionES320},
		PreservedDirectives: []string{DirectiveSingleTarget},
		Instancing:          true,
	}
}

func (o Options) clone() Options {
	o.UnsupportedVersions = slices.Clone(o.UnsupportedVersions)
	o.PreservedDirectives = slices.Clone(o.PreservedDirectives)
	return o
}

func (o *Options) isUnsupported(v Version) bool {
	return slices.Contains(o.UnsupportedVersions, v)
}

func (o *Options) isPreserved(line string) bool {
	for _, prefix := range o.PreservedDirectives {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
