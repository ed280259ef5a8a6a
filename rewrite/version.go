// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1

	// OpenGL ES / WebGL versions
	VersionES100 = Version{Major: 1, Minor: 0, ES: true}  // ES 1.0 / WebGL 1.0
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1 (compute shaders)
	VersionES320 = Version{Major: 3, Minor: 20, ES: true} // ES 3.2
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "310", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return v == Version{}
}

// ParseVersion parses a version directive value such as "300 es", "330",
// or "410 core". A missing profile means desktop GLSL.
func ParseVersion(s string) (Version, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Version{}, fmt.Errorf("rewrite: invalid GLSL version %q", s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 100 || n > 999 {
		return Version{}, fmt.Errorf("rewrite: invalid GLSL version number %q", fields[0])
	}

	v := Version{Major: uint8(n / 100), Minor: uint8(n % 100)}
	if len(fields) == 2 {
		switch fields[1] {
		case "es":
			v.ES = true
		case "core", "compatibility":
		default:
			return Version{}, fmt.Errorf("rewrite: unknown GLSL profile %q", fields[1])
		}
	}
	return v, nil
}
