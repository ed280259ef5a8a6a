// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes shader resolution errors.
type ErrorKind uint8

const (
	// ErrMissingInput indicates an absent collection or shader entry.
	ErrMissingInput ErrorKind = iota

	// ErrMissingShaderSource indicates a shader with neither inline code nor a
	// decodable reference.
	ErrMissingShaderSource
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMissingInput:
		return "MissingInput"
	case ErrMissingShaderSource:
		return "MissingShaderSource"
	default:
		return "Unknown"
	}
}

// Error is a fatal error for one shader or one call.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Shader is the name of the offending shader, if known.
	Shader string

	// Message provides details about the error.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Shader != "" {
		return fmt.Sprintf("shader %s (%q): %s", e.Kind, e.Shader, msg)
	}
	return fmt.Sprintf("shader %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an error for the named shader.
func NewError(kind ErrorKind, shaderName, message string) *Error {
	return &Error{
		Kind:    kind,
		Shader:  shaderName,
		Message: message,
	}
}

// MissingShaderSourceError reports that no source could be obtained for the
// named shader. cause may be nil.
func MissingShaderSourceError(shaderName string, cause error) *Error {
	return &Error{
		Kind:    ErrMissingShaderSource,
		Shader:  shaderName,
		Message: "no shader code provided",
		Err:     cause,
	}
}

// MissingInputError reports an absent collection or entry.
func MissingInputError(what string) *Error {
	return &Error{
		Kind:    ErrMissingInput,
		Message: what + " is missing",
	}
}

// IsMissingInput reports whether err is, or wraps, an ErrMissingInput error.
func IsMissingInput(err error) bool {
	return hasKind(err, ErrMissingInput)
}

// IsMissingShaderSource reports whether err is, or wraps, an
// ErrMissingShaderSource error.
func IsMissingShaderSource(err error) bool {
	return hasKind(err, ErrMissingShaderSource)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
