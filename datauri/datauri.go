// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package datauri stores shader text in RFC 2397 data URIs, the form glTF
// uses for embedded shader sources.
package datauri

import (
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"

	"github.com/gogpu/webglsl/shader"
)

// MediaType is the media type written by Encode.
const MediaType = "text/plain"

const scheme = "data:"

// Codec encodes shader text as base64 data URIs.
// It is stateless and safe for concurrent use.
type Codec struct{}

var _ shader.Codec = Codec{}

// Encode returns text as a "data:text/plain;base64,..." URI.
func (Codec) Encode(text string) (string, error) {
	return dataurl.New([]byte(text), MediaType).String(), nil
}

// Decode returns the payload of a data URI. Both base64 and percent-encoded
// payloads are accepted.
func (Codec) Decode(reference string) (string, error) {
	if !strings.HasPrefix(reference, scheme) {
		return "", fmt.Errorf("datauri: not a data URI: %q", abbreviate(reference))
	}
	du, err := dataurl.DecodeString(reference)
	if err != nil {
		return "", fmt.Errorf("datauri: decode %q: %w", abbreviate(reference), err)
	}
	return string(du.Data), nil
}

func abbreviate(s string) string {
	const limit = 48
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
