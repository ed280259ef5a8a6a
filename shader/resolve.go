// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import "strings"

// Codec converts between shader text and an opaque reference string.
// Decode(Encode(x)) is expected to return x.
type Codec interface {
	Decode(reference string) (string, error)
	Encode(text string) (string, error)
}

// Resolve returns the source text of p: Code when it holds anything besides
// whitespace, otherwise the decoded Reference. codec may be nil when no
// references need decoding.
func Resolve(p *Program, codec Codec) (string, error) {
	if p == nil {
		return "", MissingInputError("shader")
	}
	if strings.TrimSpace(p.Code) != "" {
		return p.Code, nil
	}
	if p.Reference == "" || codec == nil {
		return "", MissingShaderSourceError(p.Name, nil)
	}

	text, err := codec.Decode(p.Reference)
	if err != nil {
		return "", MissingShaderSourceError(p.Name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", MissingShaderSourceError(p.Name, nil)
	}
	return text, nil
}
