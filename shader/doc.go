// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shader defines the shader records exchanged with the exporter and
// the resolver that turns them into source text.
//
// A [Program] carries its GLSL either inline ([Program.Code]) or through an
// opaque reference ([Program.Reference]) that a [Codec] can dereference.
// The JSON shape matches the shader objects of the glTF
// KHR_techniques_webgl extension:
//
//	{"name": "Unlit-vert", "type": 35633, "uri": "data:text/plain;base64,..."}
//
// # Errors
//
// Resolution failures are reported as [*Error] values. Use
// [IsMissingInput] and [IsMissingShaderSource] to classify them; both see
// through wrapping.
package shader
