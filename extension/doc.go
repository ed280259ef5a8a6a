// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package extension reads and writes the shader list of the glTF
// KHR_techniques_webgl extension and transcodes every shader in it.
//
// A payload is either a complete glTF document, with the shaders under
// extensions.KHR_techniques_webgl, or the bare extension object. Fields the
// package does not model are kept and written back unchanged.
package extension
