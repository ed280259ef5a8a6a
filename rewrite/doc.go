// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package rewrite ports cross-compiled GLSL to the WebGL2 dialect (GLSL ES 3.00).
//
// The input is shader text produced by an HLSL-to-GLSL cross-compiler: it
// declares numbered uniform blocks, layout qualifiers, vendor attribute names
// such as in_POSITION0 and versions WebGL2 cannot compile. The [Engine]
// normalizes that text in a single left-to-right pass over its lines. It does
// not parse GLSL; every rule is a textual match against the known output shape
// of the cross-compiler.
//
// # Rules
//
// Each line goes through the same rules, in order:
//
//  1. #version directives naming an unsupported version are downgraded.
//  2. #define, #if, #endif and #else lines are commented out, except for the
//     configured preserved directives.
//  3. The legacy "precision mediump float;" statement is commented out.
//  4. Uniform blocks are unwrapped into plain uniforms.
//  5. layout(...) qualifiers are removed.
//  6. Single-digit macro invocations such as UNITY_LOCATION(0) are removed.
//  7. Unsupported extensions and inout parameters are commented out.
//  8. Vendor vertex attributes are renamed to three.js names.
//  9. Vertex shaders get an instanceMatrix attribute and a main() prologue
//     that folds it into the object-to-world matrix.
//
// Commented lines stay in the output so that line numbers in compiler
// diagnostics keep pointing at the same source line. The only lines that are
// dropped are leading blank lines, the closing brace of an unwrapped uniform
// block and the opening brace that follows void main().
//
// # Basic Usage
//
//	out := rewrite.Rewrite(src, shader.StageVertex)
//
// An [Engine] is immutable and may be shared between goroutines.
package rewrite
