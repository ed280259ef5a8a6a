// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads webglslc settings from webglsl.yaml, WEBGLSL_*
// environment variables and built-in defaults, in increasing order of
// precedence for the environment.
package config
