// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gogpu/webglsl/casstore"
	"github.com/gogpu/webglsl/datauri"
	"github.com/gogpu/webglsl/extension"
	"github.com/gogpu/webglsl/rewrite"
	"github.com/gogpu/webglsl/shader"
)

// Reference formats accepted by rewrite.reference.
const (
	ReferenceDataURI = "datauri"
	ReferenceSHA256  = "sha256"
)

// Config is the complete webglslc configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite" yaml:"rewrite"`
	Extension ExtensionConfig `mapstructure:"extension" yaml:"extension"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	// Level is a charmbracelet/log level name: debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
}

// RewriteConfig mirrors rewrite.Options with versions spelled as in #version.
type RewriteConfig struct {
	TargetVersion       string   `mapstructure:"target_version" yaml:"target_version"`
	UnsupportedVersions []string `mapstructure:"unsupported_versions" yaml:"unsupported_versions"`
	PreservedDirectives []string `mapstructure:"preserved_directives" yaml:"preserved_directives"`
	Instancing          bool     `mapstructure:"instancing" yaml:"instancing"`
	// Reference selects how rewritten sources are referenced: "datauri"
	// embeds them, "sha256" stores them by digest.
	Reference string `mapstructure:"reference" yaml:"reference"`
}

// ExtensionConfig configures collection processing.
type ExtensionConfig struct {
	// Workers bounds concurrent shader rewrites; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// OnError is "fail" or "skip".
	OnError string `mapstructure:"on_error" yaml:"on_error"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	// Patterns are doublestar globs matched against paths relative to the
	// watched directory.
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	opts := rewrite.DefaultOptions()
	unsupported := make([]string, 0, len(opts.UnsupportedVersions))
	for _, v := range opts.UnsupportedVersions {
		unsupported = append(unsupported, v.String())
	}
	return &Config{
		Log: LogConfig{Level: "info"},
		Rewrite: RewriteConfig{
			TargetVersion:       opts.TargetVersion.String(),
			UnsupportedVersions: unsupported,
			PreservedDirectives: opts.PreservedDirectives,
			Instancing:          opts.Instancing,
			Reference:           ReferenceDataURI,
		},
		Extension: ExtensionConfig{
			Workers: 0,
			OnError: extension.PolicyFailFast.String(),
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
			Patterns: []string{"**/*.vert", "**/*.frag", "**/*.vs", "**/*.fs", "**/*.gltf", "**/*.json"},
		},
	}
}

// RewriteOptions converts the rewrite section.
func (c RewriteConfig) RewriteOptions() (rewrite.Options, error) {
	target, err := rewrite.ParseVersion(c.TargetVersion)
	if err != nil {
		return rewrite.Options{}, fmt.Errorf("rewrite.target_version: %w", err)
	}
	opts := rewrite.Options{
		TargetVersion:       target,
		PreservedDirectives: c.PreservedDirectives,
		Instancing:          c.Instancing,
	}
	for i, s := range c.UnsupportedVersions {
		v, err := rewrite.ParseVersion(s)
		if err != nil {
			return rewrite.Options{}, fmt.Errorf("rewrite.unsupported_versions[%d]: %w", i, err)
		}
		opts.UnsupportedVersions = append(opts.UnsupportedVersions, v)
	}
	return opts, nil
}

// Codec returns a new codec for Reference. A sha256 store still decodes data
// URI references found in its input.
func (c RewriteConfig) Codec() (shader.Codec, error) {
	switch c.Reference {
	case ReferenceDataURI:
		return datauri.Codec{}, nil
	case ReferenceSHA256:
		return casstore.NewWithFallback(datauri.Codec{}), nil
	}
	return nil, fmt.Errorf("rewrite.reference: unknown format %q (want %q or %q)",
		c.Reference, ReferenceDataURI, ReferenceSHA256)
}

// Policy parses OnError.
func (c ExtensionConfig) Policy() (extension.Policy, error) {
	p, err := extension.ParsePolicy(c.OnError)
	if err != nil {
		return 0, fmt.Errorf("extension.on_error: %w", err)
	}
	return p, nil
}

// LogLevel parses Level.
func (c LogConfig) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Validate reports every invalid setting in c.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Log.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Rewrite.RewriteOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Rewrite.Codec(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Extension.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.Extension.Workers < 0 {
		errs = append(errs, fmt.Errorf("extension.workers: must not be negative, got %d", c.Extension.Workers))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}
	if len(c.Watch.Patterns) == 0 {
		errs = append(errs, errors.New("watch.patterns: at least one pattern is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
