// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application name.
	AppName = "webglsl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "webglsl"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix prefixes environment overrides: rewrite.instancing is
	// WEBGLSL_REWRITE_INSTANCING.
	EnvPrefix = "WEBGLSL"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// WorkDir is searched before the config directory (default: ".").
	WorkDir string
}

// ConfigDir returns the webglsl directory under the user configuration
// directory ($XDG_CONFIG_HOME on Linux).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the configuration. It returns the path of the file used, or ""
// when only defaults and environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return nil, "", fmt.Errorf("config file not found: %w", err)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		v.SetConfigType(ConfigFileExt)
	} else {
		workDir := opts.WorkDir
		if workDir == "" {
			workDir = "."
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(workDir)

		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			cfgDir = dir
		}
		v.AddConfigPath(cfgDir)
	}

	resolvedPath := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		resolvedPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("rewrite.target_version", defaults.Rewrite.TargetVersion)
	v.SetDefault("rewrite.unsupported_versions", defaults.Rewrite.UnsupportedVersions)
	v.SetDefault("rewrite.preserved_directives", defaults.Rewrite.PreservedDirectives)
	v.SetDefault("rewrite.instancing", defaults.Rewrite.Instancing)
	v.SetDefault("rewrite.reference", defaults.Rewrite.Reference)
	v.SetDefault("extension.workers", defaults.Extension.Workers)
	v.SetDefault("extension.on_error", defaults.Extension.OnError)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.patterns", defaults.Watch.Patterns)
}

// Render returns cfg as YAML in the config file format.
func Render(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return out, nil
}
