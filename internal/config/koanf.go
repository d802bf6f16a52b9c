// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order. The
// first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/auditwire/config.yaml",
	"/etc/auditwire/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envSections maps environment variable prefixes to koanf path prefixes:
// SERVER_PORT -> server.port, SOURCE_POLL_INTERVAL -> source.poll_interval,
// LOG_LEVEL -> logging.level.
var envSections = map[string]string{
	"SERVER_":   "server.",
	"SOURCE_":   "source.",
	"BRIDGE_":   "bridge.",
	"SECURITY_": "security.",
	"LOG_":      "logging.",
}

// Load loads configuration with layered sources: defaults, then an optional
// YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps environment variable names to koanf paths. Variables
// outside the known sections are ignored so unrelated environment noise
// never leaks into the configuration.
func envTransform(name string) string {
	for prefix, section := range envSections {
		if strings.HasPrefix(name, prefix) {
			return section + strings.ToLower(strings.TrimPrefix(name, prefix))
		}
	}
	return ""
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings; YAML values are already
// slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		s, ok := val.(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
