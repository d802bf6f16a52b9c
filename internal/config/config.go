// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package config

import (
	"time"
)

// Config holds all application configuration, loaded via Koanf v2 with
// layered sources (highest priority wins):
//
//  1. Environment variables (SERVER_PORT, SOURCE_BACKEND, LOG_LEVEL, ...)
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent reads. The
// runtime-tunable filter criteria live in model.FilterConfig, not here;
// this struct only carries the settings fixed at process start.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Source   SourceConfig   `koanf:"source"`
	Bridge   BridgeConfig   `koanf:"bridge"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0.
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port. Default: 9357.
	Port int `koanf:"port" validate:"gte=1,lte=65535"`

	// Timeout bounds request read/write durations.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// StaticDir is the directory the web UI is served from. Empty disables
	// static serving.
	StaticDir string `koanf:"static_dir"`
}

// SourceConfig holds audit source settings. The filter criteria themselves
// are runtime state; this selects and parameterizes the platform mechanism.
type SourceConfig struct {
	// Backend selects the source implementation: auto (by GOOS), tail,
	// logstream, wineventlog, or mock.
	Backend string `koanf:"backend" validate:"oneof=auto tail logstream wineventlog mock"`

	// AuditLogPath is the log file the tail backend follows.
	AuditLogPath string `koanf:"audit_log_path"`

	// LogCommand is the native streaming tool the logstream backend spawns.
	LogCommand string `koanf:"log_command"`

	// Channel is the event log channel the wineventlog backend subscribes to.
	Channel string `koanf:"channel"`

	// PollInterval is the sleep between empty-queue checks in Receive.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`

	// GraceInterval is the pause between stopping a source and constructing
	// its replacement, letting the OS release the underlying resources.
	GraceInterval time.Duration `koanf:"grace_interval" validate:"gte=0"`
}

// BridgeConfig holds distribution bridge settings.
type BridgeConfig struct {
	// Topic is the pub/sub topic live events are published on.
	Topic string `koanf:"topic" validate:"required"`

	// SubscriberBuffer is the per-subscriber output channel capacity.
	SubscriberBuffer int `koanf:"subscriber_buffer" validate:"gte=0"`

	// HandoffBuffer is the collector-to-relay channel capacity.
	HandoffBuffer int `koanf:"handoff_buffer" validate:"gte=1"`
}

// SecurityConfig holds transport hardening settings.
type SecurityConfig struct {
	// CORSOrigins lists allowed browser origins. Default: ["*"].
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the request budget per RateLimitWindow per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"gte=1"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	// RateLimitDisabled turns off request rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. These are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9357,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			StaticDir:       "ui/dist",
		},
		Source: SourceConfig{
			Backend:       "auto",
			AuditLogPath:  "/var/log/audit/audit.log",
			LogCommand:    "/usr/bin/log",
			Channel:       "Security",
			PollInterval:  50 * time.Millisecond,
			GraceInterval: 150 * time.Millisecond,
		},
		Bridge: BridgeConfig{
			Topic:            "audit.events",
			SubscriberBuffer: 256,
			HandoffBuffer:    1024,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
