// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance; validator instances cache
// struct metadata and are safe for concurrent use.
var validate = validator.New()

// Validate checks field-level constraints via struct tags, then the
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	return c.validateSecurity()
}

// validateSource checks backend-specific requirements. The auto backend is
// resolved at source construction time, so it needs every candidate setting
// a concrete backend would.
func (c *Config) validateSource() error {
	switch c.Source.Backend {
	case "tail", "auto":
		if c.Source.AuditLogPath == "" {
			return fmt.Errorf("SOURCE_AUDIT_LOG_PATH is required for the %s backend", c.Source.Backend)
		}
	}

	if c.Source.Backend == "logstream" && c.Source.LogCommand == "" {
		return fmt.Errorf("SOURCE_LOG_COMMAND is required for the logstream backend")
	}

	if c.Source.Backend == "wineventlog" && c.Source.Channel == "" {
		return fmt.Errorf("SOURCE_CHANNEL is required for the wineventlog backend")
	}

	return nil
}

// validateSecurity checks CORS origins are present when rate limiting and
// CORS are in play.
func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("SECURITY_CORS_ORIGINS must list at least one origin (use * to allow all)")
	}
	return nil
}
