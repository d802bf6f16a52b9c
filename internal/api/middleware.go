// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// MiddlewareConfig holds settings for the production middleware stack.
type MiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         int

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultMiddlewareConfig returns defaults suitable for a local
// deployment.
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// Middleware builds chi-compatible middleware from the ecosystem
// implementations (go-chi/cors, go-chi/httprate).
type Middleware struct {
	config *MiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(config *MiddlewareConfig) *Middleware {
	if config == nil {
		config = DefaultMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: config.CORSAllowedMethods,
		AllowedHeaders: config.CORSAllowedHeaders,
		MaxAge:         config.CORSMaxAge,
	})

	return &Middleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the CORS middleware. Applied globally so OPTIONS
// preflight requests are handled on every route.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter for the API routes.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}

// RateLimitHealth returns a permissive limiter for health endpoints so
// monitoring can poll frequently.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.LimitByIP(1000, time.Minute)
}
