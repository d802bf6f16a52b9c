// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auditwire/auditwire/internal/config"
)

// Router assembles the HTTP surface: REST endpoints, the live-stream
// websocket, Prometheus metrics, and the static UI.
type Router struct {
	handler    *Handler
	middleware *Middleware
	staticDir  string
}

// NewRouter creates a router from the application config.
func NewRouter(cfg *config.Config, handler *Handler) *Router {
	mwConfig := DefaultMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
		mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
		mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
		mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	}

	staticDir := "ui/dist"
	if cfg != nil && cfg.Server.StaticDir != "" {
		staticDir = cfg.Server.StaticDir
	}

	return &Router{
		handler:    handler,
		middleware: NewMiddleware(mwConfig),
		staticDir:  staticDir,
	}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Get("/config", router.handler.GetConfig)
		r.Post("/config", router.handler.UpdateConfig)
		r.Get("/events/ws", router.handler.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	// SPA fallback, must be last
	r.Get("/*", router.serveStaticOrIndex)

	return r
}

// serveStaticOrIndex serves files from the static directory, falling
// back to index.html so client-side routes resolve.
func (router *Router) serveStaticOrIndex(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".css") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}

	if path != "/" && router.fileExists(path) {
		http.FileServer(http.Dir(router.staticDir)).ServeHTTP(w, r)
		return
	}

	index := filepath.Join(router.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	http.ServeFile(w, r, index)
}

// fileExists reports whether the request path maps to a regular file
// inside the static directory.
func (router *Router) fileExists(requestPath string) bool {
	cleaned := filepath.Clean(strings.TrimPrefix(requestPath, "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return false
	}
	info, err := os.Stat(filepath.Join(router.staticDir, cleaned))
	return err == nil && info.Mode().IsRegular()
}
