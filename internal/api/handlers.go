// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/auditwire/auditwire/internal/config"
	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
	ws "github.com/auditwire/auditwire/internal/websocket"
)

// FilterManager is the slice of the ingest manager the handlers need.
type FilterManager interface {
	Apply(filter model.FilterConfig) error
	Filter() model.FilterConfig
	Active() bool
}

// Handler implements the HTTP endpoints.
type Handler struct {
	config   *config.Config
	hub      *ws.Hub
	manager  FilterManager
	validate *validator.Validate
}

// NewHandler creates the endpoint handler set.
func NewHandler(cfg *config.Config, hub *ws.Hub, manager FilterManager) *Handler {
	return &Handler{
		config:   cfg,
		hub:      hub,
		manager:  manager,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// healthData is the GET /api/v1/health payload.
type healthData struct {
	Status       string `json:"status"`
	SourceActive bool   `json:"source_active"`
	Clients      int    `json:"clients"`
}

// Health reports process liveness and whether an audit source is
// currently collecting.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	data := healthData{
		Status:       "ok",
		SourceActive: h.manager.Active(),
		Clients:      h.hub.ClientCount(),
	}
	if !data.SourceActive {
		data.Status = "degraded"
	}
	respondSuccess(w, http.StatusOK, data)
}

// GetConfig returns the currently applied filter configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.manager.Filter())
}

// UpdateConfig applies a new filter configuration. The collection
// pipeline is rebuilt; connected live-stream clients stay attached and
// are notified once the new configuration is live.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var filter model.FilterConfig
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&filter); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not a valid filter configuration", err)
		return
	}

	if err := h.validateFilter(filter); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.manager.Apply(filter); err != nil {
		respondError(w, http.StatusInternalServerError, "APPLY_FAILED", "failed to apply filter configuration", err)
		return
	}

	h.hub.BroadcastJSON(ws.MessageTypeConfigApplied, filter)
	respondSuccess(w, http.StatusOK, filter)
}

// validateFilter checks that numeric filter fields hold digits only.
// Everything else is free text matched against event fields.
func (h *Handler) validateFilter(filter model.FilterConfig) error {
	if err := h.validate.Var(filter.PID, "omitempty,number"); err != nil {
		return errInvalidField("pid")
	}
	if err := h.validate.Var(filter.ThreadID, "omitempty,number"); err != nil {
		return errInvalidField("thread_id")
	}
	return nil
}

type fieldError string

func errInvalidField(name string) error { return fieldError(name) }

func (e fieldError) Error() string { return "field " + string(e) + " must be numeric" }

// getUpgrader builds the websocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Non-browser clients send no Origin; those
// are accepted only when the wildcard origin is configured.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	if h.config == nil {
		return true
	}

	origin := r.Header.Get("Origin")
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" {
			return true
		}
		if origin != "" && allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers the client with the
// hub for the live event stream.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("websocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "live stream unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
