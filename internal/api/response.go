// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/auditwire/auditwire/internal/logging"
)

// APIResponse is the wrapper every JSON endpoint returns.
//
// Status is "success" or "error". Data carries the payload; Error is
// populated only for error responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError holds structured error details.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// sanitizeLogValue replaces control characters so attacker-supplied
// strings cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Configuration and health payloads
// change out from under caches, so responses are never cacheable.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("api error")
	}

	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Data:     nil,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}
