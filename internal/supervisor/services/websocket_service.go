// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package services

import (
	"context"
)

// ContextHub matches *websocket.Hub's RunWithContext method without
// importing the websocket package.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService wraps the websocket hub as a supervised service.
// The hub's RunWithContext already follows the suture.Service pattern,
// so the wrapper only supplies a name for logging.
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService creates the hub service wrapper.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	return &WebSocketHubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

func (w *WebSocketHubService) String() string {
	return w.name
}
