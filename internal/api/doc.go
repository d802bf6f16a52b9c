// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package api provides the HTTP boundary: filter configuration
// endpoints, the live-stream websocket upgrade, health, Prometheus
// metrics, and the static UI, routed with chi.
package api
