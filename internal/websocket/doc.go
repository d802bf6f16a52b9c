// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package websocket pushes live audit events to browser clients. The hub
// owns client membership and fan-out; each client runs independent read
// and write pumps over a gorilla/websocket connection; the stream
// subscriber feeds the hub from the distribution bridge.
package websocket
