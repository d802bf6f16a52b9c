// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package model defines the canonical audit event and the filter
// configuration shared by every other component. It has no dependencies on
// the rest of the application so that sources, the collector, the bridge,
// and the API surface can all import it freely.
package model
