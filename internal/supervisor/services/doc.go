// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package services adapts long-running components to the suture.Service
// contract so the supervisor tree can own their lifecycles.
package services
