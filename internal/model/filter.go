// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package model

// FilterConfig holds the subscription criteria the active audit source is
// constructed from. Every field is optional; an empty string means "no
// constraint on this dimension". The struct is comparable with == so
// callers can detect whether a replacement actually changes anything.
//
// Exactly one FilterConfig is active process-wide. It is replaced as a
// whole by the reconfiguration manager and read as a consistent snapshot;
// partial updates are not possible.
type FilterConfig struct {
	Process   string `json:"process,omitempty"`
	Message   string `json:"message,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
	PID       string `json:"pid,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	Category  string `json:"category,omitempty"`
	Library   string `json:"library,omitempty"`
}

// IsZero reports whether no dimension is constrained.
func (f FilterConfig) IsZero() bool {
	return f == FilterConfig{}
}
