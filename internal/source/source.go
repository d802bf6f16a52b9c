// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package source abstracts the platform-specific audit/log ingestion
// mechanisms behind a single capability interface: produce raw records,
// and allow being told to stop.
//
// Four implementations exist:
//
//   - TailSource follows the Linux audit log file with a tail subprocess.
//   - LogStreamSource runs the macOS log streaming tool with a generated
//     predicate.
//   - WindowsEventSource subscribes to a Windows event log channel
//     (windows builds only).
//   - MockSource replays a fixed record sequence for tests and development.
//
// All variants capture records on a dedicated goroutine into an internal
// queue that Receive polls; the polling interval bounds wake-up latency.
package source

import (
	"errors"
	"time"
)

// ErrSourceStopped is returned by Receive once a source has been stopped
// and its queue fully drained. It is the stop acknowledgment collectors
// use to terminate cleanly instead of polling an empty queue forever.
var ErrSourceStopped = errors.New("audit source stopped")

// DefaultPollInterval is used when Options leaves PollInterval unset.
const DefaultPollInterval = 50 * time.Millisecond

// Source produces raw audit records.
//
// Receive blocks the calling goroutine until one record is available and
// returns it; it fails only with ErrSourceStopped. Stop is a best-effort,
// idempotent request to terminate the underlying process or subscription
// and release OS resources; it returns without waiting for completion.
type Source interface {
	Receive() ([]byte, error)
	Stop()
}

// Options parameterizes source construction. It mirrors the source section
// of the application configuration without importing it, so the package
// stays usable on its own.
type Options struct {
	// Backend selects the implementation: auto, tail, logstream,
	// wineventlog, or mock.
	Backend string

	// AuditLogPath is the file the tail backend follows.
	AuditLogPath string

	// LogCommand is the streaming tool the logstream backend spawns.
	LogCommand string

	// Channel is the event log channel the wineventlog backend subscribes to.
	Channel string

	// PollInterval is the sleep between empty-queue checks in Receive.
	PollInterval time.Duration
}

func (o Options) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return o.PollInterval
}
