// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package collector pulls raw records from one audit source, normalizes
// each into a canonical event, and forwards the result downstream. One
// collector is bound to exactly one source for its whole lifetime; the
// reconfiguration manager replaces the pair as a unit.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/metrics"
	"github.com/auditwire/auditwire/internal/model"
	"github.com/auditwire/auditwire/internal/source"
)

// Collector owns one audit source and one forwarding channel.
type Collector struct {
	source  source.Source
	out     chan<- model.AuditEvent
	backend string
	logger  zerolog.Logger
}

// New creates a collector bound to src, forwarding parsed events on out.
// The backend label only feeds logs and metrics.
func New(src source.Source, out chan<- model.AuditEvent, backend string) *Collector {
	return &Collector{
		source:  src,
		out:     out,
		backend: backend,
		logger: logging.With().
			Str("component", "collector").
			Str("backend", backend).
			Logger(),
	}
}

// Run executes the pull/parse/forward loop until the source acknowledges
// its stop or the context is canceled (forwarding side gone). Zero-length
// records are skipped and unparseable records are dropped with a metric;
// a malformed line never halts ingestion. The forwarding channel is closed
// on exit so the downstream relay drains and terminates.
func (c *Collector) Run(ctx context.Context) error {
	defer close(c.out)

	for {
		raw, err := c.source.Receive()
		if err != nil {
			if errors.Is(err, source.ErrSourceStopped) {
				c.logger.Debug().Msg("source stopped, collector exiting")
				return nil
			}
			return fmt.Errorf("receive audit record: %w", err)
		}
		if len(raw) == 0 {
			continue
		}
		metrics.RecordReceived(c.backend)

		event, format, err := ParseRecord(raw)
		if err != nil {
			metrics.ParseFailures.Inc()
			c.logger.Debug().Err(err).Msg("dropped unparseable record")
			continue
		}
		metrics.RecordParsed(format)

		select {
		case c.out <- event:
		case <-ctx.Done():
			c.logger.Info().Msg("forwarding sink closed, collector exiting")
			return nil
		}
	}
}
