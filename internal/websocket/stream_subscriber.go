// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package websocket

import (
	"context"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
)

// EventSource is the subscription half of the distribution bridge. The
// hub subscriber attaches once and forwards everything it receives.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan model.AuditEvent, error)
}

// StreamSubscriber forwards bridge events to the websocket hub. It is
// one subscriber among any number; detaching it does not affect other
// bridge consumers.
type StreamSubscriber struct {
	hub    *Hub
	source EventSource
}

// NewStreamSubscriber creates a bridge-to-hub forwarder.
func NewStreamSubscriber(hub *Hub, source EventSource) *StreamSubscriber {
	return &StreamSubscriber{
		hub:    hub,
		source: source,
	}
}

// Serve subscribes and forwards until ctx is canceled or the bridge
// closes its subscription. Implements the suture service contract.
func (s *StreamSubscriber) Serve(ctx context.Context) error {
	events, err := s.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	logging.Info().Str("component", "stream-subscriber").Msg("forwarding bridge events to websocket hub")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				logging.Info().Str("component", "stream-subscriber").Msg("bridge subscription closed")
				return ctx.Err()
			}
			s.hub.BroadcastAuditEvent(event)
		}
	}
}

func (s *StreamSubscriber) String() string {
	return "stream-subscriber"
}
