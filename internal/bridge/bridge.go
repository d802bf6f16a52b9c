// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package bridge decouples the collector's single-producer output from an
// arbitrary, dynamically changing number of live consumers. One relay per
// active collector drains the hand-off channel and republishes each event
// to an in-process pub/sub fan-out; subscribers attach and detach at will
// and receive every event published after they attach, with no backlog
// replay.
package bridge

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/metrics"
	"github.com/auditwire/auditwire/internal/model"
)

// Config holds bridge settings.
type Config struct {
	// Topic is the pub/sub topic events are published on.
	Topic string

	// SubscriberBuffer is each subscriber's output channel capacity.
	SubscriberBuffer int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Topic:            "audit.events",
		SubscriberBuffer: 256,
	}
}

// Bridge is the fan-out broadcast sink between the ingestion pipeline and
// live subscribers.
type Bridge struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger zerolog.Logger
}

// New creates a bridge backed by a non-persistent in-process pub/sub, so
// new subscribers see only events published after they attach.
func New(cfg Config) *Bridge {
	if cfg.Topic == "" {
		cfg.Topic = DefaultConfig().Topic
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultConfig().SubscriberBuffer
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: int64(cfg.SubscriberBuffer),
		},
		logging.NewWatermillAdapter(),
	)

	return &Bridge{
		pubSub: pubSub,
		topic:  cfg.Topic,
		logger: logging.With().Str("component", "bridge").Logger(),
	}
}

// Publish serializes one event and hands it to every current subscriber.
func (b *Bridge) Publish(event model.AuditEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	metrics.EventsPublished.Inc()
	return nil
}

// Subscribe attaches a new independent consumer. The returned channel
// delivers every event published after the call and closes when ctx is
// canceled or the bridge shuts down. Events that fail to decode are
// skipped.
func (b *Bridge) Subscribe(ctx context.Context) (<-chan model.AuditEvent, error) {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}

	out := make(chan model.AuditEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			event, err := model.UnmarshalAuditEvent(msg.Payload)
			msg.Ack()
			if err != nil {
				b.logger.Warn().Err(err).Msg("skipping undecodable event")
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Relay drains one collector hand-off channel into the fan-out sink,
// returning when the channel closes. The reconfiguration manager starts
// one relay per collector; the bridge and its subscribers outlive every
// relay.
func (b *Bridge) Relay(in <-chan model.AuditEvent) {
	for event := range in {
		if err := b.Publish(event); err != nil {
			b.logger.Warn().Err(err).Msg("failed to publish event")
		}
	}
	b.logger.Debug().Msg("relay drained, hand-off channel closed")
}

// Close shuts the pub/sub down, closing all subscriber channels.
func (b *Bridge) Close() error {
	return b.pubSub.Close()
}
