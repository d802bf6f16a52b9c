// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package bridge

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func testEvent(recordType uint16, sequence uint32, message string) model.AuditEvent {
	event := model.NewAuditEvent(recordType, sequence)
	event.Fields["message"] = message
	return event
}

func receiveEvent(t *testing.T, events <-chan model.AuditEvent) model.AuditEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return model.AuditEvent{}
	}
}

func TestBridgePublishSubscribe(t *testing.T) {
	b := New(DefaultConfig())
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	if err := b.Publish(testEvent(1300, 7, "hello")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	got := receiveEvent(t, events)
	if got.RecordType != 1300 || got.Sequence != 7 {
		t.Errorf("event = type %d seq %d, want type 1300 seq 7", got.RecordType, got.Sequence)
	}
	if got.Fields["message"] != "hello" {
		t.Errorf("message = %q, want %q", got.Fields["message"], "hello")
	}
}

func TestBridgeFanOutToMultipleSubscribers(t *testing.T) {
	b := New(DefaultConfig())
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	second, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	if err := b.Publish(testEvent(1101, 42, "shared")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	for _, events := range []<-chan model.AuditEvent{first, second} {
		got := receiveEvent(t, events)
		if got.Sequence != 42 {
			t.Errorf("Sequence = %d, want 42", got.Sequence)
		}
	}
}

func TestBridgeNoBacklogReplay(t *testing.T) {
	b := New(DefaultConfig())
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := b.Publish(testEvent(1, 1, "before attach")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	events, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	if err := b.Publish(testEvent(1, 2, "after attach")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	got := receiveEvent(t, events)
	if got.Sequence != 2 {
		t.Errorf("late subscriber saw sequence %d, want only events after attach", got.Sequence)
	}
}

func TestBridgeRelayDrainsHandoffChannel(t *testing.T) {
	b := New(DefaultConfig())
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	handoff := make(chan model.AuditEvent, 8)
	relayDone := make(chan struct{})
	go func() {
		b.Relay(handoff)
		close(relayDone)
	}()

	for i := uint32(1); i <= 3; i++ {
		handoff <- testEvent(1300, i, "relayed")
	}
	close(handoff)

	for want := uint32(1); want <= 3; want++ {
		got := receiveEvent(t, events)
		if got.Sequence != want {
			t.Errorf("Sequence = %d, want %d", got.Sequence, want)
		}
	}

	select {
	case <-relayDone:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not exit after hand-off channel closed")
	}
}

func TestBridgeSubscriberDetachesOnContextCancel(t *testing.T) {
	b := New(DefaultConfig())
	defer func() { _ = b.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel did not close after cancel")
		}
	}
}
