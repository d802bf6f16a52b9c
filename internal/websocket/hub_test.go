// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package websocket

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

// setupHub starts a hub under a test-scoped context.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(10 * time.Millisecond)
	return hub
}

// createTestClient builds a client without a network connection.
func createTestClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, conn: nil, send: make(chan Message, 256)}
}

func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.clients == nil || hub.broadcast == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("hub channels or client map not initialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	registerClient(hub, client)
	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0", hub.ClientCount())
	}

	// send channel closed on unregister
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel after unregister")
		}
	default:
		t.Error("send channel not closed after unregister")
	}
}

func TestHubBroadcastAuditEvent(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	event := model.NewAuditEvent(1300, 11)
	event.Fields["comm"] = `"cat"`
	hub.BroadcastAuditEvent(event)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeAuditEvent {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeAuditEvent)
		}
		got, ok := msg.Data.(model.AuditEvent)
		if !ok {
			t.Fatalf("message data is %T, want model.AuditEvent", msg.Data)
		}
		if got.Sequence != 11 {
			t.Errorf("Sequence = %d, want 11", got.Sequence)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive broadcast")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := setupHub(t)
	clients := []*Client{createTestClient(hub), createTestClient(hub), createTestClient(hub)}
	for _, c := range clients {
		registerClient(hub, c)
	}

	hub.BroadcastAuditEvent(model.NewAuditEvent(1, 5))

	for i, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeAuditEvent {
				t.Errorf("client %d message type = %q", i, msg.Type)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d did not receive broadcast", i)
		}
	}
}

func TestHubEvictsSlowClient(t *testing.T) {
	hub := setupHub(t)

	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message)} // zero capacity, never read
	healthy := createTestClient(hub)
	registerClient(hub, slow)
	registerClient(hub, healthy)

	hub.BroadcastAuditEvent(model.NewAuditEvent(1, 1))
	time.Sleep(50 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1 after slow client eviction", hub.ClientCount())
	}

	select {
	case msg := <-healthy.send:
		if msg.Type != MessageTypeAuditEvent {
			t.Errorf("healthy client message type = %q", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("healthy client starved by slow client")
	}
}

func TestHubBroadcastJSON(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	filter := model.FilterConfig{Process: "sshd"}
	hub.BroadcastJSON(MessageTypeConfigApplied, filter)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeConfigApplied {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeConfigApplied)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client did not receive config notification")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	time.Sleep(10 * time.Millisecond)

	client := createTestClient(hub)
	registerClient(hub, client)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop on context cancel")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after shutdown, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client send channel not closed on shutdown")
	}
}

func TestMarshalMessage(t *testing.T) {
	event := model.NewAuditEvent(1300, 3)
	data, err := MarshalMessage(Message{Type: MessageTypeAuditEvent, Data: event})
	if err != nil {
		t.Fatalf("MarshalMessage returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("MarshalMessage returned empty payload")
	}
}
