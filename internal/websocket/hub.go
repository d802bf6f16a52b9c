// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/metrics"
	"github.com/auditwire/auditwire/internal/model"
)

// Message types pushed to browser clients.
const (
	MessageTypeAuditEvent    = "audit_event"
	MessageTypeConfigApplied = "config_applied"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message is the envelope for every frame sent over a live-stream
// connection.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected live-stream clients and fans
// messages out to them. A slow client never blocks the hub; its frames
// are dropped and, if its buffer stays full, the client is evicted.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext services registrations, unregistrations, and broadcasts
// until ctx is canceled, then closes every client and returns ctx.Err().
// Designed to run under suture supervision.
//
// Lifecycle events are drained before broadcasts so client membership is
// settled when a message fans out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("live-stream client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketClients.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("live-stream client disconnected")
}

// broadcastToClients delivers message to every client in ID order.
// Clients whose send buffer is full are evicted rather than waited on.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			metrics.EventsDropped.Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		logging.Warn().Uint64("client_id", client.id).Msg("evicting slow live-stream client")
	}
	if len(toRemove) > 0 {
		metrics.WebSocketClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WebSocketClients.Set(0)
	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", count).
		AnErr("cause", ctx.Err()).
		Msg("websocket hub stopped")
}

// BroadcastAuditEvent pushes one audit event to every connected client.
// The hub's intake buffer is itself non-blocking; when it is full the
// event is dropped and counted.
func (h *Hub) BroadcastAuditEvent(event model.AuditEvent) {
	message := Message{
		Type: MessageTypeAuditEvent,
		Data: event,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.EventsDropped.Inc()
		logging.Warn().Msg("broadcast channel full, dropping audit event")
	}
}

// BroadcastJSON pushes an arbitrary typed message to every connected
// client. Used for config_applied notifications.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
