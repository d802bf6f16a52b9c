// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"

	"github.com/auditwire/auditwire/internal/config"
	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
	ws "github.com/auditwire/auditwire/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// fakeManager records Apply calls.
type fakeManager struct {
	filter   model.FilterConfig
	active   bool
	applyErr error
	applied  []model.FilterConfig
}

func (f *fakeManager) Apply(filter model.FilterConfig) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.filter = filter
	f.applied = append(f.applied, filter)
	f.active = true
	return nil
}

func (f *fakeManager) Filter() model.FilterConfig { return f.filter }
func (f *fakeManager) Active() bool               { return f.active }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			Timeout:         5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}
}

// setupAPI builds a router with a running hub and a fake manager.
func setupAPI(t *testing.T, manager *fakeManager) (http.Handler, *ws.Hub) {
	t.Helper()
	hub := ws.NewHub()
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

	cfg := testConfig()
	handler := NewHandler(cfg, hub, manager)
	return NewRouter(cfg, handler).Setup(), hub
}

func decodeResponse(t *testing.T, body io.Reader) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestGetConfig(t *testing.T) {
	manager := &fakeManager{filter: model.FilterConfig{Process: "sshd", PID: "42"}}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec.Body)
	if resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["process"] != "sshd" || data["pid"] != "42" {
		t.Errorf("data = %v, want process/pid round-trip", resp.Data)
	}
}

func TestUpdateConfigApplies(t *testing.T) {
	manager := &fakeManager{}
	router, _ := setupAPI(t, manager)

	body := strings.NewReader(`{"process": "sshd", "message": "denied", "pid": "42"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if len(manager.applied) != 1 {
		t.Fatalf("Apply called %d times, want 1", len(manager.applied))
	}
	want := model.FilterConfig{Process: "sshd", Message: "denied", PID: "42"}
	if manager.applied[0] != want {
		t.Errorf("applied = %+v, want %+v", manager.applied[0], want)
	}
}

func TestUpdateConfigRejectsMalformedBody(t *testing.T) {
	manager := &fakeManager{}
	router, _ := setupAPI(t, manager)

	for _, body := range []string{`{`, `{"unknown_field": 1}`, `{"pid": 42}`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/config", strings.NewReader(body))
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if len(manager.applied) != 0 {
		t.Errorf("Apply called %d times for rejected bodies", len(manager.applied))
	}
}

func TestUpdateConfigRejectsNonNumericPID(t *testing.T) {
	manager := &fakeManager{}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config", strings.NewReader(`{"pid": "abc"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec.Body)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestUpdateConfigApplyFailure(t *testing.T) {
	manager := &fakeManager{applyErr: errors.New("backend unavailable")}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/config", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	manager := &fakeManager{active: true}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec.Body)
	data, _ := resp.Data.(map[string]interface{})
	if data["status"] != "ok" {
		t.Errorf("health status = %v, want ok", data["status"])
	}
	if data["source_active"] != true {
		t.Errorf("source_active = %v, want true", data["source_active"])
	}
}

func TestHealthDegradedWithoutSource(t *testing.T) {
	manager := &fakeManager{active: false}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	resp := decodeResponse(t, rec.Body)
	data, _ := resp.Data.(map[string]interface{})
	if data["status"] != "degraded" {
		t.Errorf("health status = %v, want degraded", data["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	manager := &fakeManager{}
	router, _ := setupAPI(t, manager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "audit_source_active") {
		t.Error("metrics output missing pipeline collectors")
	}
}

func TestWebSocketLiveStream(t *testing.T) {
	manager := &fakeManager{}
	router, hub := setupAPI(t, manager)

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/events/ws"
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	// registration races the broadcast; give the hub a beat
	time.Sleep(50 * time.Millisecond)

	event := model.NewAuditEvent(1300, 77)
	event.Fields["comm"] = `"cat"`
	hub.BroadcastAuditEvent(event)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string           `json:"type"`
		Data model.AuditEvent `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if msg.Type != ws.MessageTypeAuditEvent {
		t.Errorf("message type = %q, want %q", msg.Type, ws.MessageTypeAuditEvent)
	}
	if msg.Data.Sequence != 77 {
		t.Errorf("Sequence = %d, want 77", msg.Data.Sequence)
	}
	if msg.Data.Fields["comm"] != `"cat"` {
		t.Errorf("Fields[comm] = %q, want verbatim quoted value", msg.Data.Fields["comm"])
	}
}
