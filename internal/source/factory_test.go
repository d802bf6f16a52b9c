// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"runtime"
	"testing"

	"github.com/auditwire/auditwire/internal/model"
)

func TestResolveBackendPassthrough(t *testing.T) {
	for _, backend := range []string{BackendTail, BackendLogStream, BackendWinEventLog, BackendMock} {
		got, err := ResolveBackend(backend)
		if err != nil {
			t.Fatalf("ResolveBackend(%q) returned error: %v", backend, err)
		}
		if got != backend {
			t.Errorf("ResolveBackend(%q) = %q, want passthrough", backend, got)
		}
	}
}

func TestResolveBackendAuto(t *testing.T) {
	got, err := ResolveBackend(BackendAuto)

	switch runtime.GOOS {
	case "linux":
		if err != nil || got != BackendTail {
			t.Errorf("ResolveBackend(auto) = %q, %v, want tail", got, err)
		}
	case "darwin":
		if err != nil || got != BackendLogStream {
			t.Errorf("ResolveBackend(auto) = %q, %v, want logstream", got, err)
		}
	case "windows":
		if err != nil || got != BackendWinEventLog {
			t.Errorf("ResolveBackend(auto) = %q, %v, want wineventlog", got, err)
		}
	default:
		if err == nil {
			t.Errorf("ResolveBackend(auto) = %q, want error on %s", got, runtime.GOOS)
		}
	}
}

func TestNewMockBackend(t *testing.T) {
	src, err := New(model.FilterConfig{}, Options{Backend: BackendMock})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := src.(*MockSource); !ok {
		t.Fatalf("New returned %T, want *MockSource", src)
	}
	src.Stop()
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(model.FilterConfig{}, Options{Backend: "journald"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewTailBackendMissingFile(t *testing.T) {
	_, err := New(model.FilterConfig{}, Options{
		Backend:      BackendTail,
		AuditLogPath: "/nonexistent/audit.log",
	})
	if err == nil {
		t.Fatal("expected error for unreadable audit log path")
	}
}

func TestOptionsPollIntervalDefault(t *testing.T) {
	if got := (Options{}).pollInterval(); got != DefaultPollInterval {
		t.Errorf("pollInterval = %v, want %v", got, DefaultPollInterval)
	}
	if got := (Options{PollInterval: -1}).pollInterval(); got != DefaultPollInterval {
		t.Errorf("pollInterval(-1) = %v, want %v", got, DefaultPollInterval)
	}
}
