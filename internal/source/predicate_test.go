// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"testing"

	"github.com/auditwire/auditwire/internal/model"
)

func TestBuildPredicate(t *testing.T) {
	tests := []struct {
		name   string
		filter model.FilterConfig
		want   string
	}{
		{
			name:   "unconstrained",
			filter: model.FilterConfig{},
			want:   "",
		},
		{
			name:   "process only",
			filter: model.FilterConfig{Process: "securityd"},
			want:   `process == "securityd"`,
		},
		{
			name:   "message substring",
			filter: model.FilterConfig{Message: "denied"},
			want:   `eventMessage contains "denied"`,
		},
		{
			name:   "subsystem",
			filter: model.FilterConfig{Subsystem: "com.apple.securityd"},
			want:   `subsystem == "com.apple.securityd"`,
		},
		{
			name:   "pid numeric",
			filter: model.FilterConfig{PID: "123"},
			want:   "processID == 123",
		},
		{
			name:   "thread id numeric",
			filter: model.FilterConfig{ThreadID: "777"},
			want:   "threadID == 777",
		},
		{
			name:   "category",
			filter: model.FilterConfig{Category: "security"},
			want:   `category == "security"`,
		},
		{
			name:   "library path substring",
			filter: model.FilterConfig{Library: "/usr/lib/libfoo"},
			want:   `processImagePath contains "/usr/lib/libfoo"`,
		},
		{
			name: "conjunction in field order",
			filter: model.FilterConfig{
				Process: "sshd",
				Message: "accepted",
				PID:     "42",
			},
			want: `process == "sshd" AND eventMessage contains "accepted" AND processID == 42`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildPredicate(tc.filter); got != tc.want {
				t.Errorf("BuildPredicate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCleanStreamLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"[", ""},
		{"]", ""},
		{"],", ""},
		{"", ""},
		{"   ", ""},
		{`{"eventMessage":"x"},`, `{"eventMessage":"x"}`},
		{`{"eventMessage":"y"}`, `{"eventMessage":"y"}`},
		{`  {"a":1},  `, `{"a":1}`},
	}

	for _, tc := range tests {
		if got := cleanStreamLine(tc.line); got != tc.want {
			t.Errorf("cleanStreamLine(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
