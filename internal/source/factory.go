// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"fmt"
	"runtime"

	"github.com/auditwire/auditwire/internal/model"
)

// Backend identifiers accepted by New.
const (
	BackendAuto        = "auto"
	BackendTail        = "tail"
	BackendLogStream   = "logstream"
	BackendWinEventLog = "wineventlog"
	BackendMock        = "mock"
)

// ResolveBackend maps the auto backend to the platform's native mechanism.
// Concrete backends pass through unchanged.
func ResolveBackend(backend string) (string, error) {
	if backend != BackendAuto {
		return backend, nil
	}
	switch runtime.GOOS {
	case "linux":
		return BackendTail, nil
	case "darwin":
		return BackendLogStream, nil
	case "windows":
		return BackendWinEventLog, nil
	default:
		return "", fmt.Errorf("no native audit backend for platform %s", runtime.GOOS)
	}
}

// New constructs the audit source selected by opts.Backend, constrained by
// the filter where the mechanism supports it. Construction failure means
// the attempt never becomes the active source; the caller stays in its
// previous state.
func New(filter model.FilterConfig, opts Options) (Source, error) {
	backend, err := ResolveBackend(opts.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendTail:
		return NewTailSource(opts)
	case BackendLogStream:
		return NewLogStreamSource(filter, opts)
	case BackendWinEventLog:
		return NewWindowsEventSource(opts)
	case BackendMock:
		return NewMockSource(nil), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", backend)
	}
}
