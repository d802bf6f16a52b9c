// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

//go:build !windows

package source

import "fmt"

// WindowsEventSource is only available on windows builds; this stub keeps
// the factory compiling everywhere.
type WindowsEventSource struct{}

// NewWindowsEventSource reports that the backend is unavailable on this
// platform.
func NewWindowsEventSource(_ Options) (*WindowsEventSource, error) {
	return nil, fmt.Errorf("the wineventlog backend requires a windows build")
}

// Receive is unreachable on non-windows builds.
func (s *WindowsEventSource) Receive() ([]byte, error) {
	return nil, ErrSourceStopped
}

// Stop is a no-op on non-windows builds.
func (s *WindowsEventSource) Stop() {}
