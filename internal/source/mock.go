// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"sync"
	"time"
)

// MockSource replays a fixed ordered sequence of raw records. When the
// sequence is exhausted, Receive blocks (polling) exactly like a quiet
// production source until more records are appended or the source is
// stopped, so collector loops behave identically under test.
type MockSource struct {
	queue    *recordQueue
	stopOnce sync.Once
}

// NewMockSource creates a source preloaded with the given records.
func NewMockSource(records [][]byte) *MockSource {
	s := &MockSource{queue: newRecordQueue(5 * time.Millisecond)} // short poll keeps tests fast
	for _, r := range records {
		s.queue.Push(r)
	}
	return s
}

// Append feeds one more record to a live source.
func (s *MockSource) Append(record []byte) {
	s.queue.Push(record)
}

// Pending reports how many records have not yet been received.
func (s *MockSource) Pending() int {
	return s.queue.Len()
}

// Receive blocks until one record is available.
func (s *MockSource) Receive() ([]byte, error) {
	return s.queue.Receive()
}

// Stop marks the source stopped; Receive drains the remaining records and
// then reports ErrSourceStopped. Idempotent.
func (s *MockSource) Stop() {
	s.stopOnce.Do(s.queue.MarkStopped)
}
