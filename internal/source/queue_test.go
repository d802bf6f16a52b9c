// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"errors"
	"testing"
	"time"
)

func TestRecordQueueOrdering(t *testing.T) {
	q := newRecordQueue(time.Millisecond)
	q.Push([]byte("first"))
	q.Push([]byte("second"))

	for _, want := range []string{"first", "second"} {
		got, err := q.Receive()
		if err != nil {
			t.Fatalf("Receive returned error: %v", err)
		}
		if string(got) != want {
			t.Errorf("Receive = %q, want %q", got, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}

func TestRecordQueueBlocksUntilPush(t *testing.T) {
	q := newRecordQueue(time.Millisecond)

	result := make(chan []byte, 1)
	go func() {
		record, err := q.Receive()
		if err != nil {
			return
		}
		result <- record
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push([]byte("late"))

	select {
	case got := <-result:
		if string(got) != "late" {
			t.Errorf("Receive = %q, want %q", got, "late")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not wake after push")
	}
}

func TestRecordQueueStopAcknowledgment(t *testing.T) {
	q := newRecordQueue(time.Millisecond)
	q.Push([]byte("queued"))
	q.MarkStopped()

	// queued record still drains
	got, err := q.Receive()
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if string(got) != "queued" {
		t.Errorf("Receive = %q, want %q", got, "queued")
	}

	// drained and stopped means ErrSourceStopped
	if _, err := q.Receive(); !errors.Is(err, ErrSourceStopped) {
		t.Fatalf("Receive error = %v, want ErrSourceStopped", err)
	}
}

func TestRecordQueueAcceptsPushAfterStop(t *testing.T) {
	q := newRecordQueue(time.Millisecond)
	q.MarkStopped()
	q.Push([]byte("trailing"))

	got, err := q.Receive()
	if err != nil {
		t.Fatalf("Receive returned error: %v", err)
	}
	if string(got) != "trailing" {
		t.Errorf("Receive = %q, want %q", got, "trailing")
	}
	if _, err := q.Receive(); !errors.Is(err, ErrSourceStopped) {
		t.Fatalf("Receive error = %v, want ErrSourceStopped", err)
	}
}

func TestRecordQueueMarkStoppedIdempotent(t *testing.T) {
	q := newRecordQueue(time.Millisecond)
	q.MarkStopped()
	q.MarkStopped()

	if _, err := q.Receive(); !errors.Is(err, ErrSourceStopped) {
		t.Fatalf("Receive error = %v, want ErrSourceStopped", err)
	}
}
