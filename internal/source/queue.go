// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"sync"
	"time"
)

// recordQueue is the unbounded hand-off between a source's capture
// goroutine and Receive. Receive polls with a short sleep rather than a
// condition variable; the poll interval is the accepted wake-up latency.
type recordQueue struct {
	mu      sync.Mutex
	records [][]byte
	stopped bool
	poll    time.Duration
}

func newRecordQueue(poll time.Duration) *recordQueue {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &recordQueue{poll: poll}
}

// Push appends one record. Pushes after MarkStopped are still accepted so
// trailing output from a dying subprocess is not lost mid-drain.
func (q *recordQueue) Push(record []byte) {
	q.mu.Lock()
	q.records = append(q.records, record)
	q.mu.Unlock()
}

// MarkStopped flags the queue so Receive returns ErrSourceStopped once the
// remaining records are drained. Idempotent.
func (q *recordQueue) MarkStopped() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
}

// Receive blocks until a record is available, polling between checks. On a
// stopped and drained queue it returns ErrSourceStopped.
func (q *recordQueue) Receive() ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.records) > 0 {
			record := q.records[0]
			q.records = q.records[1:]
			q.mu.Unlock()
			return record, nil
		}
		stopped := q.stopped
		q.mu.Unlock()

		if stopped {
			return nil, ErrSourceStopped
		}
		time.Sleep(q.poll)
	}
}

// Len reports the queued record count.
func (q *recordQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}
