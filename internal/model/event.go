// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package model

import (
	"time"

	"github.com/goccy/go-json"
)

// GenericRecordType classifies records that carry no native numeric audit
// type: structured (JSON) log entries and free-text lines.
const GenericRecordType uint16 = 1

// AuditEvent is the canonical representation every raw record format is
// normalized into. It is constructed exactly once by the collector's parse
// step and treated as immutable from then on; it passes by value through
// the pipeline so each subscriber gets its own copy.
type AuditEvent struct {
	// Timestamp is when the event was recorded or received. Always set at
	// construction time.
	Timestamp time.Time `json:"timestamp"`

	// RecordType classifies the event's origin format, e.g. 1300 for a
	// native syscall record or GenericRecordType for JSON/free-text lines.
	RecordType uint16 `json:"record_type"`

	// Sequence is the source's own serial number for the record. Zero when
	// the source format carries no serial.
	Sequence uint32 `json:"sequence"`

	// Fields holds every key/value pair the parser extracted, plus the
	// synthetic keys the parser injects (message, process, pid, thread_id,
	// subsystem, category, library). Never nil; may be empty.
	Fields map[string]string `json:"fields"`
}

// NewAuditEvent creates an event stamped with the current time and an empty,
// non-nil field map.
func NewAuditEvent(recordType uint16, sequence uint32) AuditEvent {
	return AuditEvent{
		Timestamp:  time.Now().UTC(),
		RecordType: recordType,
		Sequence:   sequence,
		Fields:     make(map[string]string),
	}
}

// Marshal serializes the event as one self-contained JSON record.
func (e AuditEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalAuditEvent decodes a single serialized event.
func UnmarshalAuditEvent(data []byte) (AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return AuditEvent{}, err
	}
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	return e, nil
}

// AppleLogEntry mirrors the structured JSON schema emitted by the macOS
// `log stream --style json` tool. Pointer fields distinguish absent keys
// from present-but-empty values; absent fields must not surface as empty
// strings in the canonical event.
type AppleLogEntry struct {
	Timestamp        *string `json:"timestamp"`
	Subsystem        *string `json:"subsystem"`
	Category         *string `json:"category"`
	ProcessImagePath *string `json:"processImagePath"`
	ProcessID        *uint64 `json:"processID"`
	ThreadID         *uint64 `json:"threadID"`
	EventMessage     *string `json:"eventMessage"`
	MessageType      *string `json:"messageType"`
}
