// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package collector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/auditwire/auditwire/internal/model"
)

// Record format labels, used for parse metrics.
const (
	FormatStructured = "structured"
	FormatNative     = "native"
	FormatText       = "text"
)

// ParseRecord normalizes one raw record into a canonical event. Format
// sniffing is first-match-wins:
//
//  1. A record opening with '{' is decoded against the structured log
//     schema. Decode failure is the only error path of this function.
//  2. A record carrying both a "type=" token and a "msg=audit" marker is
//     parsed with the legacy key=value audit grammar.
//  3. Anything else becomes a single free-text message event.
//
// The returned format label classifies which path produced the event.
func ParseRecord(raw []byte) (model.AuditEvent, string, error) {
	s := string(raw)
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "{") {
		event, err := parseStructured(trimmed)
		if err != nil {
			return model.AuditEvent{}, FormatStructured, err
		}
		return event, FormatStructured, nil
	}

	if strings.Contains(s, "type=") && strings.Contains(s, "msg=audit") {
		return parseNative(s), FormatNative, nil
	}

	event := model.NewAuditEvent(model.GenericRecordType, 0)
	event.Fields["message"] = s
	return event, FormatText, nil
}

// parseStructured decodes the JSON log schema. Present fields populate the
// canonical keys; absent fields are omitted, never inserted empty. The
// process image path fills both process and library. The source-provided
// timestamp string is not parsed; the event carries reception time.
func parseStructured(s string) (model.AuditEvent, error) {
	var entry model.AppleLogEntry
	if err := json.Unmarshal([]byte(s), &entry); err != nil {
		return model.AuditEvent{}, fmt.Errorf("decode structured record: %w", err)
	}

	event := model.NewAuditEvent(model.GenericRecordType, 0)
	if entry.EventMessage != nil {
		event.Fields["message"] = *entry.EventMessage
	}
	if entry.ProcessImagePath != nil {
		event.Fields["process"] = *entry.ProcessImagePath
		event.Fields["library"] = *entry.ProcessImagePath
	}
	if entry.ProcessID != nil {
		event.Fields["pid"] = strconv.FormatUint(*entry.ProcessID, 10)
	}
	if entry.ThreadID != nil {
		event.Fields["thread_id"] = strconv.FormatUint(*entry.ThreadID, 10)
	}
	if entry.Subsystem != nil {
		event.Fields["subsystem"] = *entry.Subsystem
	}
	if entry.Category != nil {
		event.Fields["category"] = *entry.Category
	}
	return event, nil
}

// parseNative parses the legacy key=value audit grammar. Every token
// splitting on the first '=' lands verbatim in the field map; the type
// token's digits become the record type and the msg token's serial span
// becomes the sequence.
func parseNative(s string) model.AuditEvent {
	event := model.NewAuditEvent(0, 0)

	for _, token := range strings.Fields(s) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		event.Fields[key] = value

		switch key {
		case "type":
			event.RecordType = parseRecordType(value)
		case "msg":
			event.Sequence = parseSerial(value)
		}
	}
	return event
}

// parseRecordType extracts the decimal digits of the type value and parses
// them as the native record type. Non-digit or empty input yields 0.
func parseRecordType(value string) uint16 {
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseUint(digits.String(), 10, 16)
	if err != nil {
		return 0
	}
	return uint16(n)
}

// parseSerial extracts the serial between the first ':' and the first ')'
// after it in a value shaped like "audit(1674390000.123:100)". A malformed
// or absent span yields 0.
func parseSerial(value string) uint32 {
	colon := strings.Index(value, ":")
	if colon < 0 {
		return 0
	}
	closing := strings.Index(value, ")")
	if closing <= colon {
		return 0
	}
	n, err := strconv.ParseUint(value[colon+1:closing], 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
