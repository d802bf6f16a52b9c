// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline: raw record throughput, parse outcomes, fan-out delivery, source
// reconfiguration, and websocket subscriber counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsReceived counts raw records pulled from the active source,
	// labeled by source backend.
	RecordsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_received_total",
			Help: "Total number of raw records received from audit sources",
		},
		[]string{"backend"},
	)

	// EventsParsed counts raw records successfully parsed into canonical
	// events, labeled by record format (structured, native, text).
	EventsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_parsed_total",
			Help: "Total number of canonical events produced by the parser",
		},
		[]string{"format"},
	)

	// ParseFailures counts records dropped because they could not be parsed.
	ParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_parse_failures_total",
			Help: "Total number of raw records dropped due to parse failures",
		},
	)

	// EventsPublished counts events handed to the distribution bridge.
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_published_total",
			Help: "Total number of events published to the fan-out sink",
		},
	)

	// EventsDropped counts events shed for individual slow subscribers.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of events dropped for slow subscribers",
		},
	)

	// Reconfigures counts reconfiguration cycles by outcome
	// (success, failure, unchanged).
	Reconfigures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_reconfigures_total",
			Help: "Total number of filter reconfiguration cycles",
		},
		[]string{"result"},
	)

	// SourceActive is 1 while an audit source is active, 0 while idle.
	SourceActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_source_active",
			Help: "Whether an audit source is currently active (1) or the pipeline is idle (0)",
		},
	)

	// WebSocketClients tracks currently connected live subscribers.
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Current number of connected websocket clients",
		},
	)
)

// RecordReceived increments the raw record counter for a backend.
func RecordReceived(backend string) {
	RecordsReceived.WithLabelValues(backend).Inc()
}

// RecordParsed increments the parsed event counter for a format.
func RecordParsed(format string) {
	EventsParsed.WithLabelValues(format).Inc()
}

// RecordReconfigure increments the reconfigure counter for an outcome.
func RecordReconfigure(result string) {
	Reconfigures.WithLabelValues(result).Inc()
}
