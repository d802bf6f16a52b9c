// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Package ingest owns the source/collector pair's lifecycle. There is at
// most one live pipeline at a time; applying a new filter replaces the
// whole pipeline rather than mutating the running one.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/auditwire/auditwire/internal/bridge"
	"github.com/auditwire/auditwire/internal/collector"
	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/metrics"
	"github.com/auditwire/auditwire/internal/model"
	"github.com/auditwire/auditwire/internal/source"
)

const (
	// DefaultGraceInterval is the settle pause between stopping the old
	// pipeline and constructing its replacement.
	DefaultGraceInterval = 150 * time.Millisecond

	// DefaultHandoffBuffer is the collector-to-relay channel capacity.
	DefaultHandoffBuffer = 1024
)

// Config holds manager settings.
type Config struct {
	// Source carries the backend selection and backend-specific knobs
	// shared by every pipeline the manager builds.
	Source source.Options

	// GraceInterval is slept between teardown and construction so the
	// outgoing source can release its subprocess or OS subscription.
	GraceInterval time.Duration

	// HandoffBuffer is the capacity of the channel between the collector
	// and the bridge relay.
	HandoffBuffer int
}

// Manager serializes pipeline replacement. Apply tears the current
// source and collector down, waits out the grace interval, and starts a
// fresh pair against the same bridge, so subscribers ride across
// reconfigurations without reconnecting.
type Manager struct {
	cfg     Config
	bridge  *bridge.Bridge
	breaker *gobreaker.CircuitBreaker[source.Source]
	logger  zerolog.Logger

	mu      sync.Mutex
	filter  model.FilterConfig
	src     source.Source
	cancel  context.CancelFunc
	done    chan struct{}
	active  bool
	applied bool
}

// NewManager creates a manager publishing through b. No pipeline runs
// until the first Apply.
func NewManager(cfg Config, b *bridge.Bridge) *Manager {
	if cfg.GraceInterval <= 0 {
		cfg.GraceInterval = DefaultGraceInterval
	}
	if cfg.HandoffBuffer <= 0 {
		cfg.HandoffBuffer = DefaultHandoffBuffer
	}

	m := &Manager{
		cfg:    cfg,
		bridge: b,
		logger: logging.With().Str("component", "ingest").Logger(),
	}

	// Repeated construction failures (missing audit log, dead log
	// binary, no event log privilege) trip the breaker so callers get an
	// immediate error instead of hammering the OS.
	m.breaker = gobreaker.NewCircuitBreaker[source.Source](gobreaker.Settings{
		Name:        "source-construction",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("source construction breaker state changed")
		},
	})

	return m
}

// Apply replaces the running pipeline with one built for filter. When
// filter equals the current configuration and a pipeline is running, the
// call is a no-op. On construction failure the manager is left idle with
// the new filter recorded, and a later Apply or Restart can recover.
func (m *Manager) Apply(filter model.FilterConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.applied && m.active && filter == m.filter {
		metrics.RecordReconfigure("unchanged")
		m.logger.Debug().Msg("configuration unchanged, keeping pipeline")
		return nil
	}

	m.stopLocked()
	m.filter = filter
	m.applied = true
	time.Sleep(m.cfg.GraceInterval)

	if err := m.startLocked(); err != nil {
		metrics.RecordReconfigure("failed")
		return err
	}

	metrics.RecordReconfigure("applied")
	return nil
}

// Restart rebuilds the pipeline for the current filter, recovering from
// a failed Apply or a source that died underneath us.
func (m *Manager) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.applied {
		return fmt.Errorf("no configuration applied yet")
	}

	m.stopLocked()
	time.Sleep(m.cfg.GraceInterval)

	if err := m.startLocked(); err != nil {
		metrics.RecordReconfigure("failed")
		return err
	}

	metrics.RecordReconfigure("restarted")
	return nil
}

// Filter returns the most recently applied filter configuration.
func (m *Manager) Filter() model.FilterConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Active reports whether a pipeline is currently running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Stop tears down the running pipeline, if any. The bridge and its
// subscribers are untouched.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// startLocked builds source, collector, and relay for m.filter. Caller
// holds m.mu.
func (m *Manager) startLocked() error {
	src, err := m.breaker.Execute(func() (source.Source, error) {
		return source.New(m.filter, m.cfg.Source)
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to construct audit source")
		return fmt.Errorf("construct audit source: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	handoff := make(chan model.AuditEvent, m.cfg.HandoffBuffer)
	col := collector.New(src, handoff, m.cfg.Source.Backend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := col.Run(ctx); err != nil {
			m.logger.Error().Err(err).Msg("collector exited with error")
		}
	}()
	go m.bridge.Relay(handoff)

	m.src = src
	m.cancel = cancel
	m.done = done
	m.active = true
	metrics.SourceActive.Set(1)

	m.logger.Info().
		Str("backend", m.cfg.Source.Backend).
		Msg("ingestion pipeline started")
	return nil
}

// stopLocked stops the current pipeline and waits for the collector to
// acknowledge. Caller holds m.mu.
func (m *Manager) stopLocked() {
	if !m.active {
		return
	}

	m.src.Stop()
	m.cancel()
	<-m.done

	m.src = nil
	m.cancel = nil
	m.done = nil
	m.active = false
	metrics.SourceActive.Set(0)

	m.logger.Info().Msg("ingestion pipeline stopped")
}
