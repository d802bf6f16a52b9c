// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter on top of zerolog so
// the pub/sub layer logs through the same pipeline as everything else.
type WatermillAdapter struct {
	logger zerolog.Logger
}

// NewWatermillAdapter creates an adapter around the global logger.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: Logger()}
}

// NewWatermillAdapterWithLogger creates an adapter around a specific logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapterWithLogger(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

// Error logs an error message.
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	addFields(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs an info message.
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	addFields(a.logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	addFields(a.logger.Debug(), fields).Msg(msg)
}

// Trace logs a trace message.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	addFields(a.logger.Trace(), fields).Msg(msg)
}

// With returns an adapter whose logger carries the given fields on every
// message.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &WatermillAdapter{logger: ctx.Logger()}
}

func addFields(event *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}
