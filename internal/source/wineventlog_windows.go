// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

//go:build windows

package source

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/goccy/go-json"

	"github.com/auditwire/auditwire/internal/logging"
)

var (
	modwevtapi = windows.NewLazySystemDLL("wevtapi.dll")

	procEvtSubscribe = modwevtapi.NewProc("EvtSubscribe")
	procEvtNext      = modwevtapi.NewProc("EvtNext")
	procEvtRender    = modwevtapi.NewProc("EvtRender")
	procEvtClose     = modwevtapi.NewProc("EvtClose")
)

const (
	evtSubscribeToFutureEvents = 1
	evtRenderEventXML          = 1

	// evtWaitTimeoutMs bounds each wait on the subscription's signal event
	// so the waiter can observe the stop flag between batches.
	evtWaitTimeoutMs = 1000

	// evtBatchSize is the maximum number of event handles pulled per signal.
	evtBatchSize = 16
)

// WindowsEventSource subscribes to a fixed event log channel via the
// wevtapi push subscription API. There is no dynamic predicate in this
// variant; the channel is the only constraint.
//
// A dedicated goroutine waits on the subscription's signal event with a
// bounded timeout, pulls batches of new records, renders each to its
// self-describing XML form and queues it wrapped in a JSON envelope the
// collector's generic-JSON path recognizes.
type WindowsEventSource struct {
	queue    *recordQueue
	stopped  atomic.Bool
	stopOnce sync.Once
	channel  string
}

// eventEnvelope is the minimal JSON wrapper around a rendered record.
type eventEnvelope struct {
	EventMessage string `json:"eventMessage"`
	Subsystem    string `json:"subsystem"`
}

// NewWindowsEventSource opens a subscription to the configured channel and
// starts the waiter goroutine. Subscription failure is a construction
// error.
func NewWindowsEventSource(opts Options) (*WindowsEventSource, error) {
	signal, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("create signal event: %w", err)
	}

	channelPtr, err := windows.UTF16PtrFromString(opts.Channel)
	if err != nil {
		_ = windows.CloseHandle(signal)
		return nil, fmt.Errorf("encode channel name: %w", err)
	}

	sub, _, callErr := procEvtSubscribe.Call(
		0, // session: local machine
		uintptr(signal),
		uintptr(unsafe.Pointer(channelPtr)),
		0, // query: all events on the channel
		0, // bookmark
		0, // context
		0, // callback: pull model via signal event
		evtSubscribeToFutureEvents,
	)
	if sub == 0 {
		_ = windows.CloseHandle(signal)
		return nil, fmt.Errorf("subscribe to event log channel %s: %w", opts.Channel, callErr)
	}

	s := &WindowsEventSource{
		queue:   newRecordQueue(opts.pollInterval()),
		channel: opts.Channel,
	}

	logging.Info().
		Str("backend", "wineventlog").
		Str("channel", opts.Channel).
		Msg("event log subscription started")

	go s.wait(sub, signal)
	return s, nil
}

// wait blocks on the signal event with a bounded timeout, checking the
// stop flag on every tick; on signal it drains the available batch. The
// subscription and signal handles are released when the goroutine exits.
func (s *WindowsEventSource) wait(sub uintptr, signal windows.Handle) {
	defer func() {
		_, _, _ = procEvtClose.Call(sub)
		_ = windows.CloseHandle(signal)
		s.queue.MarkStopped()
	}()

	for !s.stopped.Load() {
		status, err := windows.WaitForSingleObject(signal, evtWaitTimeoutMs)
		if err != nil {
			logging.Warn().Err(err).Str("backend", "wineventlog").Msg("event wait failed")
			return
		}
		if status != windows.WAIT_OBJECT_0 {
			continue
		}
		s.drain(sub)
	}
}

// drain pulls every currently available record from the subscription.
func (s *WindowsEventSource) drain(sub uintptr) {
	for {
		var handles [evtBatchSize]uintptr
		var returned uint32

		ok, _, _ := procEvtNext.Call(
			sub,
			uintptr(evtBatchSize),
			uintptr(unsafe.Pointer(&handles[0])),
			uintptr(evtWaitTimeoutMs),
			0,
			uintptr(unsafe.Pointer(&returned)),
		)
		if ok == 0 || returned == 0 {
			return
		}

		for i := uint32(0); i < returned; i++ {
			if xml, err := renderEventXML(handles[i]); err == nil && xml != "" {
				s.enqueue(xml)
			}
			_, _, _ = procEvtClose.Call(handles[i])
		}
	}
}

// enqueue wraps the rendered record in the generic-JSON envelope and
// queues it.
func (s *WindowsEventSource) enqueue(xml string) {
	payload, err := json.Marshal(eventEnvelope{
		EventMessage: xml,
		Subsystem:    "wineventlog/" + s.channel,
	})
	if err != nil {
		logging.Warn().Err(err).Str("backend", "wineventlog").Msg("encode event envelope")
		return
	}
	s.queue.Push(payload)
}

// renderEventXML renders one event handle to its XML representation using
// the usual two-call sizing pattern.
func renderEventXML(event uintptr) (string, error) {
	var bufferUsed, propertyCount uint32

	_, _, _ = procEvtRender.Call(
		0,
		event,
		evtRenderEventXML,
		0,
		0,
		uintptr(unsafe.Pointer(&bufferUsed)),
		uintptr(unsafe.Pointer(&propertyCount)),
	)
	if bufferUsed == 0 {
		return "", nil
	}

	buf := make([]uint16, (bufferUsed+1)/2)
	ok, _, callErr := procEvtRender.Call(
		0,
		event,
		evtRenderEventXML,
		uintptr(bufferUsed),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&bufferUsed)),
		uintptr(unsafe.Pointer(&propertyCount)),
	)
	if ok == 0 {
		return "", fmt.Errorf("render event XML: %w", callErr)
	}

	return windows.UTF16ToString(buf), nil
}

// Receive blocks until one record is available.
func (s *WindowsEventSource) Receive() ([]byte, error) {
	return s.queue.Receive()
}

// Stop sets the stop flag; the waiter observes it on its next timeout tick
// and releases the subscription handles. Idempotent.
func (s *WindowsEventSource) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
	})
}
