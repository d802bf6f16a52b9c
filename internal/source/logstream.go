// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
)

// LogStreamSource streams records from the native log streaming tool in its
// machine-readable JSON mode, constrained by a predicate generated from the
// active filter configuration.
type LogStreamSource struct {
	queue    *recordQueue
	cmd      *exec.Cmd
	stopOnce sync.Once
}

// NewLogStreamSource spawns the streaming tool with a predicate built from
// the filter and starts capturing its output.
func NewLogStreamSource(filter model.FilterConfig, opts Options) (*LogStreamSource, error) {
	args := []string{"stream", "--style", "json"}
	predicate := BuildPredicate(filter)
	if predicate != "" {
		args = append(args, "--predicate", predicate)
	}

	cmd := exec.Command(opts.LogCommand, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("log stream stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s stream: %w", opts.LogCommand, err)
	}

	s := &LogStreamSource{
		queue: newRecordQueue(opts.pollInterval()),
		cmd:   cmd,
	}

	logging.Info().
		Str("backend", "logstream").
		Str("predicate", predicate).
		Int("pid", cmd.Process.Pid).
		Msg("log stream started")

	go s.capture(stdout)
	return s, nil
}

// capture reads the tool's output line by line. The JSON style wraps the
// record stream in an array, so pure framing lines are skipped and each
// record line loses its trailing separator before queueing.
func (s *LogStreamSource) capture(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := cleanStreamLine(scanner.Text())
		if line == "" {
			continue
		}
		s.queue.Push([]byte(line))
	}

	if err := scanner.Err(); err != nil {
		logging.Warn().Err(err).Str("backend", "logstream").Msg("log stream capture ended with error")
	}

	_ = s.cmd.Wait()
	s.queue.MarkStopped()
}

// cleanStreamLine strips the structural framing the JSON output mode emits
// around records: array open/close markers and trailing element separators.
// Returns "" for lines that carry no record.
func cleanStreamLine(line string) string {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "", "[", "]", "],":
		return ""
	}
	return strings.TrimSuffix(trimmed, ",")
}

// Receive blocks until one record is available.
func (s *LogStreamSource) Receive() ([]byte, error) {
	return s.queue.Receive()
}

// Stop terminates the streaming subprocess. Idempotent.
func (s *LogStreamSource) Stop() {
	s.stopOnce.Do(func() {
		if s.cmd.Process != nil {
			if err := s.cmd.Process.Kill(); err != nil {
				logging.Debug().Err(err).Str("backend", "logstream").Msg("kill log stream process")
			}
		}
	})
}
