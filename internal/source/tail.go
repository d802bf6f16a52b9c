// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/auditwire/auditwire/internal/logging"
)

// maxLineSize bounds a single captured line. Native audit records can run
// long but stay well under this.
const maxLineSize = 1024 * 1024

// TailSource follows a system audit log file with a long-lived tail
// subprocess. Reading the privileged log location requires read access at
// construction time; a permission problem surfaces as a construction
// error, never as a Receive error.
type TailSource struct {
	queue    *recordQueue
	cmd      *exec.Cmd
	stopOnce sync.Once
}

// NewTailSource spawns `tail -F` on the configured audit log path and
// starts capturing its output line by line.
func NewTailSource(opts Options) (*TailSource, error) {
	// Probe read access up front; tail itself would fail asynchronously.
	f, err := os.Open(opts.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("open audit log %s: %w", opts.AuditLogPath, err)
	}
	_ = f.Close()

	cmd := exec.Command("tail", "-F", "-n", "0", opts.AuditLogPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("tail stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tail %s: %w", opts.AuditLogPath, err)
	}

	s := &TailSource{
		queue: newRecordQueue(opts.pollInterval()),
		cmd:   cmd,
	}

	logging.Info().
		Str("backend", "tail").
		Str("path", opts.AuditLogPath).
		Int("pid", cmd.Process.Pid).
		Msg("audit log tail started")

	go s.capture(stdout)
	return s, nil
}

// capture reads tail output line by line, queuing trimmed non-empty lines.
// It exits when the subprocess closes its stdout, marking the queue stopped
// so Receive acknowledges the termination after the drain.
func (s *TailSource) capture(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.queue.Push([]byte(line))
	}

	if err := scanner.Err(); err != nil {
		logging.Warn().Err(err).Str("backend", "tail").Msg("tail capture ended with error")
	}

	// Reap the subprocess so it does not linger as a zombie.
	_ = s.cmd.Wait()
	s.queue.MarkStopped()
}

// Receive blocks until one log line is available.
func (s *TailSource) Receive() ([]byte, error) {
	return s.queue.Receive()
}

// Stop terminates the tail subprocess. Idempotent; the capture goroutine
// drains naturally once the process exits.
func (s *TailSource) Stop() {
	s.stopOnce.Do(func() {
		if s.cmd.Process != nil {
			if err := s.cmd.Process.Kill(); err != nil {
				logging.Debug().Err(err).Str("backend", "tail").Msg("kill tail process")
			}
		}
	})
}
