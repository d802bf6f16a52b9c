// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

package source

import (
	"fmt"
	"strings"

	"github.com/auditwire/auditwire/internal/model"
)

// BuildPredicate renders a filter configuration as the conjunctive query
// predicate the native log streaming tool understands. Each non-empty
// dimension contributes one clause; an unconstrained filter yields "".
//
// Field mapping follows the tool's schema: process and subsystem match
// exactly, message and image path are substring matches, pid and thread id
// are numeric comparisons.
func BuildPredicate(f model.FilterConfig) string {
	var clauses []string

	if f.Process != "" {
		clauses = append(clauses, fmt.Sprintf("process == %q", f.Process))
	}
	if f.Message != "" {
		clauses = append(clauses, fmt.Sprintf("eventMessage contains %q", f.Message))
	}
	if f.Subsystem != "" {
		clauses = append(clauses, fmt.Sprintf("subsystem == %q", f.Subsystem))
	}
	if f.PID != "" {
		clauses = append(clauses, fmt.Sprintf("processID == %s", f.PID))
	}
	if f.ThreadID != "" {
		clauses = append(clauses, fmt.Sprintf("threadID == %s", f.ThreadID))
	}
	if f.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category == %q", f.Category))
	}
	if f.Library != "" {
		clauses = append(clauses, fmt.Sprintf("processImagePath contains %q", f.Library))
	}

	return strings.Join(clauses, " AND ")
}
