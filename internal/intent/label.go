// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent turns raw model output into typed results: a
// classification label, or an extracted domain object.
//
// Each stage pairs a fixed instruction prompt with a parse function —
// a closed set of variants, no inheritance. Model output is untrusted
// text: every parse tolerates the commentary and formatting drift a
// model adds despite instructions.
package intent

import (
	"log"
	"strings"
)

// Label is the coarse category assigned to a user message.
type Label string

// The closed label vocabulary. Anything outside it collapses to
// LabelUnknown.
const (
	LabelCalendarEvent Label = "calendar_event"
	LabelNote          Label = "note"
	LabelTask          Label = "task"
	LabelUnknown       Label = "unknown"
)

// ParseLabel normalizes raw model output into a Label. Trims and
// lower-cases; any text outside the closed vocabulary becomes
// LabelUnknown.
func ParseLabel(raw string) Label {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch Label(normalized) {
	case LabelCalendarEvent, LabelNote, LabelTask, LabelUnknown:
		return Label(normalized)
	default:
		log.Printf("INTENT: invalid classification %q, treating as unknown", normalized)
		return LabelUnknown
	}
}
