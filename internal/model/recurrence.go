// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"log"
	"strings"
)

// Recurrence phrases arrive from the extraction prompt's constrained
// vocabulary, not from the raw user text:
//
//	"Daily"
//	"Weekly on [day of week]"
//	"Monthly on the first [day of week]"
//	"Annually on [month day]"
//	"Every weekday (Monday to Friday)"
//
// ParseRecurrenceRule maps them to RFC 5545 RRULE strings. An
// unrecognized phrase yields no rule: recurrence is an enhancement, and
// dropping it must not fail the whole event.

// weekdayCodes maps English day names to their two-letter RRULE codes,
// checked in Monday-to-Sunday order.
var weekdayCodes = []struct {
	name string
	code string
}{
	{"monday", "MO"},
	{"tuesday", "TU"},
	{"wednesday", "WE"},
	{"thursday", "TH"},
	{"friday", "FR"},
	{"saturday", "SA"},
	{"sunday", "SU"},
}

// ParseRecurrenceRule converts a recurrence phrase into an RRULE string.
// Matching is case-insensitive and evaluated in a fixed priority order.
// The second return value reports whether a rule was produced; callers
// must treat false as "no recurrence", never as an error.
func ParseRecurrenceRule(phrase string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return "", false
	}

	switch {
	case p == "daily":
		return "RRULE:FREQ=DAILY", true

	case strings.HasPrefix(p, "weekly on"):
		for _, day := range weekdayCodes {
			if strings.Contains(p, day.name) {
				return "RRULE:FREQ=WEEKLY;BYDAY=" + day.code, true
			}
		}
		log.Printf("RECURRENCE: weekly phrase without a weekday: %q", phrase)
		return "", false

	case strings.HasPrefix(p, "monthly"):
		// Day-of-month/ordinal detail is not parsed further.
		return "RRULE:FREQ=MONTHLY", true

	case strings.HasPrefix(p, "annually"):
		return "RRULE:FREQ=YEARLY", true

	case strings.Contains(p, "weekday") && strings.Contains(p, "monday to friday"):
		return "RRULE:FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR", true
	}

	log.Printf("RECURRENCE: unparseable phrase dropped: %q", phrase)
	return "", false
}

// RecurrenceRule returns the machine-readable repeat rule for the event,
// if its recurrence phrase is recognized.
func (e *CalendarEvent) RecurrenceRule() (string, bool) {
	return ParseRecurrenceRule(e.Recurrence)
}
