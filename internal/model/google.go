// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Conversions to the Google Calendar / Google Tasks payload shapes.
// These are pure transforms; the API clients that send them live
// outside this module.

// ToGoogleEvent renders the event as a Google Calendar API event body.
func (e *CalendarEvent) ToGoogleEvent() map[string]any {
	tz := Timezone(e.Timezone)

	event := map[string]any{
		"summary": e.Title,
		"start": map[string]any{
			"dateTime": e.StartTime.Format(localTimeLayout),
			"timeZone": tz,
		},
		"end": map[string]any{
			"dateTime": e.EffectiveEnd().Format(localTimeLayout),
			"timeZone": tz,
		},
	}

	if e.Description != "" {
		event["description"] = e.Description
	}
	if rule, ok := e.RecurrenceRule(); ok {
		event["recurrence"] = []string{rule}
	}

	return event
}

// ToGoogleTask renders the task as a Google Tasks API task body.
func (t *Task) ToGoogleTask() map[string]any {
	task := map[string]any{
		"title": t.Title,
	}
	if t.Description != "" {
		task["notes"] = t.Description
	}
	if t.DueTime != nil {
		task["due"] = t.DueTime.Format(time.RFC3339)
	}
	return task
}
