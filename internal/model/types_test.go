// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocalTime(t *testing.T, s string) LocalTime {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	require.NoError(t, err)
	return NewLocalTime(parsed)
}

func intPtr(n int) *int { return &n }

// TestLocalTimeUnmarshal covers the zoneless layout and the RFC 3339
// fallback for models that add a zone anyway.
func TestLocalTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "zoneless", input: `"2025-01-15T14:00:00"`},
		{name: "rfc3339_fallback", input: `"2025-01-15T14:00:00Z"`},
		{name: "garbage", input: `"tomorrow at noon"`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lt LocalTime
			err := json.Unmarshal([]byte(tt.input), &lt)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 14, lt.Hour())
			}
		})
	}
}

// TestCalendarEventValidate verifies the structural invariants.
func TestCalendarEventValidate(t *testing.T) {
	valid := &CalendarEvent{
		Title:     "Standup",
		StartTime: mustLocalTime(t, "2025-03-03T10:00:00"),
	}
	assert.NoError(t, valid.Validate())

	noTitle := &CalendarEvent{StartTime: valid.StartTime}
	assert.Error(t, noTitle.Validate())

	noStart := &CalendarEvent{Title: "Standup"}
	assert.Error(t, noStart.Validate())

	badDuration := &CalendarEvent{
		Title:           "Standup",
		StartTime:       valid.StartTime,
		DurationMinutes: intPtr(-15),
	}
	assert.Error(t, badDuration.Validate())
}

// TestEffectiveEnd covers the end-time precedence: explicit end wins,
// then duration, then the one-hour default.
func TestEffectiveEnd(t *testing.T) {
	start := mustLocalTime(t, "2025-03-03T10:00:00")
	end := mustLocalTime(t, "2025-03-03T10:45:00")

	tests := []struct {
		name     string
		event    CalendarEvent
		expected string
	}{
		{
			name:     "explicit_end",
			event:    CalendarEvent{Title: "a", StartTime: start, EndTime: &end},
			expected: "2025-03-03T10:45:00",
		},
		{
			name: "end_wins_over_duration",
			event: CalendarEvent{
				Title: "a", StartTime: start, EndTime: &end,
				DurationMinutes: intPtr(90),
			},
			expected: "2025-03-03T10:45:00",
		},
		{
			name:     "duration",
			event:    CalendarEvent{Title: "a", StartTime: start, DurationMinutes: intPtr(30)},
			expected: "2025-03-03T10:30:00",
		},
		{
			name:     "default_one_hour",
			event:    CalendarEvent{Title: "a", StartTime: start},
			expected: "2025-03-03T11:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.EffectiveEnd().Format("2006-01-02T15:04:05"))
		})
	}
}

// TestNoteValidate verifies required fields and tag normalization.
func TestNoteValidate(t *testing.T) {
	note := &Note{
		Title:     "Shopping",
		Content:   "milk, bread",
		CreatedAt: "2025-01-01T00:00:00",
		Tags:      []string{"Food", "home", "list", "extra"},
	}
	require.NoError(t, note.Validate())
	assert.Equal(t, []string{"food", "home", "list"}, note.Tags)

	assert.Error(t, (&Note{Content: "x"}).Validate())
	assert.Error(t, (&Note{Title: "x"}).Validate())
}

// TestTaskToCalendarEvent verifies the confirmation-flow conversion.
func TestTaskToCalendarEvent(t *testing.T) {
	due := mustLocalTime(t, "2025-04-01T09:00:00")
	task := &Task{
		Title:           "Pay rent",
		Description:     "bank transfer",
		DueTime:         &due,
		DurationMinutes: intPtr(15),
		Recurrence:      "Monthly on the first day",
	}

	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	event := task.ToCalendarEvent(now)
	assert.Equal(t, "Pay rent", event.Title)
	assert.Equal(t, due.Time, event.StartTime.Time)
	assert.Equal(t, 15, *event.DurationMinutes)
	assert.Equal(t, task.Recurrence, event.Recurrence)

	// Without a due time the event starts now.
	event = (&Task{Title: "Call mom"}).ToCalendarEvent(now)
	assert.Equal(t, now, event.StartTime.Time)
}

// TestToGoogleEvent verifies the Calendar API payload shape.
func TestToGoogleEvent(t *testing.T) {
	event := &CalendarEvent{
		Title:           "Team meeting",
		Description:     "weekly sync",
		StartTime:       mustLocalTime(t, "2025-03-03T14:00:00"),
		DurationMinutes: intPtr(60),
		Recurrence:      "Weekly on Monday",
		Timezone:        "Europe/Moscow",
	}

	payload := event.ToGoogleEvent()
	assert.Equal(t, "Team meeting", payload["summary"])
	assert.Equal(t, "weekly sync", payload["description"])

	start := payload["start"].(map[string]any)
	assert.Equal(t, "2025-03-03T14:00:00", start["dateTime"])
	assert.Equal(t, "Europe/Moscow", start["timeZone"])

	end := payload["end"].(map[string]any)
	assert.Equal(t, "2025-03-03T15:00:00", end["dateTime"])

	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, payload["recurrence"])
}

// TestToGoogleTask verifies the Tasks API payload shape.
func TestToGoogleTask(t *testing.T) {
	due := mustLocalTime(t, "2025-04-01T09:00:00")
	task := &Task{Title: "Pay rent", Description: "bank transfer", DueTime: &due}

	payload := task.ToGoogleTask()
	assert.Equal(t, "Pay rent", payload["title"])
	assert.Equal(t, "bank transfer", payload["notes"])
	assert.Contains(t, payload["due"], "2025-04-01T09:00:00")

	payload = (&Task{Title: "Call"}).ToGoogleTask()
	_, hasDue := payload["due"]
	assert.False(t, hasDue)
}
