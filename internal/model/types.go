// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the domain objects produced by the extraction
// pipeline: CalendarEvent, Note, and Task.
//
// All three are validated data holders. They are constructed once per
// successful extraction, owned by the pipeline call that created them,
// and never mutated afterwards. Derived values (effective end time,
// machine-readable recurrence rule, Google API payloads) are pure
// read-time computations.
package model

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultTimezone is used when neither the model output nor the
// environment specifies one.
const DefaultTimezone = "Europe/Moscow"

// localTimeLayout is the timestamp format the extraction prompts request:
// local wall-clock time with no zone designator.
const localTimeLayout = "2006-01-02T15:04:05"

// Timezone returns the configured timezone name, falling back to
// SEKRETAR_TZ and then to DefaultTimezone.
func Timezone(configured string) string {
	if configured != "" {
		return configured
	}
	if tz := os.Getenv("SEKRETAR_TZ"); tz != "" {
		return tz
	}
	return DefaultTimezone
}

// =============================================================================
// LOCAL TIME
// =============================================================================

// LocalTime is a wall-clock timestamp without a zone, as emitted by the
// extraction stages ("2006-01-02T15:04:05"). The zone is tracked
// separately on the owning object.
type LocalTime struct {
	time.Time
}

// NewLocalTime wraps a time.Time as a LocalTime.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// UnmarshalJSON parses the zoneless layout, tolerating a trailing zone
// designator if the model adds one anyway.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return errors.New("empty timestamp")
	}
	if parsed, err := time.Parse(localTimeLayout, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON renders the zoneless layout.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(localTimeLayout) + `"`), nil
}

// String returns the zoneless layout.
func (t LocalTime) String() string {
	return t.Time.Format(localTimeLayout)
}

// =============================================================================
// CALENDAR EVENT
// =============================================================================

// CalendarEvent is a calendar entry extracted from user text.
//
// The extraction prompt guarantees that EndTime and DurationMinutes are
// not both meaningfully set; if the model violates that anyway, EndTime
// wins (see EffectiveEnd).
type CalendarEvent struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartTime       LocalTime  `json:"start_time"`
	EndTime         *LocalTime `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Recurrence      string     `json:"recurrence,omitempty"`
	Timezone        string     `json:"timezone,omitempty"`
}

// Validate checks the structural invariants of an extracted event.
func (e *CalendarEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("calendar event: title is required")
	}
	if e.StartTime.IsZero() {
		return errors.New("calendar event: start_time is required")
	}
	if e.DurationMinutes != nil && *e.DurationMinutes <= 0 {
		return fmt.Errorf("calendar event: duration_minutes must be positive, got %d", *e.DurationMinutes)
	}
	return nil
}

// EffectiveEnd computes the end timestamp a consumer should use.
// EndTime wins over DurationMinutes when both are set; with neither,
// the event defaults to one hour.
func (e *CalendarEvent) EffectiveEnd() time.Time {
	if e.EndTime != nil {
		return e.EndTime.Time
	}
	if e.DurationMinutes != nil {
		return e.StartTime.Add(time.Duration(*e.DurationMinutes) * time.Minute)
	}
	return e.StartTime.Add(time.Hour)
}

// =============================================================================
// NOTE
// =============================================================================

// maxNoteTags caps the tag list; extra tags are dropped, not rejected.
const maxNoteTags = 3

// Note is a free-form note extracted from user text.
//
// The content-fidelity rules (preserve facts, order, and length of the
// source; orthographic fixes only) are a contract on the extraction
// prompt and cannot be checked structurally.
type Note struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate checks the structural invariants of an extracted note and
// normalizes the tag list (lowercase, at most three).
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("note: title is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return errors.New("note: content is required")
	}
	if len(n.Tags) > maxNoteTags {
		n.Tags = n.Tags[:maxNoteTags]
	}
	for i, tag := range n.Tags {
		n.Tags[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	return nil
}

// =============================================================================
// TASK
// =============================================================================

// Task is a to-do item extracted from user text.
type Task struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DueTime         *LocalTime `json:"due_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Recurrence      string     `json:"recurrence,omitempty"`
	Timezone        string     `json:"timezone,omitempty"`
}

// Validate checks the structural invariants of an extracted task.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("task: title is required")
	}
	return nil
}

// ToCalendarEvent converts the task into an event for confirmation
// flows. DueTime becomes the start when present; otherwise the event
// starts now. Duration carries through unchanged.
func (t *Task) ToCalendarEvent(now time.Time) *CalendarEvent {
	start := NewLocalTime(now)
	if t.DueTime != nil {
		start = *t.DueTime
	}
	return &CalendarEvent{
		Title:           t.Title,
		Description:     t.Description,
		StartTime:       start,
		DurationMinutes: t.DurationMinutes,
		Recurrence:      t.Recurrence,
		Timezone:        t.Timezone,
	}
}
