// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkuznets/sekretar/internal/model"
)

func localTime(t *testing.T, value string) model.LocalTime {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return model.LocalTime{Time: parsed}
}

func intPtr(v int) *int { return &v }

func TestFormatEvent(t *testing.T) {
	start := localTime(t, "2025-06-10T14:00:00")

	tests := []struct {
		name  string
		event model.CalendarEvent
		want  []string
	}{
		{
			name:  "duration_minutes_only",
			event: model.CalendarEvent{Title: "Встреча", StartTime: start, DurationMinutes: intPtr(90)},
			want:  []string{"Встреча", "10.06.2025 в 14:00", "(1ч 30мин)"},
		},
		{
			name: "end_time",
			event: func() model.CalendarEvent {
				end := localTime(t, "2025-06-10T15:00:00")
				return model.CalendarEvent{Title: "Встреча", StartTime: start, EndTime: &end}
			}(),
			want: []string{"до 15:00"},
		},
		{
			name:  "default_hour",
			event: model.CalendarEvent{Title: "Встреча", StartTime: start},
			want:  []string{"(1ч)"},
		},
		{
			name:  "with_description_and_recurrence",
			event: model.CalendarEvent{Title: "Стендап", StartTime: start, DurationMinutes: intPtr(30), Description: "ежедневный синк", Recurrence: "Daily"},
			want:  []string{"(30мин)", "Описание: ежедневный синк", "Повторяемость: Да"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatEvent(&tt.event)
			for _, fragment := range tt.want {
				assert.Contains(t, out, fragment)
			}
		})
	}
}

func TestFormatNote(t *testing.T) {
	note := &model.Note{
		Title:     "Идея",
		Content:   "Попробовать новый рецепт",
		CreatedAt: "2025-06-09T12:30:00",
		Tags:      []string{"кухня", "идеи"},
	}

	out := FormatNote(note)
	assert.Contains(t, out, "Идея")
	assert.Contains(t, out, "Попробовать новый рецепт")
	assert.Contains(t, out, "09.06.2025 в 12:30")
	assert.Contains(t, out, "#кухня #идеи")
}

func TestFormatNote_UnparseableCreatedAt(t *testing.T) {
	note := &model.Note{Title: "x", Content: "y", CreatedAt: "когда-то"}
	assert.Contains(t, FormatNote(note), "когда-то")
}

func TestFormatTask(t *testing.T) {
	due := localTime(t, "2025-06-10T18:00:00")
	task := &model.Task{Title: "Позвонить маме", DueTime: &due, Description: "не забыть"}

	out := FormatTask(task)
	assert.Contains(t, out, "Позвонить маме")
	assert.Contains(t, out, "10.06.2025 в 18:00")
	assert.Contains(t, out, "не забыть")
}

func TestFormatTask_NoDueTime(t *testing.T) {
	task := &model.Task{Title: "Купить хлеб"}
	assert.Contains(t, FormatTask(task), "без точного времени")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := "очень длинная строка которая не помещается"
	out := truncate(long, 10)
	assert.Len(t, []rune(out), 10)
	assert.Contains(t, out, "…")
}
