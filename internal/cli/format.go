// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the interactive terminal front end: a readline
// loop that feeds the request pipeline and renders its results.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkuznets/sekretar/internal/model"
)

// timeDisplay is the layout confirmations use for timestamps.
const timeDisplay = "02.01.2006 в 15:04"

// FormatEvent renders a calendar event confirmation.
func FormatEvent(event *model.CalendarEvent) string {
	var b strings.Builder

	b.WriteString("📅 Подтверждение события\n\n")
	fmt.Fprintf(&b, "📝 Название: %s\n", event.Title)
	fmt.Fprintf(&b, "⏰ Время: %s %s", event.StartTime.Format(timeDisplay), durationLabel(event))

	if event.Description != "" {
		fmt.Fprintf(&b, "\n📋 Описание: %s", event.Description)
	}
	if event.Recurrence != "" {
		b.WriteString("\n🔄 Повторяемость: Да")
	}

	b.WriteString("\n\n✅ Подтвердить создание события?")
	return b.String()
}

// durationLabel describes how long the event lasts.
func durationLabel(event *model.CalendarEvent) string {
	switch {
	case event.EndTime != nil:
		return fmt.Sprintf("до %s", event.EndTime.Format("15:04"))
	case event.DurationMinutes != nil:
		hours := *event.DurationMinutes / 60
		minutes := *event.DurationMinutes % 60
		switch {
		case hours > 0 && minutes > 0:
			return fmt.Sprintf("(%dч %dмин)", hours, minutes)
		case hours > 0:
			return fmt.Sprintf("(%dч)", hours)
		default:
			return fmt.Sprintf("(%dмин)", minutes)
		}
	default:
		return "(1ч)"
	}
}

// FormatNote renders a saved note.
func FormatNote(note *model.Note) string {
	createdStr := note.CreatedAt
	if created, err := time.Parse("2006-01-02T15:04:05", note.CreatedAt); err == nil {
		createdStr = created.Format(timeDisplay)
	}

	var b strings.Builder
	b.WriteString("📝 Ваша заметка\n\n")
	fmt.Fprintf(&b, "%s\n\n%s\n\n", note.Title, note.Content)
	fmt.Fprintf(&b, "📅 Создано: %s", createdStr)

	if len(note.Tags) > 0 {
		tags := make([]string, len(note.Tags))
		for i, tag := range note.Tags {
			tags[i] = "#" + tag
		}
		fmt.Fprintf(&b, "\n🏷️ Теги: %s", strings.Join(tags, " "))
	}

	return b.String()
}

// FormatTask renders a task confirmation.
func FormatTask(task *model.Task) string {
	dueStr := "без точного времени"
	if task.DueTime != nil {
		dueStr = task.DueTime.Format(timeDisplay)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 Задача: %s\n", task.Title)
	fmt.Fprintf(&b, "⏰ Срок: %s", dueStr)
	if task.Description != "" {
		fmt.Fprintf(&b, "\n📋 %s", task.Description)
	}
	b.WriteString("\n\n✅ Создать задачу?")
	return b.String()
}
