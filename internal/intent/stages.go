// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mkuznets/sekretar/internal/model"
)

// Generator is the slice of the router the stages need.
type Generator interface {
	Generate(ctx context.Context, text, systemPrompt string, isPrivate *bool) (string, error)
}

// classificationPrompt instructs the model to answer with exactly one
// label word.
const classificationPrompt = `
Classify text into one of these categories:

- **calendar_event**: mentions specific time, date, meetings, appointments, reminders with time constraints
- **note**: general information to remember, ideas, thoughts, lists, anything without specific time
- **task**: short task/reminder that the user wants to schedule or be reminded about (could have due date/time)
- **unknown**: unclear or ambiguous requests

Respond with ONLY one word: calendar_event, task, note, or unknown
`

// calendarPrompt instructs the model to extract event details as JSON.
const calendarPrompt = `
You are a calendar event extractor. The user wants to create a calendar event. Extract event details and return ONLY a JSON response.

Return exactly this JSON structure:
{
  "type": "calendar_event",
  "data": {
    "title": "string",
    "description": "string or null",
    "start_time": "YYYY-MM-DDTHH:MM:SS",
    "end_time": "YYYY-MM-DDTHH:MM:SS or null",
    "duration_minutes": "number or null",
    "recurrence": "string or null"
  }
}

## Rules:
1. Assume all times are in the user's local time zone
2. If **end time** is specified → fill ` + "`end_time`" + `, set ` + "`duration_minutes`" + ` = null
3. If **duration** is specified → fill ` + "`duration_minutes`" + `, set ` + "`end_time`" + ` = null
4. If **neither** is specified → set ` + "`duration_minutes`" + ` = 60, ` + "`end_time`" + ` = null

## Recurrence values:
- ` + "`null`" + ` - one-time event
- ` + "`\"Daily\"`" + ` - every day
- ` + "`\"Weekly on [day of week]\"`" + ` - weekly
- ` + "`\"Monthly on the first [day of week]\"`" + ` - monthly
- ` + "`\"Annually on [month day]\"`" + ` - yearly
- ` + "`\"Every weekday (Monday to Friday)\"`" + ` - workdays

For dates without year, assume current year or next occurrence if date has passed.
`

// notePrompt instructs the model to format the text as a note. The
// prompt is in Russian because the assistant's primary audience writes
// Russian notes; the content rules forbid the model from changing
// facts, order, or length of the source text.
const notePrompt = `
Ты — форматтер заметок. Пользователь хочет сохранить заметку. Сформируй ответ строго в виде JSON и ничего больше.

Верни ровно такую JSON-структуру:
{
  "type": "note",
  "data": {
    "title": "string",
    "content": "string",
    "created_at": "YYYY-MM-DDTHH:MM:SS",
    "tags": ["string", "string"] or null
  }
}

Правила для "content":
1) Не изменяй смысл, факты, порядок и объём информации. Ничего не добавляй и не удаляй.
2) Исправляй только:
   - заглавные буквы в начале предложений и имен собственных,
   - знаки препинания,
   - опечатки и орфографические ошибки в русских словах.
3) Не перефразируй, не сокращай и не расширяй формулировки.
4) Сохраняй исходные абзацы, переносы строк, списки, числа, даты, ссылки, эмодзи и форматирование (кроме исправлений из п.2).
5) Фрагменты на других языках не переводить; менять только пунктуацию вокруг них при необходимости.
6) Нормализуй пробелы: один пробел между словами, без пробелов перед знаками препинания, ставь пробел после знаков, где это требуется.

Правила для "title":
- Короткий и описательный (3–7 слов).
- Не содержит новых фактов, только отражает суть заметки.

Правила для "tags":
- Извлекай релевантные теги при наличии (не более 3); иначе null.
- Теги — короткие существительные в нижнем регистре, без символов "#", без повторов.

Правила для "created_at":
- Используй текущие локальные дату и время в формате YYYY-MM-DDTHH:MM:SS.

Требования к ответу:
- Верни ТОЛЬКО JSON, без текста, пояснений, кода или бэктиков.
- Строгий JSON: двойные кавычки, без лишних запятых; экранируй спецсимволы.
`

// taskPrompt instructs the model to extract a task/reminder as JSON.
const taskPrompt = `
You are a task extractor. The user wants to create a task/reminder that should be added to calendar as a task or event.

Return exactly this JSON structure:
{
  "type": "task",
  "data": {
    "title": "string",
    "description": "string or null",
    "due_time": "YYYY-MM-DDTHH:MM:SS or null",
    "duration_minutes": "number or null",
    "recurrence": "string or null"
  }
}

Rules:
1. If due_time is provided use it as start_time. If duration provided, treat as estimated duration.
2. If neither due_time nor duration provided, set due_time to null.
`

// =============================================================================
// CLASSIFICATION STAGE
// =============================================================================

// Classifier assigns a Label to raw user text.
type Classifier struct {
	gen Generator
}

// NewClassifier creates a classification stage over the given router.
func NewClassifier(gen Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Classify runs the classification prompt and parses the result.
// Classification is ALWAYS routed privately: the text must be examined
// before any routing decision about the text itself is meaningful, so
// it cannot leave the machine at this stage. A router failure yields
// LabelUnknown and an error so the caller can distinguish "model said
// unknown" from "model unreachable."
func (c *Classifier) Classify(ctx context.Context, text string) (Label, error) {
	private := true
	raw, err := c.gen.Generate(ctx, text, classificationPrompt, &private)
	if err != nil {
		return LabelUnknown, fmt.Errorf("classification: %w", err)
	}

	label := ParseLabel(raw)
	log.Printf("INTENT: classified as %s", label)
	return label, nil
}

// =============================================================================
// EXTRACTION STAGES
// =============================================================================

// CalendarExtractor turns classified text into a CalendarEvent.
type CalendarExtractor struct {
	gen Generator
}

// NewCalendarExtractor creates the calendar extraction stage.
func NewCalendarExtractor(gen Generator) *CalendarExtractor {
	return &CalendarExtractor{gen: gen}
}

// Extract runs the calendar prompt and builds a validated event.
func (e *CalendarExtractor) Extract(ctx context.Context, enhancedText string, isPrivate bool) (*model.CalendarEvent, error) {
	data, err := generateEnvelope(ctx, e.gen, enhancedText, calendarPrompt, "calendar_event", isPrivate)
	if err != nil {
		return nil, err
	}

	var event model.CalendarEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("INTENT: calendar data decode failed: %v: %s", err, data)
		return nil, fmt.Errorf("decode calendar event: %w", err)
	}
	if err := event.Validate(); err != nil {
		log.Printf("INTENT: calendar event invalid: %v: %s", err, data)
		return nil, fmt.Errorf("invalid calendar event: %w", err)
	}
	return &event, nil
}

// NoteExtractor turns classified text into a Note.
type NoteExtractor struct {
	gen Generator
}

// NewNoteExtractor creates the note extraction stage.
func NewNoteExtractor(gen Generator) *NoteExtractor {
	return &NoteExtractor{gen: gen}
}

// Extract runs the note prompt and builds a validated note.
func (e *NoteExtractor) Extract(ctx context.Context, enhancedText string, isPrivate bool) (*model.Note, error) {
	data, err := generateEnvelope(ctx, e.gen, enhancedText, notePrompt, "note", isPrivate)
	if err != nil {
		return nil, err
	}

	var note model.Note
	if err := json.Unmarshal(data, &note); err != nil {
		log.Printf("INTENT: note data decode failed: %v: %s", err, data)
		return nil, fmt.Errorf("decode note: %w", err)
	}
	if err := note.Validate(); err != nil {
		log.Printf("INTENT: note invalid: %v: %s", err, data)
		return nil, fmt.Errorf("invalid note: %w", err)
	}
	return &note, nil
}

// TaskExtractor turns classified text into a Task.
type TaskExtractor struct {
	gen Generator
}

// NewTaskExtractor creates the task extraction stage.
func NewTaskExtractor(gen Generator) *TaskExtractor {
	return &TaskExtractor{gen: gen}
}

// Extract runs the task prompt and builds a validated task.
func (e *TaskExtractor) Extract(ctx context.Context, enhancedText string, isPrivate bool) (*model.Task, error) {
	data, err := generateEnvelope(ctx, e.gen, enhancedText, taskPrompt, "task", isPrivate)
	if err != nil {
		return nil, err
	}

	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		log.Printf("INTENT: task data decode failed: %v: %s", err, data)
		return nil, fmt.Errorf("decode task: %w", err)
	}
	if err := task.Validate(); err != nil {
		log.Printf("INTENT: task invalid: %v: %s", err, data)
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	return &task, nil
}

// generateEnvelope runs one extraction round-trip: route the prompt,
// slice the JSON, check the discriminator.
func generateEnvelope(ctx context.Context, gen Generator, text, prompt, wantType string, isPrivate bool) (json.RawMessage, error) {
	raw, err := gen.Generate(ctx, text, prompt, &isPrivate)
	if err != nil {
		return nil, fmt.Errorf("%s extraction: %w", wantType, err)
	}
	return extractEnvelope(raw, wantType)
}
