// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline runs the two-stage classify-then-extract protocol.
//
// A request moves Classifying -> Extracting -> Done, or drops to
// Failed at either stage. Single pass, no retries: a failed attempt
// surfaces immediately and the user resends reworded input, which
// beats retrying a model that may deterministically fail the same way.
//
// The pipeline never panics toward its caller: every outcome is a
// definite Result or a definite error with a reason fit for a log line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mkuznets/sekretar/internal/intent"
	"github.com/mkuznets/sekretar/internal/model"
	"github.com/mkuznets/sekretar/internal/privacy"
)

// ErrUnclassified indicates the classification stage produced
// "unknown". Policy decision: an unclassifiable message fails outright
// instead of being silently reinterpreted as a note, so the user learns
// the assistant did not understand rather than finding a garbage note
// later.
var ErrUnclassified = errors.New("could not classify request")

// Result is the tagged outcome of a pipeline run. Exactly one of
// Event, Note, Task is non-nil, matching Label.
type Result struct {
	Label intent.Label
	Event *model.CalendarEvent
	Note  *model.Note
	Task  *model.Task
}

// Pipeline orchestrates classification and extraction. Stateless
// between calls; safe for concurrent use.
type Pipeline struct {
	classifier *intent.Classifier
	calendar   *intent.CalendarExtractor
	note       *intent.NoteExtractor
	task       *intent.TaskExtractor

	// now is the clock; swapped in tests.
	now func() time.Time
}

// New creates a pipeline over the given router.
func New(gen intent.Generator) *Pipeline {
	return &Pipeline{
		classifier: intent.NewClassifier(gen),
		calendar:   intent.NewCalendarExtractor(gen),
		note:       intent.NewNoteExtractor(gen),
		task:       intent.NewTaskExtractor(gen),
		now:        time.Now,
	}
}

// WithClock overrides the pipeline's clock.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Process runs the full two-stage protocol on raw user text.
func (p *Pipeline) Process(ctx context.Context, text string) (*Result, error) {
	label, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	if label == intent.LabelUnknown {
		log.Printf("PIPELINE: unknown request type: %q", text)
		return nil, ErrUnclassified
	}

	// The extraction privacy decision looks at the original text, not
	// the enhanced message: the injected date line must not tip the
	// classification toward public.
	isPrivate := privacy.IsPrivate(text)
	enhanced := p.enhance(text)

	switch label {
	case intent.LabelCalendarEvent:
		event, err := p.calendar.Extract(ctx, enhanced, isPrivate)
		if err != nil {
			return nil, err
		}
		return &Result{Label: label, Event: event}, nil

	case intent.LabelNote:
		note, err := p.note.Extract(ctx, enhanced, isPrivate)
		if err != nil {
			return nil, err
		}
		return &Result{Label: label, Note: note}, nil

	case intent.LabelTask:
		task, err := p.task.Extract(ctx, enhanced, isPrivate)
		if err != nil {
			return nil, err
		}
		return &Result{Label: label, Task: task}, nil

	default:
		return nil, fmt.Errorf("unexpected classification %q", label)
	}
}

// enhance wraps the user text with the current date and time. The
// model has no wall clock, and relative phrases like "tomorrow at two"
// are unresolvable without one.
func (p *Pipeline) enhance(text string) string {
	stamp := p.now().Format("2006-01-02 15:04:05 (Monday)")
	return fmt.Sprintf("## Input Data\n- Current date: %s\n- User query: %s\n", stamp, text)
}
