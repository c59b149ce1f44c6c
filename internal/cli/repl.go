// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive loop for sekretar.
//
// Commands (during the session):
//   /help, /h      Show available commands
//   /status, /s    Show backend and catalog status
//   /history       Show recently processed requests
//   /quit, /q      Exit
//   Ctrl+C, Ctrl+D Exit
//
// Everything else is treated as a request and fed to the pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/mkuznets/sekretar/internal/config"
	"github.com/mkuznets/sekretar/internal/pipeline"
	"github.com/mkuznets/sekretar/internal/privacy"
	"github.com/mkuznets/sekretar/internal/router"
	"github.com/mkuznets/sekretar/internal/storage"
)

// failureMessage is what the user sees on any pipeline failure. Raw
// internal errors never reach the terminal; they go to the log.
const failureMessage = "Не удалось обработать запрос. Попробуйте сформулировать иначе."

// Input provides readline-like input with persistent history.
type Input struct {
	line        *liner.State
	historyFile string
}

// NewInput creates an Input with history loaded from the config dir.
func NewInput() *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	in := &Input{
		line:        line,
		historyFile: filepath.Join(configDir, "input_history"),
	}
	in.loadHistory()
	return in
}

func (in *Input) loadHistory() {
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

func (in *Input) saveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	in.line.WriteHistory(f)
}

// ReadLine reads one line, recording non-empty input in history.
func (in *Input) ReadLine(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (in *Input) Close() {
	in.saveHistory()
	in.line.Close()
}

// App wires the pipeline to the terminal.
type App struct {
	cfg      *config.Config
	router   *router.Router
	pipeline *pipeline.Pipeline
	history  *storage.History
	out      *os.File
}

// NewApp builds the application around an assembled router. The
// history store may be nil when disabled.
func NewApp(cfg *config.Config, rt *router.Router, history *storage.History) *App {
	return &App{
		cfg:      cfg,
		router:   rt,
		pipeline: pipeline.New(rt),
		history:  history,
		out:      os.Stdout,
	}
}

// Run executes the interactive loop until the user exits.
func (a *App) Run(ctx context.Context) error {
	in := NewInput()
	defer in.Close()

	a.printStatus(ctx)
	fmt.Fprintln(a.out, "Напишите, что записать: событие, задачу или заметку. /help — команды.")

	for {
		input, err := in.ReadLine("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out, "До встречи!")
				return nil
			}
			return err
		}

		text := strings.TrimSpace(input)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := a.handleCommand(ctx, text); quit {
				fmt.Fprintln(a.out, "До встречи!")
				return nil
			}
			continue
		}

		a.handleRequest(ctx, text)
	}
}

// handleCommand dispatches a slash command; returns true to exit.
func (a *App) handleCommand(ctx context.Context, cmd string) bool {
	switch cmd {
	case "/quit", "/q", "/exit":
		return true
	case "/status", "/s":
		a.printStatus(ctx)
	case "/history":
		a.printHistory(ctx)
	case "/help", "/h":
		fmt.Fprintln(a.out, "Команды: /status — состояние моделей, /history — последние запросы, /quit — выход.")
	default:
		fmt.Fprintf(a.out, "Неизвестная команда %s, /help — список команд.\n", cmd)
	}
	return false
}

// handleRequest runs one pipeline pass and renders the outcome.
func (a *App) handleRequest(ctx context.Context, text string) {
	isPrivate := privacy.IsPrivate(text)

	result, err := a.pipeline.Process(ctx, text)
	if err != nil {
		a.recordFailure(ctx, text, isPrivate, err)
		fmt.Fprintln(a.out, failureMessage)
		return
	}

	switch {
	case result.Event != nil:
		fmt.Fprintln(a.out, FormatEvent(result.Event))
		a.recordSuccess(ctx, text, result, isPrivate, result.Event)
	case result.Note != nil:
		fmt.Fprintln(a.out, FormatNote(result.Note))
		a.recordSuccess(ctx, text, result, isPrivate, result.Note)
	case result.Task != nil:
		fmt.Fprintln(a.out, FormatTask(result.Task))
		a.recordSuccess(ctx, text, result, isPrivate, result.Task)
	}
}

func (a *App) recordSuccess(ctx context.Context, text string, result *pipeline.Result, isPrivate bool, obj any) {
	if a.history == nil {
		return
	}
	if _, err := a.history.RecordSuccess(ctx, text, string(result.Label), isPrivate, obj); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}

func (a *App) recordFailure(ctx context.Context, text string, isPrivate bool, cause error) {
	if a.history == nil {
		return
	}
	if _, err := a.history.RecordFailure(ctx, text, isPrivate, cause.Error()); err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
	}
}

// printStatus renders the router's view of its backends.
func (a *App) printStatus(ctx context.Context) {
	s := a.router.Status(ctx)
	fmt.Fprintf(a.out, "Локальная модель: %s (%s)\n", orNone(s.LocalModel), availLabel(s.LocalAvailable))
	fmt.Fprintf(a.out, "Облачная модель: %s (%s)\n", orNone(s.RemoteModel), availLabel(s.RemoteAvailable))
	fmt.Fprintf(a.out, "Моделей в каталоге: %d\n", s.CatalogSize)
	fmt.Fprintf(a.out, "Часовой пояс: %s\n", a.cfg.Timezone)
}

// printHistory renders the last few processed requests.
func (a *App) printHistory(ctx context.Context) {
	if a.history == nil {
		fmt.Fprintln(a.out, "История отключена.")
		return
	}
	records, err := a.history.Recent(ctx, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "История пуста.")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(a.out, "%s  [%s]  %s\n", rec.CreatedAt.Format("02.01 15:04"), rec.Label, truncate(rec.Input, 60))
	}
}

func availLabel(ok bool) string {
	if ok {
		return "доступна"
	}
	return "недоступна"
}

func orNone(s string) string {
	if s == "" {
		return "не настроена"
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
