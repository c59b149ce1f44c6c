// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists processed request history.
//
// Every pipeline run, successful or not, leaves one row: what the user
// asked, how it was classified, what came out. The history is for the
// operator's own diagnostics (prompt drift shows up here first) and
// never feeds back into routing.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("history record not found")

// schema is the history database schema.
const schema = `
CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,  -- Unix timestamp
    input TEXT NOT NULL,
    label TEXT NOT NULL,          -- calendar_event, note, task, or failed
    private INTEGER NOT NULL,     -- 0/1
    result TEXT,                  -- JSON of the produced domain object, NULL on failure
    reason TEXT                   -- failure reason, NULL on success
);

CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
CREATE INDEX IF NOT EXISTS idx_requests_label ON requests(label);
`

// Record is one processed request.
type Record struct {
	ID        string
	CreatedAt time.Time
	Input     string
	Label     string
	Private   bool
	Result    json.RawMessage
	Reason    string
}

// History is a sqlite-backed request log. Safe for concurrent use; the
// database handle serializes access.
type History struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordSuccess logs a successfully processed request. The result is
// any JSON-marshalable domain object.
func (h *History) RecordSuccess(ctx context.Context, input, label string, private bool, result any) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.NewString()
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO requests (id, created_at, input, label, private, result, reason)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		id, time.Now().Unix(), input, label, boolToInt(private), string(data))
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return id, nil
}

// RecordFailure logs a failed request with its reason.
func (h *History) RecordFailure(ctx context.Context, input string, private bool, reason string) (string, error) {
	id := uuid.NewString()
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO requests (id, created_at, input, label, private, result, reason)
		 VALUES (?, ?, ?, 'failed', ?, NULL, ?)`,
		id, time.Now().Unix(), input, boolToInt(private), reason)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return id, nil
}

// Get returns one record by ID.
func (h *History) Get(ctx context.Context, id string) (*Record, error) {
	row := h.db.QueryRowContext(ctx,
		`SELECT id, created_at, input, label, private, result, reason
		 FROM requests WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Recent returns the newest records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, created_at, input, label, private, result, reason
		 FROM requests ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByLabel returns how many records exist per label.
func (h *History) CountByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT label, COUNT(*) FROM requests GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var createdAt int64
	var private int
	var result, reason sql.NullString

	if err := s.Scan(&rec.ID, &createdAt, &rec.Input, &rec.Label, &private, &result, &reason); err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.Private = private != 0
	if result.Valid {
		rec.Result = json.RawMessage(result.String)
	}
	rec.Reason = reason.String
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
