// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrNoJSON indicates the model output contains no JSON object at all.
var ErrNoJSON = errors.New("no JSON object found in model output")

// envelope is the fixed response schema every extraction stage demands:
// a discriminator plus the typed payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// extractEnvelope slices the first '{' through the last '}' out of raw
// model output and decodes the result. The slice tolerates leading and
// trailing commentary the model adds despite instructions; the raw text
// is preserved in logs on failure because prompt drift is diagnosed
// from exactly these strings.
func extractEnvelope(raw, wantType string) (json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		log.Printf("INTENT: no JSON in model output: %q", raw)
		return nil, ErrNoJSON
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw[start:end+1]), &env); err != nil {
		log.Printf("INTENT: malformed JSON in model output: %v: %q", err, raw)
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	if env.Type != wantType {
		log.Printf("INTENT: discriminator mismatch: want %q, got %q: %q", wantType, env.Type, raw)
		return nil, fmt.Errorf("unexpected response type %q (want %q)", env.Type, wantType)
	}
	if len(env.Data) == 0 {
		log.Printf("INTENT: envelope missing data field: %q", raw)
		return nil, errors.New("response envelope has no data field")
	}

	return env.Data, nil
}
