// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the backend contract shared by the local and
// remote model clients.
package llm

import "context"

// Message roles understood by the chat-completion endpoints.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single role-tagged chat message. Messages are built per
// request and never persisted.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Backend is a language-model execution target.
//
// Generate makes a single attempt: no retries inside the backend.
// Available must be cheap; implementations either probe a local
// endpoint with a short bound or check credential presence without
// touching the network.
type Backend interface {
	// Generate sends the messages to the given model and returns the
	// trimmed response text.
	Generate(ctx context.Context, modelID string, messages []Message) (string, error)

	// Available reports whether the backend can currently serve a
	// Generate call.
	Available(ctx context.Context) bool
}
