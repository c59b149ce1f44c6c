// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lmstudio provides the HTTP client for a local OpenAI-compatible
// model server (LM Studio and friends).
//
// The server runs on localhost over plain HTTP; availability is checked
// with a short synchronous probe of the models-listing endpoint on every
// routing decision. No caching: catching a backend that just went down
// matters more than saving a 5s-bounded localhost round-trip at
// interactive request rates.
package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mkuznets/sekretar/internal/llm"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the local model client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "local model server is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the local client.
type ClientConfig struct {
	// BaseURL is the server base URL (default: http://127.0.0.1:1234).
	// Explicit IPv4 avoids IPv6 localhost resolution issues on Windows.
	BaseURL string

	// Timeout bounds a generate call (default: 120s; local models are slow).
	Timeout time.Duration

	// ProbeTimeout bounds the availability probe (default: 5s).
	ProbeTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:1234",
		Timeout:      120 * time.Second,
		ProbeTimeout: 5 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to a local OpenAI-compatible chat server. Safe for
// concurrent use. Implements llm.Backend.
type Client struct {
	config      *ClientConfig
	httpClient  *http.Client
	probeClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration,
// filling defaults for any zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:1234"
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 5 * time.Second
	}

	return &Client{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		probeClient: &http.Client{Timeout: config.ProbeTimeout},
	}
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// Available probes the models-listing endpoint and reports success
// purely from the HTTP status. Timeouts, refused connections, and DNS
// failures all map to false.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// =============================================================================
// CHAT
// =============================================================================

// chatRequest is the request body for /v1/chat/completions.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

// chatResponse is the response body of /v1/chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends a non-streaming chat request and returns the first
// choice's content, trimmed. Single attempt; retries, if any, belong to
// the router.
func (c *Client) Generate(ctx context.Context, modelID string, messages []llm.Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    modelID,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "chat request failed: " + resp.Status,
		}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if len(result.Choices) == 0 {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "response contains no choices"}
	}

	log.Printf("LMSTUDIO: response received, model=%s", modelID)
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// IsNotRunning checks if an error indicates the local server is down.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

var _ llm.Backend = (*Client)(nil)

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}
