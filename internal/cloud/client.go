// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter client for remote LLM inference.
//
// OpenRouter fronts multiple hosted models behind one chat-completions
// API. Availability is credential presence only: a live probe would burn
// quota on every routing decision, and a dead remote surfaces as a
// generate failure anyway.
package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkuznets/sekretar/internal/llm"
)

// Configuration constants for the OpenRouter API.
const (
	// DefaultBaseURL is the base URL for the OpenRouter API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds a generate call.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize caps the response body read to prevent memory
	// exhaustion on a misbehaving endpoint.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Error variables for common OpenRouter failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("OpenRouter API key not configured")

	// ErrAuthFailed indicates an invalid or expired API key.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrInsufficientCredits indicates the account has run out of credits.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// APIError represents an error response from the OpenRouter API.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("OpenRouter error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("OpenRouter error (HTTP %d): %s", e.Status, e.Message)
}

// chatRequest is the request body for /chat/completions.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

// chatResponse is the response body of /chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiErrorResponse is the error envelope OpenRouter returns.
type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is an OpenRouter chat-completions client. Safe for concurrent
// use. Implements llm.Backend.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	siteURL    string
	siteName   string
}

// NewClient creates a client with the given API key (format "sk-or-...").
// An empty key still yields a working client whose Generate calls fail
// with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		// Interactive assistant traffic; one request a second with a
		// small burst protects the paid quota from accidental loops.
		limiter:  rate.NewLimiter(rate.Every(time.Second), 3),
		siteURL:  "https://github.com/mkuznets/sekretar",
		siteName: "sekretar",
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// Available reports whether a credential is configured. This is a pure
// presence check, never a network probe.
func (c *Client) Available(ctx context.Context) bool {
	return c.apiKey != ""
}

// KeyFingerprint returns a short SHA-256 fingerprint of the API key for
// logging. The key itself never appears in any output.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// CHAT
// =============================================================================

// Generate sends a chat request and returns the first choice's content,
// trimmed. Single attempt, fail fast; the interactive caller retries by
// rephrasing, not by hammering a paid API.
func (c *Client) Generate(ctx context.Context, modelID string, messages []llm.Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    modelID,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return "", err
	}

	log.Printf("CLOUD: POST /chat/completions -> %d (%v), model=%s, key=%s",
		resp.StatusCode, time.Since(start), modelID, c.KeyFingerprint())

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("response contains no choices")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// setHeaders sets the headers OpenRouter expects.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

// readResponse reads the body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts HTTP error responses to Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	message := ""
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	var sentinel error
	switch statusCode {
	case http.StatusUnauthorized:
		sentinel = ErrAuthFailed
	case http.StatusPaymentRequired:
		sentinel = ErrInsufficientCredits
	case http.StatusNotFound:
		sentinel = ErrModelNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	}

	switch {
	case sentinel != nil && message != "":
		return fmt.Errorf("%w: %s", sentinel, message)
	case sentinel != nil:
		return sentinel
	case message != "":
		return &APIError{Code: apiErr.Error.Code, Message: message, Status: statusCode}
	default:
		return &APIError{Message: strings.TrimSpace(string(body)), Status: statusCode}
	}
}

var _ llm.Backend = (*Client)(nil)
