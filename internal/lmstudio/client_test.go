// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lmstudio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznets/sekretar/internal/llm"
)

func newTestClient(baseURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:      baseURL,
		Timeout:      5 * time.Second,
		ProbeTimeout: 2 * time.Second,
	})
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"server_up", http.StatusOK, true},
		{"server_error", http.StatusInternalServerError, false},
		{"not_found", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := newTestClient(server.URL)
			assert.Equal(t, tt.want, c.Available(context.Background()))
			assert.Equal(t, "/v1/models", gotPath)
		})
	}
}

func TestAvailable_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL)
	assert.False(t, c.Available(context.Background()))
}

func TestGenerate_Success(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"\n{\"type\":\"task\"}\n"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	out, err := c.Generate(context.Background(), "qwen2.5-7b-instruct", []llm.Message{
		llm.NewSystemMessage("extract"),
		llm.NewUserMessage("remind me to call mom"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"task"}`, out, "content must be trimmed")
	assert.Contains(t, string(gotBody), `"model":"qwen2.5-7b-instruct"`)
	assert.Contains(t, string(gotBody), `"stream":false`)
}

func TestGenerate_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL)
	_, err := c.Generate(context.Background(), "m", []llm.Message{llm.NewUserMessage("hi")})
	require.Error(t, err)
	assert.True(t, IsNotRunning(err))
}

func TestGenerate_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Generate(context.Background(), "m", []llm.Message{llm.NewUserMessage("hi")})
	require.Error(t, err)
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
}

func TestGenerate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Generate(context.Background(), "m", []llm.Message{llm.NewUserMessage("hi")})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, "http://127.0.0.1:1234", c.BaseURL())

	c = NewClientWithConfig(&ClientConfig{BaseURL: "http://localhost:9999/"})
	assert.Equal(t, "http://localhost:9999", c.BaseURL(), "trailing slash must be stripped")

	c = NewClientWithConfig(nil)
	assert.Equal(t, "http://127.0.0.1:1234", c.BaseURL())
}
