package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLM_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, req.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "usr"}, req.Messages[1])
		assert.Nil(t, req.Temperature)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse{
			ID:      "chatcmpl-123",
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "Hello"}}},
		})
	}))
	defer server.Close()

	llm := NewLLM(LLMConfig{BaseURL: server.URL + "/v1/", APIKey: "test-key"})
	out, err := llm.Complete(context.Background(), "sys", "usr", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

func TestLLM_Temperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.2, *req.Temperature, 1e-9)
		_ = json.NewEncoder(w).Encode(chatResponse{Choices: []chatChoice{{Message: chatMessage{Content: "ok"}}}})
	}))
	defer server.Close()

	temp := 0.2
	llm := NewLLM(LLMConfig{BaseURL: server.URL, Temperature: &temp})
	_, err := llm.Complete(context.Background(), "s", "u", "m")
	require.NoError(t, err)
}

func TestLLM_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	llm := NewLLM(LLMConfig{BaseURL: server.URL})
	_, err := llm.Complete(context.Background(), "s", "u", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestLLM_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	llm := NewLLM(LLMConfig{BaseURL: server.URL})
	_, err := llm.Complete(context.Background(), "s", "u", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestLLM_APIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	llm := NewLLM(LLMConfig{BaseURL: server.URL})
	_, err := llm.Complete(context.Background(), "s", "u", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestLLM_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	llm := NewLLM(LLMConfig{BaseURL: server.URL})
	_, err := llm.Complete(context.Background(), "s", "u", "m")
	require.Error(t, err)
}

func TestLLM_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	llm := NewLLM(LLMConfig{BaseURL: server.URL})
	start := time.Now()
	_, err := llm.Complete(ctx, "s", "u", "m")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
