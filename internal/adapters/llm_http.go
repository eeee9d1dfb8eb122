package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Temperature *float64
	Timeout     time.Duration
}

// LLM talks to an OpenAI-compatible chat completions endpoint.
type LLM struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	temperature *float64
}

func NewLLM(cfg LLMConfig) *LLM {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second // Long timeout for LLM generation
	}
	return &LLM{
		client:      &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

func (a *LLM) Complete(ctx context.Context, system, user, model string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, snippet(body))
	}

	var res chatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if res.Error != nil {
		return "", fmt.Errorf("upstream error: %s", res.Error.Message)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("upstream returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}

func snippet(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
