// Package summarizer calls an OpenAI-compatible chat completions endpoint to
// describe recent orders in a few sentences.
package summarizer

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

	"github.com/sellerdesk/backend/internal/application/summary"
)

const (
	chatCompletionsPath = "/chat/completions"
	maxResponseSize     = 1 * 1024 * 1024 // 1MB
	systemPrompt        = "You are an assistant for a marketplace seller. " +
		"Summarize the recent orders in three or four short sentences: " +
		"what sells, where it ships and anything that needs attention."
)

var (
	// ErrMissingAPIKey is returned by NewClient without an API key
	ErrMissingAPIKey = errors.New("summarizer: api key is required")
	// ErrEmptyCompletion is returned when the response has no choices
	ErrEmptyCompletion = errors.New("summarizer: empty completion")
)

// Config holds the chat completions endpoint settings
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client implements summary.Generator
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ summary.Generator = (*Client)(nil)

// NewClient creates a chat completions client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Summarize sends the digests as a single user message
func (c *Client) Summarize(ctx context.Context, digests []summary.Digest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: FormatDigests(digests)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return "", fmt.Errorf("summarizer: HTTP %d", resp.StatusCode)
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("summarizer: HTTP %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("summarizer: HTTP %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return parsed.Choices[0].Message.Content, nil
}

// FormatDigests renders one line per order
func FormatDigests(digests []summary.Digest) string {
	if len(digests) == 0 {
		return "There are no orders in the selected period."
	}
	var b strings.Builder
	b.WriteString("Recent orders, newest first:\n")
	for _, d := range digests {
		fmt.Fprintf(&b, "- %s | %s | %s %s | %s", d.Date, d.Product, d.Price, d.Currency, d.Status)
		if d.Region != "" {
			b.WriteString(" | " + d.Region)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
