// Package llm implements the suggestion generator: an OpenRouter-backed
// client that asks a large language model for deck recommendations and
// parses its unreliable output into a structured outcome.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config configures the OpenRouter client.
type Config struct {
	// BaseURL is the OpenRouter API endpoint.
	BaseURL string

	// APIKey is the bearer token for OpenRouter.
	APIKey string

	// Model is the model name to use.
	Model string

	// Temperature controls creativity in responses.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// RequestTimeout is the transport-level timeout for one completion.
	RequestTimeout time.Duration

	// RateLimit caps outbound request frequency.
	RateLimit rate.Limit
}

// DefaultConfig returns sensible defaults. The API key must be supplied by
// the caller.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://openrouter.ai/api/v1",
		Model:          "deepseek/deepseek-chat",
		Temperature:    0.7,
		RequestTimeout: 90 * time.Second,
		RateLimit:      rate.Limit(1),
	}
}

// ErrEmptyContent signals that the model answered but produced no usable
// text for the attempt.
var ErrEmptyContent = errors.New("llm returned empty content")

// Client provides access to the OpenRouter chat completions API. The mutex
// guards config, httpClient, and limiter together; UpdateConfig replaces all
// three so in-flight requests keep using the snapshot they started with.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	mu         sync.RWMutex
}

// ChatMessage is a single chat turn.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// chatRequest is the request body for chat completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// errorPayload is the error envelope OpenRouter and its providers emit,
// either at the top level or inside a choice.
type errorPayload struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content   string `json:"content"`
		Reasoning string `json:"reasoning,omitempty"`
	} `json:"message"`
	Error *errorPayload `json:"error,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice  `json:"choices"`
	Error   *errorPayload `json:"error,omitempty"`
}

// NewClient creates a new OpenRouter client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Inf
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(config.RateLimit, 1),
	}
}

// ChatCompletion sends a chat completion request and returns the content of
// the first choice. An error envelope anywhere in the response is a total
// failure for the attempt, never a partial result.
func (c *Client) ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	c.mu.RLock()
	cfg := *c.config
	httpClient := c.httpClient
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(&chatRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openrouter api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("response carried no choices")
	}

	choice := chatResp.Choices[0]
	if choice.Error != nil {
		return "", fmt.Errorf("provider error in choice: %s", choice.Error.Message)
	}

	content := choice.Message.Content
	if content == "" {
		return "", fmt.Errorf("%w (reasoning: %s)", ErrEmptyContent, choice.Message.Reasoning)
	}

	return content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Model
}

// UpdateConfig swaps the client configuration, e.g. after a config reload.
// The transport and limiter are rebuilt rather than mutated, so completions
// already in flight are unaffected.
func (c *Client) UpdateConfig(config *Config) {
	if config == nil {
		return
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Inf
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = config
	c.httpClient = &http.Client{Timeout: config.RequestTimeout}
	c.limiter = rate.NewLimiter(config.RateLimit, 1)
}
