// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
	"github.com/noah-isme/ego-calendar-api/pkg/tracing"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-70b-8192"
	DefaultTemperature = 0.5
	DefaultTimeout     = 30 * time.Second

	providerName = "llm"
	maxBodyBytes = 4 << 20
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chatter is the single operation consumers depend on.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Observer receives the outcome of every upstream call.
type Observer func(provider, operation string, duration time.Duration, err error)

// Config configures a Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
	Observer    Observer
}

// Client is a stateless chat completions client, safe for concurrent use.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	httpClient  *http.Client
	observe     Observer
}

// NewClient builds a Client, filling unset fields with the defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	observe := cfg.Observer
	if observe == nil {
		observe = func(string, string, time.Duration, error) {}
	}
	return &Client{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
		observe:     observe,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends messages and returns the trimmed completion text. There are no
// retries; a timeout surfaces as an upstream-unavailable error.
func (c *Client) Chat(ctx context.Context, messages []Message) (reply string, err error) {
	ctx, span := tracing.StartSpan(ctx, "llm.chat",
		attribute.String(tracing.AttrProvider, providerName),
		attribute.String(tracing.AttrModel, c.model),
		attribute.Int(tracing.AttrMessages, len(messages)),
	)
	start := time.Now()
	defer func() {
		c.observe(providerName, "chat", time.Since(start), err)
		tracing.End(span, err)
	}()

	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: c.temperature})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "could not reach the language model")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "read language model response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", appErrors.Upstream(resp.StatusCode, string(body))
	}

	return parseCompletion(resp.StatusCode, body)
}

func parseCompletion(status int, body []byte) (string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", appErrors.Upstream(status, string(body))
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", appErrors.Upstream(status, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == nil {
		return "", appErrors.Upstream(status, string(body))
	}
	return strings.TrimSpace(*parsed.Choices[0].Message.Content), nil
}
