// Package llm is a minimal client for the OpenAI Responses API, used as the
// last stage of the reply pipeline.
package llm

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoCredential is returned by Complete when the client has no API key.
var ErrNoCredential = errors.New("llm: no API key configured")

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Prompt is one completion request: fixed system instructions plus the
// per-request context text.
type Prompt struct {
	Instructions string
	Input        string
}

// Options configures a Client.
type Options struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
	HTTPClient      *http.Client // optional; Timeout is ignored when set
}

// Client calls POST {BaseURL}/responses.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// New builds a Client from opts.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       opts.Model,
		baseURL:     base,
		maxTokens:   opts.MaxOutputTokens,
		temperature: opts.Temperature,
		http:        hc,
	}
}

// Enabled reports whether the client has a credential.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type responsesRequest struct {
	Model           string  `json:"model"`
	Instructions    string  `json:"instructions,omitempty"`
	Input           string  `json:"input"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content []outputContent `json:"content"`
}

type responsesResponse struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Output []outputItem `json:"output"`
	Usage  struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends p to the model and returns the concatenated output text,
// which may be empty. Transport errors, non-2xx statuses and undecodable
// bodies are returned as errors.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	ctx, span := otel.Tracer("llm").Start(ctx, "Complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("llm.model", c.model)),
	)
	defer span.End()

	if !c.Enabled() {
		return "", ErrNoCredential
	}

	text, err := c.do(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}
	return text, nil
}

func (c *Client) do(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(responsesRequest{
		Model:           c.model,
		Instructions:    p.Instructions,
		Input:           p.Input,
		MaxOutputTokens: c.maxTokens,
		Temperature:     c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
			return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, ae.Error.Message)
		}
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out responsesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	return outputText(out), nil
}

// outputText joins every output_text part of every message item.
func outputText(r responsesResponse) string {
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
