package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		APIKey:          "sk-test",
		Model:           "gpt-4o-mini",
		BaseURL:         srv.URL + "/v1/",
		MaxOutputTokens: 220,
		Temperature:     0.2,
		Timeout:         2 * time.Second,
	})
}

func TestComplete_SendsRequestAndJoinsOutputText(t *testing.T) {
	var got responsesRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer auth: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"status": "completed",
			"output": [
				{"type": "reasoning", "content": []},
				{"type": "message", "role": "assistant", "content": [
					{"type": "output_text", "text": "Γεια σας! "},
					{"type": "output_text", "text": "Πώς μπορώ να βοηθήσω;"}
				]}
			],
			"usage": {"input_tokens": 10, "output_tokens": 8, "total_tokens": 18}
		}`))
	})

	text, err := c.Complete(context.Background(), Prompt{Instructions: "be nice", Input: "hello"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Γεια σας! Πώς μπορώ να βοηθήσω;" {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "gpt-4o-mini" || got.Instructions != "be nice" || got.Input != "hello" ||
		got.MaxOutputTokens != 220 || got.Temperature != 0.2 {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestComplete_EmptyOutputIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"r","output":[]}`))
	})
	text, err := c.Complete(context.Background(), Prompt{Input: "x"})
	if err != nil || text != "" {
		t.Fatalf("expected empty text without error, got %q err=%v", text, err)
	}
}

func TestComplete_APIErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})
	_, err := c.Complete(context.Background(), Prompt{Input: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestComplete_NonJSONErrorBodyTruncated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	})
	_, err := c.Complete(context.Background(), Prompt{Input: "x"})
	if err == nil || len(err.Error()) > maxErrorBody+64 {
		t.Fatalf("expected truncated error, got %v", err)
	}
}

func TestComplete_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	if _, err := c.Complete(context.Background(), Prompt{Input: "x"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestComplete_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Complete(ctx, Prompt{Input: "x"}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestComplete_NoCredential(t *testing.T) {
	c := New(Options{Model: "m"})
	if c.Enabled() {
		t.Fatalf("client without key should be disabled")
	}
	if _, err := c.Complete(context.Background(), Prompt{}); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Options{APIKey: " k ", Model: "m"})
	if c.baseURL != "https://api.openai.com/v1" || c.apiKey != "k" || c.http.Timeout != 30*time.Second || c.Model() != "m" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}
