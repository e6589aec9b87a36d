package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestAnthropicClient(t *testing.T, baseURL string, maxRetries int) *anthropicClient {
	t.Helper()
	return &anthropicClient{
		log:        testLogger(t).With("service", "AnthropicClient"),
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "claude-3-5-sonnet-20241022",
		maxTokens:  1024,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: maxRetries,
	}
}

func messagesResponse(text string) map[string]any {
	return map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-3-5-sonnet-20241022",
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 42, "output_tokens": 7},
	}
}

func TestAnthropicChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key=%q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version=%q", got)
		}
		var req anthropicMessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.System == "" || len(req.Messages) != 1 {
			t.Errorf("request system=%q messages=%d", req.System, len(req.Messages))
		}
		_ = json.NewEncoder(w).Encode(messagesResponse("Hello there."))
	}))
	defer srv.Close()

	c := newTestAnthropicClient(t, srv.URL, 0)
	res, err := c.Chat(context.Background(), "stay in character", []ChatTurn{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if res.Text != "Hello there." {
		t.Fatalf("Text=%q", res.Text)
	}
	if res.InputTokens != 42 || res.OutputTokens != 7 {
		t.Fatalf("usage=%d/%d, want 42/7", res.InputTokens, res.OutputTokens)
	}
	if res.StopReason != "end_turn" {
		t.Fatalf("StopReason=%q", res.StopReason)
	}
}

func TestAnthropicChatRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(messagesResponse("recovered"))
	}))
	defer srv.Close()

	c := newTestAnthropicClient(t, srv.URL, 2)
	res, err := c.Chat(context.Background(), "", []ChatTurn{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if res.Text != "recovered" {
		t.Fatalf("Text=%q", res.Text)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("server saw %d calls, want 2", got)
	}
}

func TestAnthropicChatDoesNotRetryAuthError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestAnthropicClient(t, srv.URL, 3)
	_, err := c.Chat(context.Background(), "", []ChatTurn{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("server saw %d calls, want 1 (401 is not retryable)", got)
	}
	if cat := CategorizeAIError(err); cat != AIErrCategoryAuth {
		t.Fatalf("CategorizeAIError=%q, want %q", cat, AIErrCategoryAuth)
	}
}

func TestAnthropicChatRequiresTurns(t *testing.T) {
	c := newTestAnthropicClient(t, "http://127.0.0.1:1", 0)
	if _, err := c.Chat(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty turns")
	}
}

func TestCategorizeAIError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: context.DeadlineExceeded, want: AIErrCategoryTimeout},
		{name: "forbidden", err: &anthropicHTTPError{StatusCode: 403}, want: AIErrCategoryAuth},
		{name: "rate_limited", err: &anthropicHTTPError{StatusCode: 429}, want: AIErrCategoryRateLimited},
		{name: "request_timeout", err: &anthropicHTTPError{StatusCode: 408}, want: AIErrCategoryTimeout},
		{name: "overloaded", err: &anthropicHTTPError{StatusCode: 529}, want: AIErrCategoryOverloaded},
		{name: "bad_request", err: &anthropicHTTPError{StatusCode: 400}, want: AIErrCategoryInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CategorizeAIError(tc.err); got != tc.want {
				t.Fatalf("CategorizeAIError=%q, want %q", got, tc.want)
			}
		})
	}
}
