package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ajac-zero/orpheus/config"
	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testConfig() config.Config {
	return config.Config{APIKey: "sk-test", BaseURL: "https://example.com/v1"}
}

const completionBody = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-test",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
}`

func TestCreateChatCompletion(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	var capturedBody map[string]any

	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		captured = r
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		return jsonResponse(http.StatusOK, completionBody), nil
	})}

	cfg := testConfig()
	cfg.DefaultHeaders = map[string]string{"X-Title": "demo"}
	cfg.DefaultQuery = map[string]string{"version": "2"}
	c := New(cfg, WithHTTPClient(hc))

	out, err := c.CreateChatCompletion(context.Background(), core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{schema.UserMessage("hi")},
		ExtraHeaders: map[string]string{
			"X-Trace": "abc",
		},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}

	if out.ID != "cmpl-1" || out.FirstText() != "hi" {
		t.Errorf("completion = %+v", out)
	}
	if out.Choices[0].FinishReason != schema.FinishReasonStop {
		t.Errorf("FinishReason = %q", out.Choices[0].FinishReason)
	}

	if got := captured.URL.Path; got != "/v1/chat/completions" {
		t.Errorf("path = %q", got)
	}
	if got := captured.URL.Query().Get("version"); got != "2" {
		t.Errorf("query version = %q", got)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Authorization = %q", got)
	}
	if got := captured.Header.Get("User-Agent"); got != config.UserAgent {
		t.Errorf("User-Agent = %q", got)
	}
	if got := captured.Header.Get("X-Title"); got != "demo" {
		t.Errorf("X-Title = %q", got)
	}
	if got := captured.Header.Get("X-Trace"); got != "abc" {
		t.Errorf("X-Trace = %q", got)
	}

	if capturedBody["model"] != "gpt-test" {
		t.Errorf("body model = %v", capturedBody["model"])
	}
	if _, ok := capturedBody["stream"]; ok {
		t.Error("body has stream key on a non-streaming request")
	}
	if _, ok := capturedBody["tools"]; ok {
		t.Error("body has tools key without tools")
	}
}

func TestCreateChatCompletionAPIError(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp := jsonResponse(http.StatusTooManyRequests,
			`{"error":{"message":"rate limited","type":"rate_limit_error","code":"rate_limit_exceeded"}}`)
		resp.Header.Set("Retry-After", "2")
		resp.Header.Set("X-Request-Id", "rid_123")
		return resp, nil
	})}

	c := New(testConfig(), WithHTTPClient(hc), WithRetry(RetryConfig{MaxAttempts: 1}))

	_, err := c.CreateChatCompletion(context.Background(), core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	ae, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if ae.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", ae.StatusCode)
	}
	if ae.Code != "rate_limit_exceeded" || ae.Type != "rate_limit_error" || ae.Message != "rate limited" {
		t.Errorf("error fields = %+v", ae)
	}
	if ae.RequestID != "rid_123" {
		t.Errorf("RequestID = %q", ae.RequestID)
	}
	if ae.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %v", ae.RetryAfter)
	}
	if len(ae.Raw) == 0 {
		t.Error("Raw is empty")
	}
	if !IsRateLimit(err) || IsAuth(err) || !IsTemporary(err) {
		t.Errorf("classification failed for %v", err)
	}
}

func TestPostJSONRetries(t *testing.T) {
	t.Parallel()

	var calls int
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return jsonResponse(http.StatusServiceUnavailable, `{"error":{"message":"busy"}}`), nil
		}
		return jsonResponse(http.StatusOK, completionBody), nil
	})}

	c := New(testConfig(), WithHTTPClient(hc), WithRetry(RetryConfig{
		MaxAttempts: 3,
		Base:        time.Millisecond,
		Max:         2 * time.Millisecond,
	}))

	_, err := c.CreateChatCompletion(context.Background(), core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPostJSONDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadRequest, `{"error":{"message":"bad request"}}`), nil
	})}

	c := New(testConfig(), WithHTTPClient(hc), WithRetry(RetryConfig{
		MaxAttempts: 3,
		Base:        time.Millisecond,
	}))

	_, err := c.CreateChatCompletion(context.Background(), core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCreateEmbeddings(t *testing.T) {
	t.Parallel()

	var capturedBody map[string]any
	hc := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if got := r.URL.Path; got != "/v1/v1/embeddings" {
			t.Errorf("path = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{
			"object": "list",
			"data": [{"index": 0, "embedding": [0.1, 0.2], "object": "embedding"}],
			"model": "embed-test",
			"usage": {"prompt_tokens": 2, "total_tokens": 2}
		}`), nil
	})}

	c := New(testConfig(), WithHTTPClient(hc))

	dims := 2
	out, err := c.CreateEmbeddings(context.Background(), core.EmbeddingsRequest{
		Model:      "embed-test",
		Input:      schema.InputTexts{"a", "b"},
		Dimensions: &dims,
	})
	if err != nil {
		t.Fatalf("CreateEmbeddings: %v", err)
	}
	if len(out.Data) != 1 || len(out.Data[0].Embedding) != 2 {
		t.Errorf("embeddings = %+v", out)
	}

	if got, ok := capturedBody["input"].([]any); !ok || len(got) != 2 {
		t.Errorf("body input = %v", capturedBody["input"])
	}
	if got := capturedBody["dimensions"]; got != float64(2) {
		t.Errorf("body dimensions = %v", got)
	}
}

func TestPayloadExtraConflicts(t *testing.T) {
	t.Parallel()

	_, err := completionPayload(core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{},
		Extra:    map[string]any{"model": "other"},
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}

	payload, err := completionPayload(core.CompletionRequest{
		Model:    "gpt-test",
		Messages: schema.Messages{},
		Extra:    map[string]any{"temperature": 0.1},
	})
	if err != nil {
		t.Fatalf("completionPayload: %v", err)
	}
	if payload["temperature"] != 0.1 {
		t.Errorf("payload temperature = %v", payload["temperature"])
	}
}

func TestSanitizeHTTPErrorPreservesSentinels(t *testing.T) {
	t.Parallel()

	if err := sanitizeHTTPError(context.DeadlineExceeded); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("deadline: got %v", err)
	}
	if err := sanitizeHTTPError(context.Canceled); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: got %v", err)
	}

	timeoutErr := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if err := sanitizeHTTPError(timeoutErr); !errors.Is(err, timeoutErr) {
		t.Errorf("net timeout: expected wrapped original, got %v", err)
	}
}
