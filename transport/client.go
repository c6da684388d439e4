// Package transport 实现面向 OpenAI 兼容 HTTP API 的 core.Core。
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ajac-zero/orpheus/config"
	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
)

const maxErrorBodyBytes = 1 << 20

// Client 是携带凭证与重试策略的 HTTP 传输层
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	logger     *slog.Logger
	retry      RetryConfig
}

var _ core.Core = (*Client)(nil)

// Option 调整传输层行为
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger 设置结构化日志
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry 设置重试策略
func WithRetry(r RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

// New 基于已解析的配置构建传输层
func New(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		retry:      DefaultRetry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateChatCompletion 发起一次非流式 chat 请求
func (c *Client) CreateChatCompletion(ctx context.Context, req core.CompletionRequest) (*schema.Completion, error) {
	req.Stream = false
	payload, err := completionPayload(req)
	if err != nil {
		return nil, err
	}

	raw, err := c.postJSON(ctx, config.ChatCompletionsPath, payload, req.ExtraHeaders, req.ExtraQuery)
	if err != nil {
		return nil, err
	}

	var out schema.Completion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("transport: decode completion: %w", err)
	}
	return &out, nil
}

// StreamChatCompletion 打开一次流式 chat 请求。返回的 ChunkSource
// 负责关闭响应体。流一旦建立就不再重试。
func (c *Client) StreamChatCompletion(ctx context.Context, req core.CompletionRequest) (core.ChunkSource, error) {
	req.Stream = true
	payload, err := completionPayload(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doOnce(ctx, config.ChatCompletionsPath, payload, req.ExtraHeaders, req.ExtraQuery, "text/event-stream")
	if err != nil {
		return nil, err
	}
	return newChunkSource(resp.Body), nil
}

// CreateEmbeddings 发起一次 embeddings 请求
func (c *Client) CreateEmbeddings(ctx context.Context, req core.EmbeddingsRequest) (*schema.Embeddings, error) {
	payload, err := embeddingsPayload(req)
	if err != nil {
		return nil, err
	}

	raw, err := c.postJSON(ctx, config.EmbeddingsPath, payload, req.ExtraHeaders, req.ExtraQuery)
	if err != nil {
		return nil, err
	}

	var out schema.Embeddings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("transport: decode embeddings: %w", err)
	}
	return &out, nil
}

// postJSON 执行请求并带重试读取完整响应体
func (c *Client) postJSON(ctx context.Context, path string, payload map[string]any, hdr, query map[string]string) ([]byte, error) {
	attempts := c.retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.doOnce(ctx, path, payload, hdr, query, "application/json")
		if err == nil {
			defer resp.Body.Close()
			raw, rerr := io.ReadAll(resp.Body)
			if rerr != nil {
				return nil, fmt.Errorf("transport: read response: %w", rerr)
			}
			return raw, nil
		}

		if attempt >= attempts || !shouldRetry(err) {
			return nil, err
		}

		var retryAfter time.Duration
		if ae, ok := AsAPIError(err); ok {
			retryAfter = ae.RetryAfter
		}
		delay := c.retry.delayFor(attempt, retryAfter)
		c.logger.Debug("orpheus http retry", "path", path, "attempt", attempt, "delay", delay, "err", err)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) doOnce(ctx context.Context, path string, payload map[string]any, hdr, query map[string]string, accept string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal request: %w", err)
	}

	u, err := c.endpoint(path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: new request: %w", err)
	}
	c.applyHeaders(req, hdr, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: do request: %w", sanitizeHTTPError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, rerr := readLimited(resp.Body, maxErrorBodyBytes)
		if rerr != nil {
			return nil, fmt.Errorf("transport: http %d (also failed to read error body: %v)", resp.StatusCode, rerr)
		}
		return nil, parseError(resp, raw)
	}
	return resp, nil
}

func (c *Client) endpoint(path string, extraQuery map[string]string) (string, error) {
	// BaseURL 在配置解析时已去掉尾部斜杠，路径以 / 开头
	u, err := url.Parse(c.cfg.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("transport: build url: %w", err)
	}

	if len(c.cfg.DefaultQuery) > 0 || len(extraQuery) > 0 {
		q := u.Query()
		for k, v := range c.cfg.DefaultQuery {
			q.Set(k, v)
		}
		for k, v := range extraQuery {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// applyHeaders 分层应用请求头：内建 < 客户端默认 < 单次请求。
// Authorization 默认用 bearer key，但允许上层自行覆盖。
func (c *Client) applyHeaders(req *http.Request, hdr map[string]string, accept string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", config.UserAgent)

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	if c.cfg.APIKey != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r, maxBytes+1)
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], nil
	}
	return b, nil
}
