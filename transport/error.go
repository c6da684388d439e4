package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// APIError API 错误，用于非 2xx 响应
//
// 携带分类（限流、认证）、追踪（request id）与重试（retry-after）所需的信息
type APIError struct {
	StatusCode int

	// Code 服务端错误码
	Code string

	// Type 服务端错误类型
	Type string

	// Message 人类可读的错误消息
	Message string

	// RequestID 请求追踪 ID
	RequestID string

	// RetryAfter 服务端建议的重试等待时间
	RetryAfter time.Duration

	// Raw 原始响应体
	Raw []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "http %d", e.StatusCode)
	} else {
		b.WriteString("http error")
	}

	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.StatusCode != 0 {
		msg = http.StatusText(e.StatusCode)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}

	if code := strings.TrimSpace(e.Code); code != "" {
		b.WriteString(" (")
		b.WriteString(code)
		b.WriteString(")")
	}
	if id := strings.TrimSpace(e.RequestID); id != "" {
		b.WriteString(" request_id=")
		b.WriteString(id)
	}
	return b.String()
}

// AsAPIError 判断错误是否为 APIError
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsRateLimit 判断是否为限流错误
func IsRateLimit(err error) bool {
	ae, ok := AsAPIError(err)
	if !ok {
		return false
	}
	if ae.StatusCode == http.StatusTooManyRequests {
		return true
	}
	code := strings.ToLower(strings.TrimSpace(ae.Code))
	return code == "rate_limit" || code == "rate_limit_exceeded"
}

// IsAuth 判断是否为认证错误
func IsAuth(err error) bool {
	ae, ok := AsAPIError(err)
	if !ok {
		return false
	}
	return ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden
}

// IsTemporary 判断是否为临时错误（可重试）
func IsTemporary(err error) bool {
	ae, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch ae.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// parseError 将非 2xx 响应映射为 APIError。优先解析 OpenAI 兼容的
// 错误体，解析不了就带上原始响应体。
func parseError(resp *http.Response, body []byte) error {
	ae := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  extractRequestID(resp.Header),
		Raw:        body,
	}
	if d, ok := parseRetryAfter(resp.Header, time.Now()); ok {
		ae.RetryAfter = d
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		ae.Message = er.Error.Message
		ae.Type = er.Error.Type
		ae.Code = er.Error.Code
	}
	return ae
}

func extractRequestID(h http.Header) string {
	for _, k := range []string{"X-Request-Id", "Request-Id", "X-Amzn-Requestid"} {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func parseRetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// sanitizeHTTPError 给 HTTP 客户端错误换上不泄露请求细节的消息，
// 同时保留原错误供 errors.Is/As 判断
func sanitizeHTTPError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("request cancelled: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("network error: %w", err)
	}
	return err
}
