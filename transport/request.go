package transport

import (
	"fmt"

	"github.com/ajac-zero/orpheus/core"
)

// completionPayload 构建 chat 请求体。Extra 合并进顶层，
// 与内建键冲突视为调用错误而不是悄悄覆盖。
func completionPayload(req core.CompletionRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("transport: model required")
	}
	if req.Messages == nil {
		return nil, fmt.Errorf("transport: messages required")
	}

	out := map[string]any{
		"model":    req.Model,
		"messages": req.Messages,
	}
	if req.Stream {
		out["stream"] = true
	}
	if req.Tools != nil {
		out["tools"] = req.Tools
	}

	if err := mergeExtra(out, req.Extra); err != nil {
		return nil, err
	}
	return out, nil
}

// embeddingsPayload 构建 embeddings 请求体
func embeddingsPayload(req core.EmbeddingsRequest) (map[string]any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("transport: model required")
	}
	if req.Input == nil {
		return nil, fmt.Errorf("transport: input required")
	}

	out := map[string]any{
		"model": req.Model,
		"input": req.Input,
	}
	if req.Dimensions != nil {
		out["dimensions"] = *req.Dimensions
	}
	if req.EncodingFormat != "" {
		out["encoding_format"] = req.EncodingFormat
	}
	if req.User != "" {
		out["user"] = req.User
	}

	if err := mergeExtra(out, req.Extra); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeExtra(dst map[string]any, extra map[string]any) error {
	for k, v := range extra {
		if _, exists := dst[k]; exists {
			return fmt.Errorf("transport: extra field %q conflicts with a built-in field", k)
		}
		dst[k] = v
	}
	return nil
}
