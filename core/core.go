// Package core 定义客户端与具体传输实现之间的契约。
package core

import (
	"context"
	"encoding/json"

	"github.com/ajac-zero/orpheus/schema"
)

// Core is the provider contract the client delegates to. The bundled
// implementation speaks the OpenAI-compatible HTTP API; tests swap in
// in-memory cores.
type Core interface {
	CreateChatCompletion(ctx context.Context, req CompletionRequest) (*schema.Completion, error)

	// StreamChatCompletion opens a streaming completion. The returned
	// source yields decoded chunks until io.EOF.
	StreamChatCompletion(ctx context.Context, req CompletionRequest) (ChunkSource, error)

	CreateEmbeddings(ctx context.Context, req EmbeddingsRequest) (*schema.Embeddings, error)
}

// ChunkSource 按到达顺序产出流式分片。正常结束返回 io.EOF，
// 之后的每次 Next 仍然返回 io.EOF。Close 幂等。
type ChunkSource interface {
	Next() (schema.CompletionChunk, error)
	Close() error
}

// CompletionRequest 是一次 chat 请求的全部参数
type CompletionRequest struct {
	Model    string
	Messages schema.Messages

	// Tools 是已序列化的 tools 数组；nil 表示不带 tools 键
	Tools json.RawMessage

	// Stream 由传输层根据调用的是 Create 还是 Stream 设置
	Stream bool

	ExtraHeaders map[string]string
	ExtraQuery   map[string]string

	// Extra 合并进请求体顶层，键冲突是调用错误
	Extra map[string]any
}

// EmbeddingsRequest 是一次 embeddings 请求的全部参数
type EmbeddingsRequest struct {
	Model string
	Input schema.EmbeddingInput

	Dimensions     *int
	EncodingFormat string
	User           string

	ExtraHeaders map[string]string
	ExtraQuery   map[string]string
	Extra        map[string]any
}
