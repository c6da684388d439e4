package schema

import "encoding/json"

// FinishReason 表示对话结束的原因
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Choice 表示一个生成的候选项
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
}

// Completion 是非流式 chat 请求的完整结果
type Completion struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`

	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`

	ServiceTier       string `json:"service_tier,omitempty"`
	SystemFingerprint string `json:"system_fingerprint,omitempty"`
}

// FirstText returns the rendered text of the first choice, or "".
func (c *Completion) FirstText() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Text()
}

// ToolCallDelta 是流式响应中一次工具调用的片段。参数以原样字符串
// 增量到达，拼接完成前不保证是合法 JSON。
type ToolCallDelta struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// Delta 是流式响应中一条消息的增量
type Delta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	Refusal   string          `json:"refusal,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

type ChunkChoice struct {
	Index        int             `json:"index"`
	Delta        Delta           `json:"delta"`
	FinishReason FinishReason    `json:"finish_reason,omitempty"`
	LogProbs     json.RawMessage `json:"logprobs,omitempty"`
}

// CompletionChunk 是流式 chat 响应中的一个已解码分片
type CompletionChunk struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`

	Choices []ChunkChoice `json:"choices"`

	// Usage 仅在最后一个分片出现（需要 stream_options.include_usage）
	Usage *Usage `json:"usage,omitempty"`

	ServiceTier       string `json:"service_tier,omitempty"`
	SystemFingerprint string `json:"system_fingerprint,omitempty"`
}
