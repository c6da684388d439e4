package schema

import (
	"encoding/json"
	"fmt"
)

// Messages 是一段有序会话。构造之后只读；下标从 0 开始。
type Messages []Message

// NewMessages validates msgs and returns them as a conversation.
//
// A nil slice is rejected with ErrNilMessages: the empty conversation must
// be requested explicitly ([]Message{}). Element order is preserved
// verbatim.
func NewMessages(msgs []Message) (Messages, error) {
	if msgs == nil {
		return nil, ErrNilMessages
	}

	out := make(Messages, len(msgs))
	copy(out, msgs)

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate 逐条校验消息，并检查跨消息约束：tool 消息的 ToolID 必须
// 指向前文 assistant 消息中的某个 ToolCall.ID。校验幂等，不修改会话。
func (ms Messages) Validate() error {
	seen := make(map[string]bool)

	for i, m := range ms {
		if err := m.Validate(); err != nil {
			if ve, ok := AsValidationError(err); ok {
				return &ValidationError{Index: i, Role: ve.Role, Reason: ve.Reason}
			}
			return err
		}

		if m.Role == RoleTool && !seen[m.ToolID] {
			return &ValidationError{
				Index:  i,
				Role:   m.Role,
				Reason: fmt.Sprintf("tool_id %q does not answer a preceding tool call", m.ToolID),
			}
		}

		for _, tc := range m.ToolCalls {
			seen[tc.ID] = true
		}
	}
	return nil
}

// MessageFromMap 将“宽松”的 map 形式消息规范化为类型化 Message。
//
// 支持的键：role、content（字符串或片段数组）、tool_calls、tool_id。
// 未知键会被拒绝，避免拼写错误被悄悄吞掉。
func MessageFromMap(m map[string]any) (Message, error) {
	var out Message

	for k := range m {
		switch k {
		case "role", "content", "tool_calls", "tool_id":
		default:
			return Message{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("unknown message key %q", k)}
		}
	}

	role, ok := m["role"].(string)
	if !ok {
		return Message{}, &ValidationError{Index: -1, Reason: "role is required and must be a string"}
	}
	out.Role = Role(role)

	if raw, ok := m["content"]; ok {
		content, err := contentFromAny(raw)
		if err != nil {
			return Message{}, err
		}
		out.Content = content
	}

	if raw, ok := m["tool_calls"]; ok {
		calls, err := toolCallsFromAny(raw)
		if err != nil {
			return Message{}, err
		}
		out.ToolCalls = calls
	}

	if raw, ok := m["tool_id"]; ok {
		id, ok := raw.(string)
		if !ok {
			return Message{}, &ValidationError{Index: -1, Role: out.Role, Reason: "tool_id must be a string"}
		}
		out.ToolID = id
	}

	if err := out.Validate(); err != nil {
		return Message{}, err
	}
	return out, nil
}

// MessagesFromMaps normalizes a slice of map-form messages into a
// validated conversation. Order is preserved.
func MessagesFromMaps(maps []map[string]any) (Messages, error) {
	if maps == nil {
		return nil, ErrNilMessages
	}

	out := make(Messages, 0, len(maps))
	for i, m := range maps {
		msg, err := MessageFromMap(m)
		if err != nil {
			if ve, ok := AsValidationError(err); ok {
				return nil, &ValidationError{Index: i, Role: ve.Role, Reason: ve.Reason}
			}
			return nil, err
		}
		out = append(out, msg)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func contentFromAny(raw any) (Content, error) {
	switch v := raw.(type) {
	case string:
		return Text(v), nil
	case []any:
		parts := make([]Part, 0, len(v))
		for _, e := range v {
			pm, ok := e.(map[string]any)
			if !ok {
				return Content{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("content part must be a map, got %T", e)}
			}
			p, err := partFromMap(pm)
			if err != nil {
				return Content{}, err
			}
			parts = append(parts, p)
		}
		return Content{parts: parts, isParts: true}, nil
	default:
		return Content{}, &ValidationError{Index: -1, Reason: fmt.Sprintf("content must be a string or part list, got %T", raw)}
	}
}

func partFromMap(m map[string]any) (Part, error) {
	typ, _ := m["type"].(string)
	switch typ {
	case "text":
		text, ok := m["text"].(string)
		if !ok {
			return nil, &ValidationError{Index: -1, Reason: "text part requires a string text field"}
		}
		return TextContent{Text: text}, nil
	case "image_url":
		img, ok := m["image_url"].(map[string]any)
		if !ok {
			return nil, &ValidationError{Index: -1, Reason: "image_url part requires an image_url object"}
		}
		url, ok := img["url"].(string)
		if !ok {
			return nil, &ValidationError{Index: -1, Reason: "image_url part requires a string url field"}
		}
		detail, _ := img["detail"].(string)
		return ImageContent{URL: url, Detail: detail}, nil
	default:
		return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("unknown part type %q", typ)}
	}
}

func toolCallsFromAny(raw any) ([]ToolCall, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Index: -1, Reason: "tool_calls must be a list"}
	}

	out := make([]ToolCall, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("tool call must be a map, got %T", e)}
		}

		var tc ToolCall
		tc.ID, _ = m["id"].(string)
		if fn, ok := m["function"].(map[string]any); ok {
			tc.Function.Name, _ = fn["name"].(string)
			switch args := fn["arguments"].(type) {
			case map[string]any:
				tc.Function.Arguments = args
			case string:
				// OpenAI wire form keeps arguments as a JSON string.
				var parsed map[string]any
				if err := json.Unmarshal([]byte(args), &parsed); err != nil {
					return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("tool call %q arguments are not valid JSON", tc.ID)}
				}
				tc.Function.Arguments = parsed
			case nil:
			default:
				return nil, &ValidationError{Index: -1, Reason: "tool call arguments must be a map or a JSON string"}
			}
		}
		if tc.ID == "" || tc.Function.Name == "" {
			return nil, &ValidationError{Index: -1, Reason: "tool call requires id and function.name"}
		}
		out = append(out, tc)
	}
	return out, nil
}
