package schema

import (
	"errors"
	"testing"
)

// TestNewMessages 测试 nil 与空会话的区分
func TestNewMessages(t *testing.T) {
	t.Parallel()

	t.Run("nil slice is rejected", func(t *testing.T) {
		_, err := NewMessages(nil)
		if !errors.Is(err, ErrNilMessages) {
			t.Errorf("NewMessages(nil) error = %v, want ErrNilMessages", err)
		}
	})

	t.Run("empty slice is a valid conversation", func(t *testing.T) {
		ms, err := NewMessages([]Message{})
		if err != nil {
			t.Fatalf("NewMessages([]) error = %v", err)
		}
		if len(ms) != 0 {
			t.Errorf("len = %d, want 0", len(ms))
		}
	})

	t.Run("input slice is copied", func(t *testing.T) {
		in := []Message{UserMessage("hi")}
		ms, err := NewMessages(in)
		if err != nil {
			t.Fatalf("NewMessages() error = %v", err)
		}
		in[0] = UserMessage("changed")
		if got := ms[0].Text(); got != "hi" {
			t.Errorf("conversation aliased the input slice, got %q", got)
		}
	})

	t.Run("validation error carries the index", func(t *testing.T) {
		_, err := NewMessages([]Message{
			UserMessage("hi"),
			{Role: RoleUser},
		})
		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if ve.Index != 1 {
			t.Errorf("Index = %d, want 1", ve.Index)
		}
	})
}

// TestMessagesValidateToolPairing 测试 tool 消息必须回应前文 tool call
func TestMessagesValidateToolPairing(t *testing.T) {
	t.Parallel()

	call := ToolCall{ID: "call_1", Function: FunctionCall{Name: "get_weather"}}

	tests := []struct {
		name    string
		msgs    Messages
		wantErr bool
	}{
		{
			name: "tool answers a preceding call",
			msgs: Messages{
				UserMessage("weather in Paris?"),
				AssistantToolCalls(call),
				ToolResultMessage("call_1", "sunny"),
			},
			wantErr: false,
		},
		{
			name: "tool with unknown id",
			msgs: Messages{
				UserMessage("weather?"),
				AssistantToolCalls(call),
				ToolResultMessage("call_9", "sunny"),
			},
			wantErr: true,
		},
		{
			name: "tool before any call",
			msgs: Messages{
				ToolResultMessage("call_1", "sunny"),
			},
			wantErr: true,
		},
		{
			name: "same call in a later turn stays answerable",
			msgs: Messages{
				AssistantToolCalls(call),
				ToolResultMessage("call_1", "sunny"),
				AssistantMessage("it is sunny"),
				ToolResultMessage("call_1", "still sunny"),
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msgs.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMessageFromMap 测试 map 形式消息的规范化
func TestMessageFromMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "string content",
			in:   map[string]any{"role": "user", "content": "hi"},
			want: "hi",
		},
		{
			name: "part list content",
			in: map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": "a"},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://x.test/i.png"}},
					map[string]any{"type": "text", "text": "b"},
				},
			},
			want: "ab",
		},
		{
			name:    "missing role",
			in:      map[string]any{"content": "hi"},
			wantErr: true,
		},
		{
			name:    "unknown key is rejected",
			in:      map[string]any{"role": "user", "content": "hi", "contnet": "typo"},
			wantErr: true,
		},
		{
			name:    "unknown part type",
			in:      map[string]any{"role": "user", "content": []any{map[string]any{"type": "audio"}}},
			wantErr: true,
		},
		{
			name: "tool calls with string arguments",
			in: map[string]any{
				"role": "assistant",
				"tool_calls": []any{
					map[string]any{
						"id":       "call_1",
						"function": map[string]any{"name": "f", "arguments": `{"x":1}`},
					},
				},
			},
		},
		{
			name: "tool calls with map arguments",
			in: map[string]any{
				"role": "assistant",
				"tool_calls": []any{
					map[string]any{
						"id":       "call_1",
						"function": map[string]any{"name": "f", "arguments": map[string]any{"x": 1}},
					},
				},
			},
		},
		{
			name:    "role constraints still apply",
			in:      map[string]any{"role": "tool", "content": "42"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := MessageFromMap(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MessageFromMap() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.want != "" && msg.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", msg.Text(), tt.want)
			}
		})
	}
}

// TestMessagesFromMaps 测试批量规范化保持顺序并定位错误下标
func TestMessagesFromMaps(t *testing.T) {
	t.Parallel()

	t.Run("nil is rejected", func(t *testing.T) {
		_, err := MessagesFromMaps(nil)
		if !errors.Is(err, ErrNilMessages) {
			t.Errorf("MessagesFromMaps(nil) error = %v, want ErrNilMessages", err)
		}
	})

	t.Run("order is preserved", func(t *testing.T) {
		ms, err := MessagesFromMaps([]map[string]any{
			{"role": "system", "content": "be brief"},
			{"role": "user", "content": "hi"},
		})
		if err != nil {
			t.Fatalf("MessagesFromMaps() error = %v", err)
		}
		if ms[0].Role != RoleSystem || ms[1].Role != RoleUser {
			t.Errorf("roles = %v, %v", ms[0].Role, ms[1].Role)
		}
	})

	t.Run("error names the failing index", func(t *testing.T) {
		_, err := MessagesFromMaps([]map[string]any{
			{"role": "user", "content": "hi"},
			{"role": "user"},
		})
		ve, ok := AsValidationError(err)
		if !ok {
			t.Fatalf("error = %v, want *ValidationError", err)
		}
		if ve.Index != 1 {
			t.Errorf("Index = %d, want 1", ve.Index)
		}
	})
}
