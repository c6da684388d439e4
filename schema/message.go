package schema

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid 判断 role 是否属于四个合法取值之一
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Part 是消息内容片段的封闭联合类型（文本或图片）
//
// 新增片段类型必须同时更新 Content 的序列化与所有 switch 分支。
type Part interface {
	isPart()
}

type TextContent struct {
	Text string
}

func (TextContent) isPart() {}

type ImageContent struct {
	URL    string
	Detail string
}

func (ImageContent) isPart() {}

// Content 表示消息内容：纯字符串或有序的 Part 序列。
//
// 两种形态在序列化时保持原样：字符串序列化为 JSON string，
// Part 序列（即使为空）序列化为数组，顺序与构造时一致。
type Content struct {
	str     string
	isStr   bool
	parts   []Part
	isParts bool
}

// Text 构造字符串形态的内容
func Text(s string) Content {
	return Content{str: s, isStr: true}
}

// Parts 构造片段序列形态的内容；零个片段也是合法内容
func Parts(ps ...Part) Content {
	out := make([]Part, len(ps))
	copy(out, ps)
	return Content{parts: out, isParts: true}
}

// IsZero 报告内容是否缺失（既非字符串也非片段序列）
func (c Content) IsZero() bool { return !c.isStr && !c.isParts }

// Text returns the rendered plain text: the string itself, or the
// concatenation of all text parts.
func (c Content) Text() string {
	if c.isStr {
		return c.str
	}
	var b []byte
	for _, p := range c.parts {
		if tp, ok := p.(TextContent); ok && tp.Text != "" {
			b = append(b, tp.Text...)
		}
	}
	return string(b)
}

// Parts returns the part sequence, or nil for string content.
func (c Content) Parts() []Part {
	if !c.isParts {
		return nil
	}
	out := make([]Part, len(c.parts))
	copy(out, c.parts)
	return out
}

// IsString reports whether the content was authored as a plain string.
func (c Content) IsString() bool { return c.isStr }

type wirePart struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.isStr {
		return json.Marshal(c.str)
	}
	out := make([]wirePart, 0, len(c.parts))
	for _, p := range c.parts {
		switch part := p.(type) {
		case TextContent:
			out = append(out, wirePart{Type: "text", Text: part.Text})
		case ImageContent:
			out = append(out, wirePart{Type: "image_url", ImageURL: &wireImageURL{URL: part.URL, Detail: part.Detail}})
		default:
			return nil, fmt.Errorf("schema: unsupported content part type %T", p)
		}
	}
	return json.Marshal(out)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*c = Content{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	case '[':
		var wire []wirePart
		if err := json.Unmarshal(data, &wire); err != nil {
			return err
		}
		parts := make([]Part, 0, len(wire))
		for _, p := range wire {
			switch p.Type {
			case "text", "":
				parts = append(parts, TextContent{Text: p.Text})
			case "image_url":
				if p.ImageURL == nil {
					return fmt.Errorf("schema: image_url part without image_url object")
				}
				parts = append(parts, ImageContent{URL: p.ImageURL.URL, Detail: p.ImageURL.Detail})
			default:
				return fmt.Errorf("schema: unknown content part type %q", p.Type)
			}
		}
		*c = Content{parts: parts, isParts: true}
		return nil
	default:
		return fmt.Errorf("schema: content must be a string or an array of parts")
	}
}

// FunctionCall 是模型请求调用的函数：名称 + JSON 兼容的参数映射
type FunctionCall struct {
	Name      string
	Arguments map[string]any
}

// ToolCall 是模型发起的一次工具调用
type ToolCall struct {
	ID       string
	Function FunctionCall
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// MarshalJSON emits the OpenAI wire form, where arguments are a JSON
// document encoded as a string.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	args, err := json.Marshal(tc.Function.Arguments)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal tool call %q arguments: %w", tc.ID, err)
	}

	var out wireToolCall
	out.ID = tc.ID
	out.Type = "function"
	out.Function.Name = tc.Function.Name
	out.Function.Arguments = string(args)
	return json.Marshal(out)
}

func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var in wireToolCall
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	out := ToolCall{ID: in.ID}
	out.Function.Name = in.Function.Name
	if s := in.Function.Arguments; s != "" && s != "null" {
		if err := json.Unmarshal([]byte(s), &out.Function.Arguments); err != nil {
			return fmt.Errorf("schema: tool call %q arguments are not valid JSON: %w", in.ID, err)
		}
	}
	*tc = out
	return nil
}

// Message 表示一条对话消息。构造后不再修改；Validate 不会改变消息本身。
type Message struct {
	Role    Role
	Content Content

	// ToolCalls 仅对 assistant 角色有意义
	ToolCalls []ToolCall

	// ToolID 是 tool 角色消息对其回应的 ToolCall.ID 的反向引用
	ToolID string
}

type wireMessage struct {
	Role      Role       `json:"role"`
	Content   *Content   `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	ToolID    string     `json:"tool_call_id,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := wireMessage{
		Role:      m.Role,
		ToolCalls: m.ToolCalls,
		ToolID:    m.ToolID,
	}
	if !m.Content.IsZero() {
		c := m.Content
		out.Content = &c
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in wireMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := Message{
		Role:      in.Role,
		ToolCalls: in.ToolCalls,
		ToolID:    in.ToolID,
	}
	if in.Content != nil {
		out.Content = *in.Content
	}
	*m = out
	return nil
}

// Text returns the rendered plain text of the message content.
func (m Message) Text() string { return m.Content.Text() }

// Validate 校验单条消息。校验是幂等的：对已通过校验的消息再次调用
// 结果不变。跨消息的约束（tool 消息必须回应前文的 tool call）由
// Messages.Validate 负责。
//
// 约束取舍：user/system 消息的 content 为必填；缺失是校验错误而不是
// 宽松接受（上游数据里两种行为都出现过，这里选择严格的一种）。
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return &ValidationError{Index: -1, Role: m.Role, Reason: fmt.Sprintf("unknown role %q", m.Role)}
	}

	switch m.Role {
	case RoleSystem, RoleUser:
		if m.Content.IsZero() {
			return &ValidationError{Index: -1, Role: m.Role, Reason: "content is required"}
		}
	case RoleAssistant:
		if m.Content.IsZero() && len(m.ToolCalls) == 0 {
			return &ValidationError{Index: -1, Role: m.Role, Reason: "content or tool_calls is required"}
		}
	case RoleTool:
		if m.Content.IsZero() {
			return &ValidationError{Index: -1, Role: m.Role, Reason: "content is required"}
		}
		if m.ToolID == "" {
			return &ValidationError{Index: -1, Role: m.Role, Reason: "tool_id is required"}
		}
	}
	return nil
}
