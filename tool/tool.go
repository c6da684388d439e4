// Package tool 将 Go 类型映射为 chat 请求中的函数工具声明。
package tool

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool 是工具声明的封闭联合类型：类型化的 Definition 或原样透传的 Raw。
type Tool interface {
	isTool()
}

// Definition 是一条类型化的函数工具声明。Parameters 为参数的
// JSON Schema；Strict 要求 provider 严格按 schema 产出调用参数。
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Strict      bool
}

func (Definition) isTool() {}

// Raw 是未经解释的工具声明，按 map 原样写入请求体。
// 用于 Definition 覆盖不到的 provider 扩展。
type Raw map[string]any

func (Raw) isTool() {}

// Describer 为工具参数类型提供人类可读的说明。按 Go 方法集取值，
// 嵌入提升的实现同样生效；用 WithDescription 可覆盖。
type Describer interface {
	ToolDescription() string
}

// Option 调整 FromStruct 生成的声明
type Option func(*Definition)

// WithName 覆盖默认的类型名
func WithName(name string) Option {
	return func(d *Definition) { d.Name = name }
}

// WithDescription 覆盖（或补充）工具说明
func WithDescription(desc string) Option {
	return func(d *Definition) { d.Description = desc }
}

// FromStruct reflects T into a function tool declaration.
//
// The tool name defaults to the type name, the description to the type's
// own Describer implementation when present, and Strict is always set.
func FromStruct[T any](opts ...Option) (Definition, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return Definition{}, fmt.Errorf("tool: reflect %v: %w", reflect.TypeFor[T](), err)
	}
	// $schema 属于文档级元数据，请求体里不带
	s.Schema = ""

	def := Definition{
		Name:       reflect.TypeFor[T]().Name(),
		Parameters: s,
		Strict:     true,
	}

	var zero T
	if d, ok := any(zero).(Describer); ok {
		def.Description = d.ToolDescription()
	}

	for _, opt := range opts {
		opt(&def)
	}

	if def.Name == "" {
		return Definition{}, fmt.Errorf("tool: type %v has no name, use WithName", reflect.TypeFor[T]())
	}
	return def, nil
}

type wireFunction struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
	Strict      bool               `json:"strict,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

// MarshalJSON emits the OpenAI wire form of the declaration.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTool{
		Type: "function",
		Function: wireFunction{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
			Strict:      d.Strict,
		},
	})
}

// Marshal 将工具列表序列化为请求体里的 tools 数组，保持顺序。
// 空列表返回 nil，表示请求不带 tools 键。
func Marshal(tools []Tool) (json.RawMessage, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	out := make([]json.RawMessage, 0, len(tools))
	for i, t := range tools {
		switch v := t.(type) {
		case Definition:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("tool: marshal tool %d (%s): %w", i, v.Name, err)
			}
			out = append(out, data)
		case Raw:
			data, err := json.Marshal(map[string]any(v))
			if err != nil {
				return nil, fmt.Errorf("tool: marshal raw tool %d: %w", i, err)
			}
			out = append(out, data)
		default:
			return nil, fmt.Errorf("tool: unsupported tool type %T", t)
		}
	}
	return json.Marshal(out)
}
