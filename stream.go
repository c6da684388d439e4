package orpheus

import (
	"encoding/json"
	"io"
	"iter"
	"strings"

	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
)

// Stream yields completion chunks until io.EOF.
//
// A normal end returns io.EOF from Next, and keeps returning it. A failed
// stream returns a *StreamError, and keeps returning the same one. Close
// is idempotent and safe after either outcome.
type Stream struct {
	src core.ChunkSource

	done bool
	err  error
}

func newStream(src core.ChunkSource) *Stream {
	return &Stream{src: src}
}

// Next returns the next chunk.
func (s *Stream) Next() (schema.CompletionChunk, error) {
	if s.err != nil {
		return schema.CompletionChunk{}, s.err
	}
	if s.done {
		return schema.CompletionChunk{}, io.EOF
	}

	chunk, err := s.src.Next()
	if err == io.EOF {
		s.done = true
		return schema.CompletionChunk{}, io.EOF
	}
	if err != nil {
		s.err = &StreamError{Cause: err}
		s.src.Close()
		return schema.CompletionChunk{}, s.err
	}
	return chunk, nil
}

// Close releases the stream. Chunks already delivered stay valid.
func (s *Stream) Close() error {
	if s.done || s.err != nil {
		return nil
	}
	s.done = true
	return s.src.Close()
}

// All returns an iterator over the remaining chunks. The stream is closed
// when the loop ends, including early breaks. A mid-stream failure yields
// one final (zero chunk, *StreamError) pair.
func (s *Stream) All() iter.Seq2[schema.CompletionChunk, error] {
	return func(yield func(schema.CompletionChunk, error) bool) {
		defer s.Close()
		for {
			chunk, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(schema.CompletionChunk{}, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Collect drains the stream and assembles the chunks into a Completion,
// concatenating text deltas and tool call fragments per choice.
func (s *Stream) Collect() (*schema.Completion, error) {
	defer s.Close()

	var acc accumulator
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		acc.apply(chunk)
	}
	return acc.completion(), nil
}

type toolCallAcc struct {
	id   string
	name string
	args strings.Builder
}

type choiceAcc struct {
	text         strings.Builder
	finishReason schema.FinishReason
	toolCalls    []*toolCallAcc
}

// accumulator 把分片流折叠成一个完整的 Completion
type accumulator struct {
	id      string
	object  string
	created int64
	model   string

	usage   *schema.Usage
	choices []*choiceAcc
}

func (a *accumulator) apply(chunk schema.CompletionChunk) {
	if a.id == "" {
		a.id = chunk.ID
		a.created = chunk.Created
		a.model = chunk.Model
	}
	a.object = "chat.completion"
	if chunk.Usage != nil {
		u := *chunk.Usage
		a.usage = &u
	}

	for _, c := range chunk.Choices {
		ch := a.choice(c.Index)
		ch.text.WriteString(c.Delta.Content)
		if c.FinishReason != "" {
			ch.finishReason = c.FinishReason
		}

		for _, td := range c.Delta.ToolCalls {
			for len(ch.toolCalls) <= td.Index {
				ch.toolCalls = append(ch.toolCalls, &toolCallAcc{})
			}
			tc := ch.toolCalls[td.Index]
			if td.ID != "" {
				tc.id = td.ID
			}
			if td.Function.Name != "" {
				tc.name = td.Function.Name
			}
			tc.args.WriteString(td.Function.Arguments)
		}
	}
}

func (a *accumulator) choice(index int) *choiceAcc {
	for len(a.choices) <= index {
		a.choices = append(a.choices, &choiceAcc{})
	}
	return a.choices[index]
}

func (a *accumulator) completion() *schema.Completion {
	out := &schema.Completion{
		ID:      a.id,
		Object:  a.object,
		Created: a.created,
		Model:   a.model,
	}
	if a.usage != nil {
		out.Usage = *a.usage
	}

	for i, ch := range a.choices {
		msg := schema.Message{Role: schema.RoleAssistant}
		if text := ch.text.String(); text != "" {
			msg.Content = schema.Text(text)
		}

		for _, tc := range ch.toolCalls {
			call := schema.ToolCall{ID: tc.id}
			call.Function.Name = tc.name
			// 尽力而为：片段拼完不是合法 JSON 就留空参数
			if args := tc.args.String(); args != "" && json.Valid([]byte(args)) {
				_ = json.Unmarshal([]byte(args), &call.Function.Arguments)
			}
			msg.ToolCalls = append(msg.ToolCalls, call)
		}

		out.Choices = append(out.Choices, schema.Choice{
			Index:        i,
			Message:      msg,
			FinishReason: ch.finishReason,
		})
	}
	return out
}
