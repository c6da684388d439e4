package orpheus

import (
	"context"

	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
	"github.com/ajac-zero/orpheus/tool"
)

// CompletionsService issues chat completion requests.
type CompletionsService struct {
	client *Client
}

func (s *CompletionsService) buildRequest(model string, messages schema.Messages, cfg requestConfig) (core.CompletionRequest, error) {
	if messages == nil {
		return core.CompletionRequest{}, schema.ErrNilMessages
	}
	if err := messages.Validate(); err != nil {
		return core.CompletionRequest{}, err
	}

	tools, err := tool.Marshal(cfg.tools)
	if err != nil {
		return core.CompletionRequest{}, err
	}

	return core.CompletionRequest{
		Model:        model,
		Messages:     messages,
		Tools:        tools,
		ExtraHeaders: cfg.extraHeaders,
		ExtraQuery:   cfg.extraQuery,
		Extra:        cfg.extra,
	}, nil
}

// Create requests a completion and waits for the full response.
func (s *CompletionsService) Create(ctx context.Context, model string, messages schema.Messages, opts ...RequestOption) (*schema.Completion, error) {
	req, err := s.buildRequest(model, messages, applyRequestOptions(opts))
	if err != nil {
		return nil, err
	}
	return s.client.core.CreateChatCompletion(ctx, req)
}

// Stream requests a completion and returns chunks as they arrive. The
// caller owns the stream and must Close it unless it reads through to
// io.EOF or ranges over All.
func (s *CompletionsService) Stream(ctx context.Context, model string, messages schema.Messages, opts ...RequestOption) (*Stream, error) {
	req, err := s.buildRequest(model, messages, applyRequestOptions(opts))
	if err != nil {
		return nil, err
	}

	src, err := s.client.core.StreamChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	return newStream(src), nil
}
