package orpheus

import (
	"context"
	"fmt"

	"github.com/ajac-zero/orpheus/core"
	"github.com/ajac-zero/orpheus/schema"
)

// EmbeddingsService issues embeddings requests.
type EmbeddingsService struct {
	client *Client
}

// Create embeds the input. Input is one of schema.InputText,
// schema.InputTexts, schema.InputTokens or schema.InputTokenBatches.
func (s *EmbeddingsService) Create(ctx context.Context, model string, input schema.EmbeddingInput, opts ...RequestOption) (*schema.Embeddings, error) {
	if input == nil {
		return nil, fmt.Errorf("orpheus: embedding input is required")
	}

	cfg := applyRequestOptions(opts)
	return s.client.core.CreateEmbeddings(ctx, core.EmbeddingsRequest{
		Model:          model,
		Input:          input,
		Dimensions:     cfg.dimensions,
		EncodingFormat: cfg.encodingFormat,
		User:           cfg.user,
		ExtraHeaders:   cfg.extraHeaders,
		ExtraQuery:     cfg.extraQuery,
		Extra:          cfg.extra,
	})
}
