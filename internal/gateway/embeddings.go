package gateway

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"llmserver/internal/catalog"
	"llmserver/internal/engine"
	"llmserver/internal/inference"
	"llmserver/pkg/types"
)

const embeddingErrPrefix = "Error generating embeddings"

// Embeddings embeds each input text with the named embedding model. The
// base64 encoding format is rejected before the model is resolved.
func (g *Gateway) Embeddings(ctx context.Context, req types.EmbeddingRequest) (resp types.EmbeddingResponse, err error) {
	_, span := startSpan(ctx, "gateway.Embeddings", req.Model, catalog.Embedding)
	defer func() { endSpan(span, err) }()

	if req.EncodingFormat == "base64" {
		return resp, invalidInputError{msg: "base64 encoding format is not yet supported. Use 'float' instead."}
	}
	path, ok := g.reg.Resolve(req.Model, catalog.Embedding)
	if !ok {
		return resp, notFound(req.Model, catalog.Embedding)
	}
	model, release, err := g.embed.Acquire(path)
	if err != nil {
		return resp, runtimeError(embeddingErrPrefix, err)
	}
	defer release()
	em, ok := model.(engine.EmbeddingModel)
	if !ok {
		return resp, upstreamError{msg: embeddingErrPrefix + ": model does not support embeddings", err: errors.New(path)}
	}

	texts := inference.NormalizeInput(req.Input)
	vectors, err := inference.GenerateEmbeddings(em, texts)
	if err != nil {
		return resp, runtimeError(embeddingErrPrefix, err)
	}
	tokens, err := inference.CountTokens(em, texts)
	if err != nil {
		return resp, runtimeError(embeddingErrPrefix, err)
	}

	data := make([]types.EmbeddingData, len(vectors))
	for i, v := range vectors {
		data[i] = types.EmbeddingData{Object: "embedding", Embedding: v, Index: i}
	}
	span.SetAttributes(attribute.Int("llm.inputs", len(texts)), attribute.Int("llm.prompt_tokens", tokens))
	return types.EmbeddingResponse{
		Object: "list",
		Data:   data,
		Model:  req.Model,
		Usage:  types.EmbeddingUsage{PromptTokens: tokens, TotalTokens: tokens},
	}, nil
}
