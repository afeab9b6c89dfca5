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

// ChatCompletion runs a non-streaming chat completion against the named chat
// model, loading it on first use.
func (g *Gateway) ChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (resp types.ChatCompletionResponse, err error) {
	_, span := startSpan(ctx, "gateway.ChatCompletion", req.Model, catalog.Chat)
	defer func() { endSpan(span, err) }()

	if req.Stream {
		return resp, invalidInputError{msg: "streaming is not supported"}
	}
	path, ok := g.reg.Resolve(req.Model, catalog.Chat)
	if !ok {
		return resp, notFound(req.Model, catalog.Chat)
	}
	model, release, err := g.chat.Acquire(path)
	if err != nil {
		return resp, runtimeError("", err)
	}
	defer release()
	cm, ok := model.(engine.ChatModel)
	if !ok {
		return resp, upstreamError{msg: "model does not support chat completion", err: errors.New(path)}
	}

	temperature := g.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := g.maxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	native, err := inference.GenerateCompletion(cm, req.Messages, temperature, maxTokens, req.Tools)
	if err != nil {
		g.log.Error().Err(err).Str("model", req.Model).Msg("chat completion failed")
		return resp, runtimeError("", err)
	}
	resp = inference.ParseModelResponse(native)
	resp.Model = req.Model
	if len(resp.Choices) > 0 {
		span.SetAttributes(
			attribute.String("llm.finish_reason", resp.Choices[0].FinishReason),
			attribute.Int("llm.tool_calls", len(resp.Choices[0].ToolCalls)),
		)
	}
	span.SetAttributes(attribute.Int("llm.total_tokens", resp.Usage.TotalTokens))
	return resp, nil
}
