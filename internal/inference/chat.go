package inference

import (
	"bytes"
	"encoding/json"

	"llmserver/internal/engine"
	"llmserver/pkg/types"
)

// GenerateCompletion runs one blocking chat completion against model and
// returns the validated native response.
func GenerateCompletion(model engine.ChatModel, msgs []types.ChatMessage, temperature float64, maxTokens int, tools []types.Tool) (*NativeChatResponse, error) {
	req := engine.ChatRequest{
		Messages:    toNativeMessages(msgs),
		Tools:       toNativeTools(tools),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	raw, err := model.CreateChatCompletion(req)
	if err != nil {
		return nil, err
	}
	return DecodeNativeChat(raw)
}

func toNativeMessages(msgs []types.ChatMessage) []engine.Message {
	out := make([]engine.Message, 0, len(msgs))
	for _, m := range msgs {
		nm := engine.Message{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			nm.ToolCalls = append(nm.ToolCalls, engine.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments})
		}
		out = append(out, nm)
	}
	return out
}

func toNativeTools(tools []types.Tool) []engine.ToolSpec {
	if len(tools) == 0 {
		return nil
	}
	out := make([]engine.ToolSpec, 0, len(tools))
	for _, t := range tools {
		out = append(out, engine.ToolSpec{
			Type: "function",
			Function: engine.FunctionSpec{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

// ParseModelResponse converts choice 0 of a native response into the public
// schema. Tool call arguments always come out as a JSON string; content
// defaults to "".
func ParseModelResponse(resp *NativeChatResponse) types.ChatCompletionResponse {
	ch := resp.Choices[0]
	msg := types.ChatMessage{Role: ch.Message.Role}
	if ch.Message.Content != nil {
		msg.Content = *ch.Message.Content
	}
	var calls []types.ToolCall
	for _, tc := range ch.Message.ToolCalls {
		calls = append(calls, types.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: types.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: argumentsJSON(tc.Function.Arguments),
			},
		})
	}
	msg.ToolCalls = calls
	return types.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: resp.Created,
		Model:   resp.Model,
		Choices: []types.ChatChoice{{
			Index:        *ch.Index,
			Message:      msg,
			FinishReason: *ch.FinishReason,
			ToolCalls:    calls,
		}},
		Usage: types.Usage{
			PromptTokens:     *resp.Usage.PromptTokens,
			CompletionTokens: *resp.Usage.CompletionTokens,
			TotalTokens:      *resp.Usage.TotalTokens,
		},
	}
}

// argumentsJSON returns raw as a JSON document string. A JSON string holding
// valid JSON is passed through unchanged; an object is compacted; anything
// else is encoded as a JSON string literal. Missing or null arguments become
// an empty object.
func argumentsJSON(raw json.RawMessage) string {
	if isNullJSON(raw) {
		return "{}"
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if isNullJSON([]byte(s)) {
				return "{}"
			}
			if json.Valid([]byte(s)) {
				return s
			}
			b, _ := json.Marshal(s)
			return string(b)
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}

func isNullJSON(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || string(b) == "null"
}
