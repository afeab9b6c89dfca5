package engine

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Finish reasons reported by the runtime.
const (
	FinishStop      = "stop"
	FinishLength    = "length"
	FinishToolCalls = "tool_calls"
)

type nativeFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type nativeToolCall struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function nativeFunction `json:"function"`
}

type nativeMessage struct {
	Role      string           `json:"role"`
	Content   *string          `json:"content"`
	ToolCalls []nativeToolCall `json:"tool_calls,omitempty"`
}

type nativeChoice struct {
	Index        int           `json:"index"`
	Message      nativeMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type nativeUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type nativeResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []nativeChoice `json:"choices"`
	Usage   nativeUsage    `json:"usage"`
}

// Generation is the raw outcome of one chat prediction.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	MaxTokens        int
}

// BuildChatResponse assembles the native chat completion document for a
// generation produced by model. Tool calls get fresh ids and their arguments
// are encoded as JSON strings. A null content is emitted when the model only
// produced tool calls.
func BuildChatResponse(model string, g Generation) ([]byte, error) {
	content, calls := ParseQwenOutput(g.Text)
	msg := nativeMessage{Role: "assistant"}
	if content != "" || len(calls) == 0 {
		msg.Content = &content
	}
	for _, c := range calls {
		msg.ToolCalls = append(msg.ToolCalls, nativeToolCall{
			ID:       "call_" + uuid.NewString(),
			Type:     "function",
			Function: nativeFunction{Name: c.Name, Arguments: argumentsString(c.Arguments)},
		})
	}
	finish := FinishStop
	switch {
	case len(calls) > 0:
		finish = FinishToolCalls
	case g.MaxTokens > 0 && g.CompletionTokens >= g.MaxTokens:
		finish = FinishLength
	}
	resp := nativeResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []nativeChoice{{Index: 0, Message: msg, FinishReason: finish}},
		Usage: nativeUsage{
			PromptTokens:     g.PromptTokens,
			CompletionTokens: g.CompletionTokens,
			TotalTokens:      g.PromptTokens + g.CompletionTokens,
		},
	}
	return json.Marshal(resp)
}

// argumentsString returns raw as a compact JSON string. Arguments that the
// model already quoted are unwrapped once.
func argumentsString(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && json.Valid([]byte(s)) {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}
