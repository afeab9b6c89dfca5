package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ChatMessage is a single OpenAI-style conversation turn.
type ChatMessage struct {
	// Role of the author: system, user, assistant or tool.
	// example: user
	Role string `json:"role" validate:"required,oneof=system user assistant tool" example:"user"`
	// Text content. An empty string is valid and is forwarded as-is.
	// example: What's the weather in Paris?
	Content string `json:"content" example:"What's the weather in Paris?"`
	// Optional tool name for role=tool messages.
	Name string `json:"name,omitempty"`
	// Optional id of the tool call this message answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
	// Tool calls previously emitted by the assistant, echoed back by agent loops.
	ToolCalls []ToolCall `json:"tool_calls,omitempty" validate:"omitempty,dive"`
}

// FunctionDefinition describes a callable function exposed to the model.
type FunctionDefinition struct {
	// example: get_weather
	Name string `json:"name" validate:"required" example:"get_weather"`
	// example: Get the current weather for a location
	Description string `json:"description,omitempty" example:"Get the current weather for a location"`
	// JSON-schema object describing the arguments.
	Parameters map[string]any `json:"parameters,omitempty" swaggertype:"object"`
}

// Tool is an OpenAI tool definition. Only type "function" is supported.
type Tool struct {
	// example: function
	Type     string             `json:"type" validate:"required,eq=function" example:"function"`
	Function FunctionDefinition `json:"function" validate:"required"`
}

// FunctionCall is the function payload of a tool call.
type FunctionCall struct {
	// example: get_weather
	Name string `json:"name" validate:"required" example:"get_weather"`
	// JSON-encoded arguments object.
	// example: {"location": "Paris, France"}
	Arguments string `json:"arguments" example:"{\"location\": \"Paris, France\"}"`
}

// ToolCall is a structured function invocation emitted by the model.
type ToolCall struct {
	// example: call_9f2c1d
	ID string `json:"id" validate:"required" example:"call_9f2c1d"`
	// example: function
	Type     string       `json:"type" validate:"required" example:"function"`
	Function FunctionCall `json:"function" validate:"required"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions.
type ChatCompletionRequest struct {
	// Name of a chat model present under the chat models directory (file stem).
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Model string `json:"model" validate:"required" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	// Conversation so far.
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	// Sampling temperature; the server default applies when omitted.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2" example:"0.7"`
	// Maximum number of tokens to generate; the server default applies when omitted.
	// example: 512
	MaxTokens *int `json:"max_tokens,omitempty" validate:"omitempty,gt=0" example:"512"`
	// Tools the model may call.
	Tools []Tool `json:"tools,omitempty" validate:"omitempty,dive"`
	// Accepted for compatibility and ignored.
	ToolChoice any `json:"tool_choice,omitempty" swaggertype:"object"`
	// Streaming is not supported and must be false.
	Stream bool `json:"stream,omitempty"`
}

// ChatChoice is one completion alternative. Only index 0 is ever produced.
type ChatChoice struct {
	// example: 0
	Index   int         `json:"index" example:"0"`
	Message ChatMessage `json:"message"`
	// Opaque reason reported by the runtime: stop, tool_calls or length.
	// example: stop
	FinishReason string `json:"finish_reason" example:"stop"`
	// Tool calls, mirrored from message.tool_calls.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Usage holds token accounting for a chat completion.
type Usage struct {
	// example: 24
	PromptTokens int `json:"prompt_tokens" example:"24"`
	// example: 12
	CompletionTokens int `json:"completion_tokens" example:"12"`
	// example: 36
	TotalTokens int `json:"total_tokens" example:"36"`
}

// ChatCompletionResponse is returned by POST /v1/chat/completions.
type ChatCompletionResponse struct {
	// example: chatcmpl-5b1c0e8e-8a63-4d3f-9f7e-2b0f7a0f6c11
	ID string `json:"id" example:"chatcmpl-5b1c0e8e-8a63-4d3f-9f7e-2b0f7a0f6c11"`
	// example: chat.completion
	Object string `json:"object" example:"chat.completion"`
	// Unix seconds.
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// example: Qwen3-4B-Instruct-2507-Q4_K_M
	Model   string       `json:"model" example:"Qwen3-4B-Instruct-2507-Q4_K_M"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// EmbeddingInput accepts either a single string or a list of strings.
type EmbeddingInput []string

// UnmarshalJSON decodes a JSON string or array of strings.
func (in *EmbeddingInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*in = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*in = EmbeddingInput{s}
		return nil
	}
	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if list == nil {
			list = []string{}
		}
		*in = EmbeddingInput(list)
		return nil
	}
	return errors.New("input must be a string or an array of strings")
}

// EmbeddingRequest is the body of POST /v1/embeddings.
type EmbeddingRequest struct {
	// A string or a list of strings to embed.
	Input EmbeddingInput `json:"input" validate:"required" swaggertype:"array,string"`
	// Name of an embedding model present under the embed models directory (file stem).
	// example: Qwen3-Embedding-4B-Q4_K_M
	Model string `json:"model" validate:"required" example:"Qwen3-Embedding-4B-Q4_K_M"`
	// Output encoding. Only float is implemented; base64 is rejected.
	// example: float
	EncodingFormat string `json:"encoding_format,omitempty" validate:"omitempty,oneof=float base64" example:"float"`
}

// EmbeddingData is one vector in an embedding response.
type EmbeddingData struct {
	// example: embedding
	Object    string    `json:"object" example:"embedding"`
	Embedding []float32 `json:"embedding"`
	// example: 0
	Index int `json:"index" example:"0"`
}

// EmbeddingUsage reports prompt token counts for an embedding request.
type EmbeddingUsage struct {
	// example: 8
	PromptTokens int `json:"prompt_tokens" example:"8"`
	// example: 8
	TotalTokens int `json:"total_tokens" example:"8"`
}

// EmbeddingResponse is returned by POST /v1/embeddings.
type EmbeddingResponse struct {
	// example: list
	Object string          `json:"object" example:"list"`
	Data   []EmbeddingData `json:"data"`
	// example: Qwen3-Embedding-4B-Q4_K_M
	Model string         `json:"model" example:"Qwen3-Embedding-4B-Q4_K_M"`
	Usage EmbeddingUsage `json:"usage"`
}
