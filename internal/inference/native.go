package inference

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// NativeChatResponse is the strict schema of a runtime chat completion.
// Every field is required; a document missing any of them is rejected.
type NativeChatResponse struct {
	ID      string         `json:"id" validate:"required"`
	Object  string         `json:"object" validate:"required"`
	Created int64          `json:"created" validate:"required"`
	Model   string         `json:"model" validate:"required"`
	Choices []NativeChoice `json:"choices" validate:"required,min=1,dive"`
	Usage   *NativeUsage   `json:"usage" validate:"required"`
}

type NativeChoice struct {
	Index        *int           `json:"index" validate:"required"`
	Message      *NativeMessage `json:"message" validate:"required"`
	FinishReason *string        `json:"finish_reason" validate:"required"`
}

type NativeMessage struct {
	Role      string           `json:"role" validate:"required"`
	Content   *string          `json:"content"`
	ToolCalls []NativeToolCall `json:"tool_calls" validate:"omitempty,dive"`
}

type NativeToolCall struct {
	ID       string         `json:"id" validate:"required"`
	Type     string         `json:"type" validate:"required"`
	Function NativeFunction `json:"function"`
}

// NativeFunction keeps arguments raw: runtimes deliver either a JSON string
// or an already-decoded object.
type NativeFunction struct {
	Name      string          `json:"name" validate:"required"`
	Arguments json.RawMessage `json:"arguments" validate:"required"`
}

type NativeUsage struct {
	PromptTokens     *int `json:"prompt_tokens" validate:"required"`
	CompletionTokens *int `json:"completion_tokens" validate:"required"`
	TotalTokens      *int `json:"total_tokens" validate:"required"`
}

var validate = validator.New()

// malformedResponseError marks a native document that does not match the schema.
type malformedResponseError struct{ err error }

func (e malformedResponseError) Error() string { return "malformed model response: " + e.err.Error() }

func (e malformedResponseError) Unwrap() error { return e.err }

// IsMalformedResponse reports whether err came from schema validation.
func IsMalformedResponse(err error) bool {
	var e malformedResponseError
	return errors.As(err, &e)
}

// DecodeNativeChat parses and validates a native chat completion document.
func DecodeNativeChat(raw []byte) (*NativeChatResponse, error) {
	var resp NativeChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, malformedResponseError{err: fmt.Errorf("decode: %w", err)}
	}
	if err := validate.Struct(&resp); err != nil {
		return nil, malformedResponseError{err: err}
	}
	return &resp, nil
}
