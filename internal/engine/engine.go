package engine

// Model is a loaded artifact. Close releases native memory.
type Model interface {
	Close() error
}

// ChatModel runs chat completions and returns the native response document as JSON.
type ChatModel interface {
	Model
	CreateChatCompletion(req ChatRequest) ([]byte, error)
}

// EmbeddingModel produces one vector per text.
type EmbeddingModel interface {
	Model
	Embed(text string) ([]float32, error)
	Tokenize(text string) ([]int32, error)
}

// Message is a chat turn in the runtime's calling convention.
type Message struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []FunctionCall `json:"tool_calls,omitempty"`
}

// FunctionCall is a tool invocation echoed back in the conversation.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// FunctionSpec describes a callable function.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolSpec wraps a FunctionSpec as {type:"function", function:{...}}.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// ChatRequest is a single blocking chat completion call.
type ChatRequest struct {
	Messages    []Message
	Tools       []ToolSpec
	Temperature float64
	MaxTokens   int
}

// Options are the per-class construction parameters of a model handle.
type Options struct {
	ContextSize int
	GPULayers   int
	Threads     int
	Verbose     bool
	// ChatFormat names the prompt template for chat handles. Empty means
	// ChatFormatQwen, the only template implemented.
	ChatFormat string
	// Embedding opens the handle in embedding-output mode.
	Embedding bool
}
