//go:build llama

package engine

import (
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// llamaModel owns one loaded llama.cpp context. Calls are serialized because
// a context cannot run two predictions at once.
type llamaModel struct {
	mu    sync.Mutex
	model *llama.LLama
	path  string
	opts  Options
}

func openLlama(path string, opts Options) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(opts.ContextSize),
		llama.SetGPULayers(opts.GPULayers),
	}
	if opts.Embedding {
		mo = append(mo, llama.EnableEmbeddings)
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaModel{model: m, path: path, opts: opts}, nil
}

func (m *llamaModel) predictOptions(extra ...llama.PredictOption) []llama.PredictOption {
	po := []llama.PredictOption{llama.SetThreads(max(1, m.opts.Threads))}
	if m.opts.Verbose {
		po = append(po, llama.Debug)
	}
	return append(po, extra...)
}

func (m *llamaModel) CreateChatCompletion(req ChatRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	prompt := FormatQwen(req.Messages, req.Tools)
	text, err := m.model.Predict(prompt, m.predictOptions(
		llama.SetTokens(max(1, req.MaxTokens)),
		llama.SetTemperature(float32(req.Temperature)),
		llama.SetStopWords(QwenStopWords...),
	)...)
	if err != nil {
		return nil, err
	}
	promptTokens, _, err := m.model.TokenizeString(prompt, m.predictOptions()...)
	if err != nil {
		return nil, err
	}
	completionTokens, _, err := m.model.TokenizeString(text, m.predictOptions()...)
	if err != nil {
		return nil, err
	}
	return BuildChatResponse(m.path, Generation{
		Text:             text,
		PromptTokens:     int(promptTokens),
		CompletionTokens: int(completionTokens),
		MaxTokens:        req.MaxTokens,
	})
}

func (m *llamaModel) Embed(text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	return m.model.Embeddings(text, m.predictOptions()...)
}

func (m *llamaModel) Tokenize(text string) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	_, toks, err := m.model.TokenizeString(text, m.predictOptions()...)
	return toks, err
}

func (m *llamaModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model != nil {
		m.model.Free()
		m.model = nil
	}
	return nil
}
