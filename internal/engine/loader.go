package engine

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ChatFormatQwen is the prompt template chat handles render with.
const ChatFormatQwen = "qwen"

// Loader constructs model handles from artifact paths.
type Loader interface {
	Load(path string) (Model, error)
}

// LlamaLoader opens artifacts with the llama.cpp runtime after a GGUF preflight.
type LlamaLoader struct {
	opts Options
	log  zerolog.Logger
}

// NewLlamaLoader returns a loader using opts for every handle it constructs.
func NewLlamaLoader(opts Options, log zerolog.Logger) *LlamaLoader {
	return &LlamaLoader{opts: opts, log: log.With().Str("component", "engine").Logger()}
}

// Load implements Loader.
func (l *LlamaLoader) Load(path string) (Model, error) {
	if !l.opts.Embedding && l.opts.ChatFormat != "" && l.opts.ChatFormat != ChatFormatQwen {
		return nil, fmt.Errorf("unsupported chat format %q", l.opts.ChatFormat)
	}
	md, err := Inspect(path)
	if err != nil {
		return nil, invalidModelError{path: path, err: err}
	}
	l.log.Info().
		Str("path", path).
		Str("arch", md.Architecture).
		Str("params", md.Parameters).
		Str("file_type", md.FileType).
		Int("n_ctx", l.opts.ContextSize).
		Int("n_gpu_layers", l.opts.GPULayers).
		Bool("embedding", l.opts.Embedding).
		Msg("opening model")
	return openLlama(path, l.opts)
}

// Built reports whether the llama runtime was compiled in.
func Built() bool { return llamaBuilt }
