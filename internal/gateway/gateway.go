package gateway

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"llmserver/internal/catalog"
	"llmserver/internal/common/fsutil"
	"llmserver/internal/download"
	"llmserver/internal/engine"
	"llmserver/internal/manager"
	"llmserver/internal/registry"
	"llmserver/pkg/types"
)

const (
	// Version is reported by the info endpoint.
	Version = "1.0.0"

	defaultTemperature = 0.7
	defaultMaxTokens   = 3000
)

var tracer = otel.Tracer("llmserver.gateway")

// Options wires a Gateway. Temperature and MaxTokens are the defaults applied
// when a chat request omits them.
type Options struct {
	Registry    *registry.Registry
	Downloads   *download.Coordinator
	Chat        *manager.Manager
	Embeddings  *manager.Manager
	Temperature float64
	MaxTokens   int
	Logger      zerolog.Logger
}

// Gateway serves the model management and inference operations.
type Gateway struct {
	reg         *registry.Registry
	downloads   *download.Coordinator
	chat        *manager.Manager
	embed       *manager.Manager
	temperature float64
	maxTokens   int
	log         zerolog.Logger
}

// New returns a Gateway over the given components.
func New(opts Options) *Gateway {
	g := &Gateway{
		reg:         opts.Registry,
		downloads:   opts.Downloads,
		chat:        opts.Chat,
		embed:       opts.Embeddings,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		log:         opts.Logger.With().Str("component", "gateway").Logger(),
	}
	if g.temperature < 0 {
		g.temperature = defaultTemperature
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	return g
}

func (g *Gateway) manager(c catalog.Class) *manager.Manager {
	if c == catalog.Embedding {
		return g.embed
	}
	return g.chat
}

// Info returns the banner served at the root path.
func (g *Gateway) Info() types.InfoResponse {
	return types.InfoResponse{Message: "LLM Server is running", Version: Version}
}

// Health always reports healthy once the process is serving.
func (g *Gateway) Health() types.HealthResponse {
	return types.HealthResponse{Status: "healthy"}
}

// Ready reports whether the models directory is present.
func (g *Gateway) Ready() bool {
	return fsutil.PathExists(g.reg.Root())
}

func notFound(name string, c catalog.Class) error {
	return notFoundError{msg: fmt.Sprintf("%s model '%s' not found in models directory. Please use %s to list available models.",
		c.Title(), name, c.ListingPath())}
}

// runtimeError maps a load or native failure to the gateway taxonomy,
// prefixing msg when non-empty.
func runtimeError(prefix string, err error) error {
	msg := err.Error()
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	if engine.IsDependencyUnavailable(err) {
		return unavailableError{msg: msg, err: err}
	}
	return upstreamError{msg: msg, err: err}
}

func startSpan(ctx context.Context, name, model string, c catalog.Class) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.String("llm.class", string(c)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
