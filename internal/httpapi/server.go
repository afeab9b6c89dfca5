package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmserver/internal/catalog"
	"llmserver/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Info() types.InfoResponse
	Health() types.HealthResponse
	Ready() bool
	ChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (types.ChatCompletionResponse, error)
	Embeddings(ctx context.Context, req types.EmbeddingRequest) (types.EmbeddingResponse, error)
	ListModels(c catalog.Class) ([]types.ModelInfo, error)
	ListDownloadable(c catalog.Class) []types.DownloadableModel
	Download(repo string) (types.DownloadResponse, error)
	Load(ctx context.Context, name string, c catalog.Class) (types.LoadResponse, error)
	Unload(name string, c catalog.Class) (types.UnloadResponse, error)
	ListLoaded() []types.LoadedModel
}

type handler struct{ svc Service }

func NewMux(svc Service) http.Handler {
	h := handler{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, metrics, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", h.info)
	r.Get("/health", h.health)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("models directory missing"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat/completions", h.chatCompletions)
		r.Post("/embeddings", h.embeddings)
		r.Route("/models", func(r chi.Router) {
			r.Get("/chat", h.listModels(catalog.Chat))
			r.Get("/chat/downloadable", h.listDownloadable(catalog.Chat))
			r.Get("/embeddings", h.listModels(catalog.Embedding))
			r.Get("/embeddings/downloadable", h.listDownloadable(catalog.Embedding))
			r.Post("/download", h.download)
			r.Post("/load", h.load)
			r.Post("/unload", h.unload)
			r.Get("/loaded", h.loaded)
		})
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// info godoc
// @Summary      Server banner
// @Tags         health
// @Produce      json
// @Success      200 {object} types.InfoResponse
// @Router       / [get]
func (h handler) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Info())
}

// health godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Router       /health [get]
func (h handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

// chatCompletions godoc
// @Summary      Create a chat completion
// @Description  OpenAI-compatible, non-streaming. Tool calls are returned in message.tool_calls and choices[].tool_calls.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body types.ChatCompletionRequest true "Chat completion request"
// @Success      200 {object} types.ChatCompletionResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /v1/chat/completions [post]
func (h handler) chatCompletions(w http.ResponseWriter, r *http.Request) {
	var req types.ChatCompletionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	rl := startRequest(r, req.Model)
	rl.debug("chat request", map[string]any{"messages": len(req.Messages), "tools": len(req.Tools)})

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.ChatCompletion(ctx, req)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status := statusFor(err)
		rl.end(status, err)
		writeJSONError(w, status, err.Error())
		return
	}
	if len(resp.Choices) > 0 {
		rl.debug("chat response", map[string]any{
			"finish_reason": resp.Choices[0].FinishReason,
			"tool_calls":    len(resp.Choices[0].ToolCalls),
			"total_tokens":  resp.Usage.TotalTokens,
		})
	}
	rl.end(http.StatusOK, nil)
	writeJSON(w, http.StatusOK, resp)
}

// embeddings godoc
// @Summary      Create embeddings
// @Description  Embeds a string or a list of strings. Only encoding_format=float is supported.
// @Tags         embeddings
// @Accept       json
// @Produce      json
// @Param        request body types.EmbeddingRequest true "Embedding request"
// @Success      200 {object} types.EmbeddingResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /v1/embeddings [post]
func (h handler) embeddings(w http.ResponseWriter, r *http.Request) {
	var req types.EmbeddingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	rl := startRequest(r, req.Model)
	rl.debug("embedding request", map[string]any{"inputs": len(req.Input)})

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Embeddings(ctx, req)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status := statusFor(err)
		rl.end(status, err)
		writeJSONError(w, status, err.Error())
		return
	}
	rl.end(http.StatusOK, nil)
	writeJSON(w, http.StatusOK, resp)
}

// listModels godoc
// @Summary      List local models
// @Description  Ready models from the models directory followed by in-flight downloads.
// @Tags         models
// @Produce      json
// @Success      200 {array} types.ModelInfo
// @Failure      500 {object} types.ErrorResponse
// @Router       /v1/models/chat [get]
// @Router       /v1/models/embeddings [get]
func (h handler) listModels(c catalog.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.svc.ListModels(c)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listDownloadable godoc
// @Summary      List downloadable models
// @Tags         models
// @Produce      json
// @Success      200 {array} types.DownloadableModel
// @Router       /v1/models/chat/downloadable [get]
// @Router       /v1/models/embeddings/downloadable [get]
func (h handler) listDownloadable(c catalog.Class) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.ListDownloadable(c))
	}
}

// download godoc
// @Summary      Download a model from Hugging Face
// @Description  Runs in the background; the model is listed as downloading until the transfer ends.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request body types.DownloadRequest true "Repository to download"
// @Success      202 {object} types.DownloadResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /v1/models/download [post]
func (h handler) download(w http.ResponseWriter, r *http.Request) {
	var req types.DownloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	resp, err := h.svc.Download(req.Repository)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// load godoc
// @Summary      Load a model into memory
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request body types.LoadRequest true "Model to load"
// @Success      200 {object} types.LoadResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /v1/models/load [post]
func (h handler) load(w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	c, err := catalog.ParseClass(req.ModelType)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Load(ctx, req.Model, c)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// unload godoc
// @Summary      Unload a model from memory
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request body types.LoadRequest true "Model to unload"
// @Success      200 {object} types.UnloadResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /v1/models/unload [post]
func (h handler) unload(w http.ResponseWriter, r *http.Request) {
	var req types.LoadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	c, err := catalog.ParseClass(req.ModelType)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.Unload(req.Model, c)
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// loaded godoc
// @Summary      List models resident in memory
// @Tags         models
// @Produce      json
// @Success      200 {array} types.LoadedModel
// @Router       /v1/models/loaded [get]
func (h handler) loaded(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListLoaded())
}
