// Package client is a Go client for the llmserver /v1 API built on the
// go-openai SDK. Embedding calls are retried a bounded number of times with a
// fixed delay.
package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultEmbedAttempts = 3
	defaultRetryDelay    = time.Second
	// llmserver does not authenticate; the SDK still requires a key.
	placeholderAPIKey = "llmserver"
)

// Client talks to one llmserver instance.
type Client struct {
	api           *openai.Client
	httpClient    *http.Client
	embedAttempts int
	retryDelay    time.Duration
	log           zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithEmbedRetry sets how many times an embedding is attempted and the fixed
// pause between attempts.
func WithEmbedRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.embedAttempts = attempts
		c.retryDelay = delay
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for baseURL, e.g. http://localhost:8000. A trailing
// /v1 is added when missing.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		embedAttempts: defaultEmbedAttempts,
		retryDelay:    defaultRetryDelay,
		log:           zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.embedAttempts <= 0 {
		c.embedAttempts = 1
	}
	cfg := openai.DefaultConfig(placeholderAPIKey)
	cfg.BaseURL = apiBase(baseURL)
	if c.httpClient != nil {
		cfg.HTTPClient = c.httpClient
	}
	c.api = openai.NewClientWithConfig(cfg)
	return c
}

func apiBase(u string) string {
	u = strings.TrimRight(u, "/")
	if !strings.HasSuffix(u, "/v1") {
		u += "/v1"
	}
	return u
}

// Chat runs one chat completion. tools may be nil. The SDK omits a zero
// temperature from the request, so 0 is sent as the smallest positive float32
// to keep the server from applying its default.
func (c *Client) Chat(ctx context.Context, model string, msgs []openai.ChatCompletionMessage, tools []openai.Tool, temperature float32) (openai.ChatCompletionResponse, error) {
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Tools:       tools,
		Temperature: temperature,
	})
	if err != nil {
		return resp, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return resp, errors.New("chat completion: no choices returned")
	}
	return resp, nil
}

// Embed returns the embedding of text, retrying failed attempts.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float32, error) {
	var last error
	for attempt := 1; attempt <= c.embedAttempts; attempt++ {
		vec, err := c.embedOnce(ctx, model, text)
		if err == nil {
			return vec, nil
		}
		last = err
		if attempt == c.embedAttempts {
			break
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Str("model", model).Msg("embedding failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to embed text after %d attempts: %w", c.embedAttempts, last)
}

func (c *Client) embedOnce(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedAll embeds each text in order, one request per text.
func (c *Client) EmbedAll(ctx context.Context, model string, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, t := range texts {
		vec, err := c.Embed(ctx, model, t)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}
