// Package e2e drives the HTTP surface end to end: real registry, download
// coordinator, managers, gateway and router, with an in-memory model runtime
// standing in for llama.cpp. Requests go through the public Go client.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmserver/internal/catalog"
	"llmserver/internal/download"
	"llmserver/internal/engine"
	"llmserver/internal/gateway"
	"llmserver/internal/httpapi"
	"llmserver/internal/manager"
	"llmserver/internal/registry"
	"llmserver/internal/retrieval"
	"llmserver/pkg/client"
	"llmserver/pkg/types"
)

const weatherResponse = `{"id":"chatcmpl-e2e","object":"chat.completion","created":1700000000,"model":"native",
 "choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
   "tool_calls":[{"id":"call_e2e","type":"function","function":{"name":"get_weather","arguments":{"location":"Paris, France"}}}]}}],
 "usage":{"prompt_tokens":20,"completion_tokens":9,"total_tokens":29}}`

// memModel answers chat with a canned payload and embeds text as a one-hot
// vector over a few keywords so nearest-neighbour results are predictable.
type memModel struct{}

var keywords = []string{"weather", "invoice", "kernel"}

func (memModel) CreateChatCompletion(engine.ChatRequest) ([]byte, error) {
	return []byte(weatherResponse), nil
}

func (memModel) Embed(text string) ([]float32, error) {
	v := make([]float32, len(keywords))
	lower := strings.ToLower(text)
	for i, k := range keywords {
		if strings.Contains(lower, k) {
			v[i] = 1
		}
	}
	return v, nil
}

func (memModel) Tokenize(text string) ([]int32, error) {
	return make([]int32, len(strings.Fields(text))), nil
}

func (memModel) Close() error { return nil }

type memLoader struct {
	mu    sync.Mutex
	loads int
}

func (l *memLoader) Load(string) (engine.Model, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	return memModel{}, nil
}

func (l *memLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

// stallFetcher never completes until the coordinator shuts down.
type stallFetcher struct{}

func (stallFetcher) Fetch(ctx context.Context, _ catalog.Entry, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type stack struct {
	srv    *httptest.Server
	root   string
	loader *memLoader
}

func newStack(t *testing.T) *stack {
	t.Helper()
	root := t.TempDir()
	dl := download.New(download.Config{ModelsDir: root, MaxConcurrent: 1, Fetcher: stallFetcher{}, Logger: zerolog.Nop()})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = dl.Shutdown(ctx)
	})
	reg, err := registry.New(root, dl)
	require.NoError(t, err)
	require.NoError(t, reg.EnsureLayout())

	loader := &memLoader{}
	chat := manager.New(catalog.Chat, loader, zerolog.Nop())
	embed := manager.New(catalog.Embedding, loader, zerolog.Nop())
	t.Cleanup(func() {
		_ = chat.Close()
		_ = embed.Close()
	})
	gw := gateway.New(gateway.Options{
		Registry:    reg,
		Downloads:   dl,
		Chat:        chat,
		Embeddings:  embed,
		Temperature: 0.7,
		MaxTokens:   3000,
		Logger:      zerolog.Nop(),
	})
	srv := httptest.NewServer(httpapi.NewMux(gw))
	t.Cleanup(srv.Close)
	return &stack{srv: srv, root: reg.Root(), loader: loader}
}

func (s *stack) addModel(t *testing.T, c catalog.Class, name string) {
	t.Helper()
	p := filepath.Join(s.root, c.Dir(), name+".gguf")
	require.NoError(t, os.WriteFile(p, []byte("GGUF"), 0o644))
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func TestE2E_ChatToolCallThroughClient(t *testing.T) {
	s := newStack(t)
	s.addModel(t, catalog.Chat, "qwen")
	c := client.New(s.srv.URL)

	tools := []openai.Tool{{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:       "get_weather",
			Parameters: map[string]any{"type": "object", "properties": map[string]any{"location": map[string]any{"type": "string"}}},
		},
	}}
	resp, err := c.Chat(context.Background(), "qwen", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "What's the weather in Paris?"},
	}, tools, 0.2)
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	choice := resp.Choices[0]
	assert.Equal(t, openai.FinishReasonToolCalls, choice.FinishReason)
	require.Len(t, choice.Message.ToolCalls, 1)
	assert.Equal(t, "get_weather", choice.Message.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"location":"Paris, France"}`, choice.Message.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "qwen", resp.Model)
	assert.Equal(t, 29, resp.Usage.TotalTokens)
}

func TestE2E_UnknownChatModel404(t *testing.T) {
	s := newStack(t)
	resp, body := httpPostJSON(t, s.srv.URL+"/v1/chat/completions", `{"model":"missing","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
	var er types.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Contains(t, er.Detail, "'missing' not found")
	assert.Equal(t, 0, s.loader.count())
}

func TestE2E_RetrievalOverEmbeddingsEndpoint(t *testing.T) {
	s := newStack(t)
	s.addModel(t, catalog.Embedding, "embed")
	c := client.New(s.srv.URL, client.WithEmbedRetry(1, time.Millisecond))

	chunks := []string{"Invoice totals are due monthly.", "Kernel modules load at boot.", "Weather turns cold in autumn."}
	vecs, err := c.EmbedAll(context.Background(), "embed", chunks)
	require.NoError(t, err)
	ix, err := retrieval.NewIndex(vecs, chunks)
	require.NoError(t, err)

	got, err := ix.Relevant(context.Background(), c, "embed", "how is the weather?", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Weather turns cold in autumn."}, got)
	assert.Equal(t, 1, s.loader.count(), "one handle serves every request")
}

func TestE2E_ModelLifecycle(t *testing.T) {
	s := newStack(t)
	s.addModel(t, catalog.Embedding, "embed")

	resp, body := httpGet(t, s.srv.URL+"/v1/models/embeddings")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []types.ModelInfo
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, types.StatusReadyToUse, listed[0].Status)

	resp, body = httpPostJSON(t, s.srv.URL+"/v1/models/load", `{"model":"embed","model_type":"embedding"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var lr types.LoadResponse
	require.NoError(t, json.Unmarshal(body, &lr))
	assert.Equal(t, "loaded", lr.Status)

	resp, body = httpGet(t, s.srv.URL+"/v1/models/loaded")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loaded []types.LoadedModel
	require.NoError(t, json.Unmarshal(body, &loaded))
	require.Len(t, loaded, 1)
	assert.Equal(t, "embed", loaded[0].ModelName)
	assert.Equal(t, "embedding", loaded[0].ModelType)

	resp, body = httpPostJSON(t, s.srv.URL+"/v1/models/unload", `{"model":"embed","model_type":"embedding"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ur types.UnloadResponse
	require.NoError(t, json.Unmarshal(body, &ur))
	assert.Equal(t, "unloaded", ur.Status)

	_, body = httpGet(t, s.srv.URL+"/v1/models/loaded")
	assert.JSONEq(t, `[]`, string(body))
}

func TestE2E_DownloadShowsInListing(t *testing.T) {
	s := newStack(t)
	entry := catalog.Downloadable(catalog.Chat)[0]

	resp, body := httpPostJSON(t, s.srv.URL+"/v1/models/download", `{"repository":"`+entry.Repository+`"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))

	_, body = httpGet(t, s.srv.URL+"/v1/models/chat")
	var listed []types.ModelInfo
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, types.StatusDownloading, listed[0].Status)
	assert.Equal(t, entry.Filename, listed[0].Path)

	resp, _ = httpPostJSON(t, s.srv.URL+"/v1/models/download", `{"repository":"someone/else"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
