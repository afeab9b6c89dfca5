package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"llmserver/internal/catalog"
	"llmserver/pkg/types"
)

type mockService struct {
	ready     bool
	chatErr   error
	embedErr  error
	loadErr   error
	gotChat   types.ChatCompletionRequest
	gotEmbed  types.EmbeddingRequest
	gotName   string
	gotClass  catalog.Class
	calls     int
	models    []types.ModelInfo
	unloadErr error
}

func (m *mockService) Info() types.InfoResponse {
	return types.InfoResponse{Message: "LLM Server is running", Version: "1.0.0"}
}
func (m *mockService) Health() types.HealthResponse { return types.HealthResponse{Status: "healthy"} }
func (m *mockService) Ready() bool                  { return m.ready }

func (m *mockService) ChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (types.ChatCompletionResponse, error) {
	m.calls++
	m.gotChat = req
	if m.chatErr != nil {
		return types.ChatCompletionResponse{}, m.chatErr
	}
	return types.ChatCompletionResponse{
		ID: "chatcmpl-1", Object: "chat.completion", Created: 1, Model: req.Model,
		Choices: []types.ChatChoice{{Message: types.ChatMessage{Role: "assistant", Content: "hi"}, FinishReason: "stop"}},
		Usage:   types.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}, nil
}

func (m *mockService) Embeddings(ctx context.Context, req types.EmbeddingRequest) (types.EmbeddingResponse, error) {
	m.calls++
	m.gotEmbed = req
	if m.embedErr != nil {
		return types.EmbeddingResponse{}, m.embedErr
	}
	data := make([]types.EmbeddingData, len(req.Input))
	for i := range req.Input {
		data[i] = types.EmbeddingData{Object: "embedding", Embedding: []float32{float32(i)}, Index: i}
	}
	return types.EmbeddingResponse{Object: "list", Data: data, Model: req.Model}, nil
}

func (m *mockService) ListModels(c catalog.Class) ([]types.ModelInfo, error) {
	m.gotClass = c
	return m.models, nil
}

func (m *mockService) ListDownloadable(c catalog.Class) []types.DownloadableModel {
	m.gotClass = c
	out := []types.DownloadableModel{}
	for _, e := range catalog.Downloadable(c) {
		out = append(out, e.Info())
	}
	return out
}

func (m *mockService) Download(repo string) (types.DownloadResponse, error) {
	if err := catalog.ValidateRepository(repo); err != nil {
		return types.DownloadResponse{}, mockHTTPError{msg: err.Error(), code: http.StatusBadRequest}
	}
	return types.DownloadResponse{Repository: repo, Status: "downloading", Path: "x.gguf", Message: "Model download started in background"}, nil
}

func (m *mockService) Load(ctx context.Context, name string, c catalog.Class) (types.LoadResponse, error) {
	m.gotName, m.gotClass = name, c
	if m.loadErr != nil {
		return types.LoadResponse{}, m.loadErr
	}
	return types.LoadResponse{Model: name, ModelType: string(c), Status: "loaded", ModelPath: "/m/" + name + ".gguf"}, nil
}

func (m *mockService) Unload(name string, c catalog.Class) (types.UnloadResponse, error) {
	m.gotName, m.gotClass = name, c
	if m.unloadErr != nil {
		return types.UnloadResponse{}, m.unloadErr
	}
	return types.UnloadResponse{Model: name, ModelType: string(c), Status: "not_loaded"}, nil
}

func (m *mockService) ListLoaded() []types.LoadedModel {
	return []types.LoadedModel{{ModelName: "q", ModelPath: "/m/q.gguf", ModelType: "chat", Loaded: true}}
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body: %v (%s)", err, w.Body.String())
	}
	if e.Code != w.Code {
		t.Fatalf("code field %d != status %d", e.Code, w.Code)
	}
	return e
}

func TestInfoAndHealth(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var info types.InfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil || info.Version != "1.0.0" {
		t.Fatalf("info=%+v err=%v", info, err)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(w.Body.String(), `"healthy"`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{ready: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestChatCompletions_OK(t *testing.T) {
	svc := &mockService{}
	w := postJSON(NewMux(svc), "/v1/chat/completions",
		`{"model":"qwen","messages":[{"role":"system","content":""},{"role":"user","content":"hi"}],"temperature":0.2,"tool_choice":"auto"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotChat.Temperature == nil || *svc.gotChat.Temperature != 0.2 {
		t.Fatalf("temperature not forwarded: %+v", svc.gotChat)
	}
	if svc.gotChat.MaxTokens != nil {
		t.Fatalf("max_tokens should stay unset")
	}
	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Model != "qwen" || resp.Choices[0].Message.Content != "hi" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestChatCompletions_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"missing model":    `{"messages":[{"role":"user","content":"hi"}]}`,
		"no messages":      `{"model":"m","messages":[]}`,
		"bad role":         `{"model":"m","messages":[{"role":"robot","content":"hi"}]}`,
		"temperature high": `{"model":"m","messages":[{"role":"user","content":"hi"}],"temperature":2.5}`,
		"max_tokens zero":  `{"model":"m","messages":[{"role":"user","content":"hi"}],"max_tokens":0}`,
		"tool type":        `{"model":"m","messages":[{"role":"user","content":"hi"}],"tools":[{"type":"retrieval","function":{"name":"f"}}]}`,
		"tool name":        `{"model":"m","messages":[{"role":"user","content":"hi"}],"tools":[{"type":"function","function":{}}]}`,
		"not json":         `{`,
	}
	for name, body := range cases {
		svc := &mockService{}
		w := postJSON(NewMux(svc), "/v1/chat/completions", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", name, w.Code, w.Body.String())
		}
		decodeError(t, w)
		if svc.calls != 0 {
			t.Fatalf("%s: service should not be called", name)
		}
	}
}

func TestChatCompletions_ValidationMessageUsesJSONNames(t *testing.T) {
	w := postJSON(NewMux(&mockService{}), "/v1/chat/completions", `{"model":"m","messages":[{"role":"robot","content":"x"}]}`)
	e := decodeError(t, w)
	if !strings.Contains(e.Detail, "messages[0].role") {
		t.Fatalf("detail=%q", e.Detail)
	}
}

func TestChatCompletions_ContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestChatCompletions_BodyLimit(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	body := `{"model":"m","messages":[{"role":"user","content":"` + strings.Repeat("x", 256) + `"}]}`
	w := postJSON(NewMux(&mockService{}), "/v1/chat/completions", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decodeError(t, w); e.Detail != "invalid JSON body" {
		t.Fatalf("detail=%q", e.Detail)
	}
}

func TestChatCompletions_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{mockHTTPError{msg: "Chat model 'x' not found", code: http.StatusNotFound}, http.StatusNotFound},
		{mockHTTPError{msg: "streaming is not supported", code: http.StatusBadRequest}, http.StatusBadRequest},
		{mockHTTPError{msg: "runtime missing", code: http.StatusServiceUnavailable}, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, c := range cases {
		w := postJSON(NewMux(&mockService{chatErr: c.err}), "/v1/chat/completions", `{"model":"x","messages":[{"role":"user","content":"hi"}]}`)
		if w.Code != c.want {
			t.Fatalf("%v: status=%d want %d", c.err, w.Code, c.want)
		}
		if e := decodeError(t, w); e.Detail != c.err.Error() {
			t.Fatalf("detail=%q", e.Detail)
		}
	}
}

func TestEmbeddings_StringAndList(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postJSON(r, "/v1/embeddings", `{"model":"e","input":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(svc.gotEmbed.Input) != 1 || svc.gotEmbed.Input[0] != "hello" {
		t.Fatalf("input=%v", svc.gotEmbed.Input)
	}

	w = postJSON(r, "/v1/embeddings", `{"model":"e","input":["a","b","c"],"encoding_format":"float"}`)
	var resp types.EmbeddingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || len(resp.Data) != 3 {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
	for i, d := range resp.Data {
		if d.Index != i {
			t.Fatalf("index %d at %d", d.Index, i)
		}
	}
}

func TestEmbeddings_Rejects(t *testing.T) {
	for _, body := range []string{
		`{"model":"e"}`,
		`{"model":"e","input":42}`,
		`{"model":"e","input":"x","encoding_format":"hex"}`,
	} {
		svc := &mockService{}
		w := postJSON(NewMux(svc), "/v1/embeddings", body)
		if w.Code != http.StatusBadRequest || svc.calls != 0 {
			t.Fatalf("%s: status=%d calls=%d", body, w.Code, svc.calls)
		}
	}
}

func TestModelListings(t *testing.T) {
	svc := &mockService{models: []types.ModelInfo{{Name: "q", Path: "chat/q.gguf", Size: "1.00 KB", Status: "ready_to_use"}}}
	r := NewMux(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/embeddings", nil))
	if w.Code != http.StatusOK || svc.gotClass != catalog.Embedding {
		t.Fatalf("status=%d class=%s", w.Code, svc.gotClass)
	}
	var models []types.ModelInfo
	if err := json.Unmarshal(w.Body.Bytes(), &models); err != nil || len(models) != 1 {
		t.Fatalf("models=%v err=%v", models, err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/chat/downloadable", nil))
	var dl []types.DownloadableModel
	if err := json.Unmarshal(w.Body.Bytes(), &dl); err != nil || len(dl) != 2 || svc.gotClass != catalog.Chat {
		t.Fatalf("downloadable=%v err=%v", dl, err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/models/loaded", nil))
	if !strings.Contains(w.Body.String(), `"model_name":"q"`) {
		t.Fatalf("loaded=%s", w.Body.String())
	}
}

func TestDownload(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(r, "/v1/models/download", `{"repository":"Qwen/Qwen3-Embedding-4B-GGUF"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d", w.Code)
	}
	w = postJSON(r, "/v1/models/download", `{"repository":"someone/else"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Detail, "Allowed models") {
		t.Fatalf("detail=%q", e.Detail)
	}
}

func TestLoadUnload(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc)
	w := postJSON(r, "/v1/models/load", `{"model":"e","model_type":"embedding"}`)
	if w.Code != http.StatusOK || svc.gotName != "e" || svc.gotClass != catalog.Embedding {
		t.Fatalf("status=%d name=%s class=%s", w.Code, svc.gotName, svc.gotClass)
	}
	w = postJSON(r, "/v1/models/load", `{"model":"e","model_type":"vision"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}

	svc.loadErr = mockHTTPError{msg: "Chat model 'x' not found in models directory.", code: http.StatusNotFound}
	w = postJSON(r, "/v1/models/load", `{"model":"x","model_type":"chat"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}

	w = postJSON(r, "/v1/models/unload", `{"model":"x","model_type":"chat"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "not_loaded") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	decodeError(t, w)

	w = httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/v1/embeddings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q", got)
	}
}
