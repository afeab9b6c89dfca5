package config

import (
	"reflect"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"LLM_ADDR":         ":1234",
		"LLM_MODELS_DIR":   "/srv/models",
		"LLM_N_CTX":        "8192",
		"LLM_N_GPU_LAYERS": "20",
		"LLM_N_THREADS":    " 8 ",
		"LLM_TEMPERATURE":  "0.1",
		"LLM_MAX_TOKENS":   "256",
		"LLM_VERBOSE":      "true",
		"HF_TOKEN":         "hf_x",
		"HF_ENDPOINT":      "http://mirror",
		"LLM_CORS_ORIGINS": "http://a, ,http://b",
	}))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := Default()
	want.Addr, want.ModelsDir = ":1234", "/srv/models"
	want.NCtx, want.NGPULayers, want.NThreads = 8192, 20, 8
	want.Temperature, want.MaxTokens, want.Verbose = 0.1, 256, true
	want.HFToken, want.HFEndpoint = "hf_x", "http://mirror"
	want.CORSOrigins = []string{"http://a", "http://b"}
	if !reflect.DeepEqual(cfg, want) {
		t.Fatalf("got %+v\nwant %+v", cfg, want)
	}
}

func TestApplyEnv_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"LLM_N_CTX":       "lots",
		"LLM_VERBOSE":     "maybe",
		"LLM_TEMPERATURE": "warm",
	}))
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"LLM_N_CTX", "LLM_VERBOSE", "LLM_TEMPERATURE"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("missing %s in %v", key, err)
		}
	}
	if cfg.NCtx != 20000 {
		t.Fatalf("invalid value must not be applied")
	}
}

func TestSplitCSV(t *testing.T) {
	cases := map[string][]string{
		"":          nil,
		"  ":        nil,
		"a":         {"a"},
		"a,b":       {"a", "b"},
		" a , b ,,": {"a", "b"},
	}
	for in, want := range cases {
		if got := SplitCSV(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("SplitCSV(%q)=%v want %v", in, got, want)
		}
	}
}
