package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ApplyEnv overrides cfg with environment variables read through getenv.
// Unset or empty variables leave the field untouched. All parse errors are
// reported together.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("LLM_ADDR", &cfg.Addr)
	str("LLM_MODELS_DIR", &cfg.ModelsDir)
	num("LLM_N_CTX", &cfg.NCtx)
	num("LLM_N_GPU_LAYERS", &cfg.NGPULayers)
	num("LLM_N_THREADS", &cfg.NThreads)
	str("LLM_CHAT_FORMAT", &cfg.ChatFormat)
	flag("LLM_VERBOSE", &cfg.Verbose)
	num("LLM_MAX_TOKENS", &cfg.MaxTokens)
	num("LLM_DOWNLOAD_CONCURRENCY", &cfg.DownloadConcurrency)
	num("LLM_SHUTDOWN_TIMEOUT_SECONDS", &cfg.ShutdownTimeoutSeconds)
	str("HF_ENDPOINT", &cfg.HFEndpoint)
	str("HF_TOKEN", &cfg.HFToken)
	flag("LLM_CORS_ENABLED", &cfg.CORSEnabled)

	if v := strings.TrimSpace(getenv("LLM_TEMPERATURE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_TEMPERATURE: %w", err))
		} else {
			cfg.Temperature = f
		}
	}
	if v := strings.TrimSpace(getenv("LLM_MAX_BODY_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_MAX_BODY_BYTES: %w", err))
		} else {
			cfg.MaxBodyBytes = n
		}
	}
	if v := strings.TrimSpace(getenv("LLM_CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = SplitCSV(v)
	}
	return errors.Join(errs...)
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
