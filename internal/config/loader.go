package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service. Load and Default start
// from the same defaults; file values and then environment variables
// override them.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`

	// Native runtime parameters applied to every handle.
	NCtx       int    `json:"n_ctx" yaml:"n_ctx" toml:"n_ctx"`
	NGPULayers int    `json:"n_gpu_layers" yaml:"n_gpu_layers" toml:"n_gpu_layers"`
	NThreads   int    `json:"n_threads" yaml:"n_threads" toml:"n_threads"`
	ChatFormat string `json:"chat_format" yaml:"chat_format" toml:"chat_format"`
	Verbose    bool   `json:"verbose" yaml:"verbose" toml:"verbose"`

	// Generation defaults for requests that omit them.
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`

	MaxBodyBytes           int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	ShutdownTimeoutSeconds int   `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`

	DownloadConcurrency int    `json:"download_concurrency" yaml:"download_concurrency" toml:"download_concurrency"`
	HFEndpoint          string `json:"hf_endpoint" yaml:"hf_endpoint" toml:"hf_endpoint"`
	HFToken             string `json:"hf_token" yaml:"hf_token" toml:"hf_token"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:                   ":8000",
		ModelsDir:              "models",
		NCtx:                   20000,
		NGPULayers:             0,
		NThreads:               4,
		ChatFormat:             "qwen",
		Temperature:            0.7,
		MaxTokens:              3000,
		MaxBodyBytes:           8 << 20,
		ShutdownTimeoutSeconds: 10,
		DownloadConcurrency:    2,
		HFEndpoint:             "https://huggingface.co",
		CORSEnabled:            true,
		CORSOrigins:            []string{"*"},
	}
}

// Load reads a configuration file based on its extension on top of Default.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the optional
// file at path, then environment overrides. The result is validated.
func Resolve(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the runtime cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.NCtx <= 0 {
		errs = append(errs, fmt.Errorf("n_ctx must be positive, got %d", c.NCtx))
	}
	if c.NThreads <= 0 {
		errs = append(errs, fmt.Errorf("n_threads must be positive, got %d", c.NThreads))
	}
	if c.NGPULayers < 0 {
		errs = append(errs, fmt.Errorf("n_gpu_layers must not be negative, got %d", c.NGPULayers))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be within [0, 2], got %g", c.Temperature))
	}
	if c.ModelsDir == "" {
		errs = append(errs, errors.New("models_dir must be set"))
	}
	if c.ChatFormat != "qwen" {
		errs = append(errs, fmt.Errorf("chat_format must be %q, got %q", "qwen", c.ChatFormat))
	}
	return errors.Join(errs...)
}
