package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmserver/internal/catalog"
	"llmserver/internal/common/fsutil"
	"llmserver/internal/config"
	"llmserver/internal/download"
	"llmserver/internal/engine"
	"llmserver/internal/gateway"
	"llmserver/internal/httpapi"
	"llmserver/internal/manager"
	"llmserver/internal/registry"
)

// app is the wired process: everything the server needs plus what shutdown must stop.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	handler   http.Handler
	downloads *download.Coordinator
	managers  []*manager.Manager
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Bool("llama", engine.Built()).Msg("llmserver listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	cancelBase()
	return a.close(ctx)
}

// buildApp wires configuration into the component graph.
func buildApp(cfg config.Config, log zerolog.Logger) (*app, error) {
	dir, err := fsutil.ResolveDir(cfg.ModelsDir)
	if err != nil {
		return nil, err
	}

	dl := download.New(download.Config{
		ModelsDir:     dir,
		MaxConcurrent: cfg.DownloadConcurrency,
		Fetcher: &download.HFFetcher{
			Endpoint:         cfg.HFEndpoint,
			Token:            cfg.HFToken,
			ProgressInterval: 5 * time.Second,
			Logger:           log,
		},
		Logger: log,
	})
	reg, err := registry.New(dir, dl)
	if err != nil {
		return nil, err
	}
	if err := reg.EnsureLayout(); err != nil {
		return nil, fmt.Errorf("models directory: %w", err)
	}

	if !engine.Built() {
		log.Warn().Msg("built without the llama tag: chat and embedding requests will return 503")
	}
	chatOpts := engine.Options{
		ContextSize: cfg.NCtx,
		GPULayers:   cfg.NGPULayers,
		Threads:     cfg.NThreads,
		Verbose:     cfg.Verbose,
		ChatFormat:  cfg.ChatFormat,
	}
	embedOpts := chatOpts
	embedOpts.Embedding = true
	events := manager.LogPublisher{Logger: log}
	chatMgr := manager.NewWithConfig(manager.ManagerConfig{
		Class:     catalog.Chat,
		Loader:    engine.NewLlamaLoader(chatOpts, log),
		Logger:    log,
		Publisher: events,
	})
	embedMgr := manager.NewWithConfig(manager.ManagerConfig{
		Class:     catalog.Embedding,
		Loader:    engine.NewLlamaLoader(embedOpts, log),
		Logger:    log,
		Publisher: events,
	})

	gw := gateway.New(gateway.Options{
		Registry:    reg,
		Downloads:   dl,
		Chat:        chatMgr,
		Embeddings:  embedMgr,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Logger:      log,
	})

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodOptions}, []string{"*"})

	return &app{
		cfg:       cfg,
		log:       log,
		handler:   httpapi.NewMux(gw),
		downloads: dl,
		managers:  []*manager.Manager{chatMgr, embedMgr},
	}, nil
}

// close stops downloads and releases every resident model.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if err := a.downloads.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("downloads: %w", err))
	}
	for _, m := range a.managers {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.log.Info().Msg("llmserver stopped")
	return errors.Join(errs...)
}
