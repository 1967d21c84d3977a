package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dconnell/bookmaster/internal/api"
	"github.com/dconnell/bookmaster/internal/config"
	"github.com/dconnell/bookmaster/internal/organize"
	"github.com/dconnell/bookmaster/internal/pipeline"
	"github.com/dconnell/bookmaster/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open store", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}

	oracle := organize.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.OracleTimeout)

	orch := pipeline.NewOrchestrator(cfg, oracle, st, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, oracle, st, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting requests before draining the pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		oracle.Close()
		st.Close()
	}()

	log.Info("starting bookmaster", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
