// Package main implements the entry point for the summarizer API server,
// which summarizes text and web pages with an LLM, synchronously for short
// content and through a bounded background task processor for long content.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("summarizer-api: %v", err)
	}
}

// run wires the application from configuration and serves until SIGINT or
// SIGTERM.
func run() error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"cache_backend", cfg.Cache.Backend,
		"workers", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)

	return app.Run(ctx)
}
