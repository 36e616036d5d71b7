package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/phrazzld/summarizer-api/internal/config"
	"github.com/phrazzld/summarizer-api/internal/extract"
	"github.com/phrazzld/summarizer-api/internal/gate"
	"github.com/phrazzld/summarizer-api/internal/generation"
	"github.com/phrazzld/summarizer-api/internal/platform/gemini"
	"github.com/phrazzld/summarizer-api/internal/platform/metrics"
	"github.com/phrazzld/summarizer-api/internal/platform/redis"
	"github.com/phrazzld/summarizer-api/internal/summary"
	"github.com/phrazzld/summarizer-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics   *metrics.Metrics
	cache     *cache.Store
	redis     *redis.Backend
	processor *task.Processor
	service   *summary.Service
}

// newApplication creates the application with the Gemini generator.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	generator, err := gemini.NewGeminiGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", "model", cfg.LLM.ModelName)

	app, err := newApplicationWithGenerator(ctx, cfg, logger, generator)
	if err != nil {
		return nil, err
	}
	generator.SetObserver(app.metrics)
	return app, nil
}

// newApplicationWithGenerator wires every component around the given
// generator and starts the task processor.
func newApplicationWithGenerator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	generator generation.Generator,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	backend, err := app.setupCacheBackend(ctx)
	if err != nil {
		return nil, err
	}
	app.cache = cache.NewStore(backend, cfg.Cache.TTL, logger)
	app.cache.SetObserver(app.metrics)

	contentGate, err := gate.NewFromConfig(cfg.Gate, logger)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	extractor := extract.New(extract.Config{
		FetchTimeout: cfg.Extract.FetchTimeout,
		UserAgent:    cfg.Extract.UserAgent,
	}, logger)

	app.processor = task.NewProcessor(task.ProcessorConfig{
		WorkerCount:     cfg.Task.WorkerCount,
		QueueSize:       cfg.Task.QueueSize,
		DefaultTimeout:  cfg.Task.DefaultTimeout,
		SweepInterval:   cfg.Task.SweepInterval,
		ResultRetention: cfg.Task.ResultRetention,
	}, logger)
	app.processor.SetRecorder(app.metrics)
	if err := app.processor.Start(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to start task processor: %w", err)
	}

	app.service, err = summary.NewService(summary.Config{
		MinChars:          cfg.Summarize.MinChars,
		AsyncThreshold:    cfg.Summarize.AsyncThreshold,
		CompressThreshold: cfg.Summarize.CompressThreshold,
		ChunkThreshold:    cfg.Summarize.ChunkThreshold,
		ChunkMaxSize:      cfg.Chunk.MaxSize,
		ChunkOverlap:      cfg.Chunk.Overlap,
		TaskTimeout:       cfg.Task.DefaultTimeout,
		ChunkTimeout:      cfg.Task.ChunkTimeout,
		CacheTTL:          cfg.Cache.TTL,
	}, summary.Deps{
		Extractor: extractor,
		Gate:      contentGate,
		Cache:     app.cache,
		Generator: generator,
		Tasks:     app.processor,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create summary service: %w", err)
	}
	app.service.SetRecorder(app.metrics)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupCacheBackend builds the configured cache backend. An unreachable
// Redis is logged and kept: lookups degrade to misses until it recovers.
func (app *application) setupCacheBackend(ctx context.Context) (cache.Backend, error) {
	cfg := app.config.Cache

	switch cfg.Backend {
	case "redis":
		backend, err := redis.NewBackendWithURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis cache: %w", err)
		}
		app.redis = backend

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := backend.Ping(pingCtx); err != nil {
			app.logger.Warn("redis cache unreachable, continuing without cache hits", "error", err)
		} else {
			app.logger.Info("redis cache connected")
		}
		return backend, nil

	case "memory":
		size := cfg.MemorySize
		if size <= 0 {
			size = 1024
		}
		backend, err := cache.NewMemoryBackend(size)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		return backend, nil

	default:
		app.logger.Info("summary cache disabled")
		return cache.NopBackend{}, nil
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.processor != nil {
		app.processor.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
