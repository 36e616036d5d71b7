package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/summarizer-api/internal/api"
	apiMiddleware "github.com/phrazzld/summarizer-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	summaryHandler := api.NewSummaryHandler(app.service, app.logger)

	var cacheChecker api.CacheChecker
	if app.config.Cache.Backend != "none" {
		cacheChecker = app.cache
	}
	healthHandler := api.NewHealthHandler(cacheChecker)

	r.Route("/api/summarize", func(r chi.Router) {
		r.Post("/", summaryHandler.Summarize)
		r.Post("/batch", summaryHandler.Batch)
		r.Get("/status/{id}", summaryHandler.Status)
	})

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
