package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/summarizer-api/internal/api/shared"
)

// CacheChecker reports whether the result cache answers.
type CacheChecker interface {
	IsAvailable(ctx context.Context) bool
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	cache   CacheChecker
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler. A nil cache reports "disabled".
func NewHealthHandler(cache CacheChecker) *HealthHandler {
	return &HealthHandler{cache: cache, timeout: 2 * time.Second}
}

// Health handles GET /health. The service stays healthy without a cache.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Cache: "disabled"}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if h.cache.IsAvailable(ctx) {
			resp.Cache = "available"
		} else {
			resp.Cache = "unavailable"
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
