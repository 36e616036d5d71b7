package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache bool

func (s stubCache) IsAvailable(context.Context) bool { return bool(s) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		cache     CacheChecker
		wantCache string
	}{
		{name: "cache available", cache: stubCache(true), wantCache: "available"},
		{name: "cache down", cache: stubCache(false), wantCache: "unavailable"},
		{name: "cache disabled", cache: nil, wantCache: "disabled"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tc.cache).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, tc.wantCache, resp.Cache)
		})
	}
}
