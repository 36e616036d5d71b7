package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test.
// An empty value leaves the variable unset as far as viper is concerned.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// TestLoadDefaults verifies that the Load function applies the pipeline
// defaults when only the required fields are provided.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"SUMMARIZER_LLM_GEMINI_API_KEY": "test-api-key",
		"SUMMARIZER_SERVER_PORT":        "",
		"SUMMARIZER_SERVER_LOG_LEVEL":   "",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	assert.Equal(t, 4, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, 60*time.Second, cfg.Task.DefaultTimeout)
	assert.Equal(t, time.Hour, cfg.Task.ResultRetention)

	assert.Equal(t, 5000, cfg.Chunk.MaxSize)
	assert.Equal(t, 200, cfg.Chunk.Overlap)

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)

	assert.False(t, cfg.Gate.StrictDefault)
	assert.Equal(t, 3, cfg.Gate.InappropriateThreshold)

	assert.Equal(t, 50, cfg.Summarize.MinChars)
	assert.Equal(t, 5000, cfg.Summarize.AsyncThreshold)
	assert.Equal(t, 10000, cfg.Summarize.CompressThreshold)
	assert.Equal(t, 20000, cfg.Summarize.ChunkThreshold)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setupEnv(t, map[string]string{
		"SUMMARIZER_LLM_GEMINI_API_KEY":      "test-api-key",
		"SUMMARIZER_TASK_WORKER_COUNT":       "8",
		"SUMMARIZER_TASK_DEFAULT_TIMEOUT":    "90s",
		"SUMMARIZER_CACHE_BACKEND":           "redis",
		"SUMMARIZER_CACHE_REDIS_URL":         "redis://localhost:6379/0",
		"SUMMARIZER_GATE_STRICT_DEFAULT":     "true",
		"SUMMARIZER_CHUNK_OVERLAP":           "100",
		"SUMMARIZER_SUMMARIZE_ASYNC_THRESHOLD": "6000",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Task.WorkerCount)
	assert.Equal(t, 90*time.Second, cfg.Task.DefaultTimeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.True(t, cfg.Gate.StrictDefault)
	assert.Equal(t, 100, cfg.Chunk.Overlap)
	assert.Equal(t, 6000, cfg.Summarize.AsyncThreshold)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing api key",
			env: map[string]string{
				"SUMMARIZER_LLM_GEMINI_API_KEY": "",
			},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"SUMMARIZER_LLM_GEMINI_API_KEY": "key",
				"SUMMARIZER_SERVER_LOG_LEVEL":   "verbose",
			},
		},
		{
			name: "redis backend without url",
			env: map[string]string{
				"SUMMARIZER_LLM_GEMINI_API_KEY": "key",
				"SUMMARIZER_CACHE_BACKEND":      "redis",
			},
		},
		{
			name: "overlap not smaller than chunk size",
			env: map[string]string{
				"SUMMARIZER_LLM_GEMINI_API_KEY": "key",
				"SUMMARIZER_CHUNK_MAX_SIZE":     "100",
				"SUMMARIZER_CHUNK_OVERLAP":      "100",
			},
		},
		{
			name: "thresholds out of order",
			env: map[string]string{
				"SUMMARIZER_LLM_GEMINI_API_KEY":         "key",
				"SUMMARIZER_SUMMARIZE_CHUNK_THRESHOLD": "9000",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, tc.env)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
