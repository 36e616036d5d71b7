package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. SUMMARIZER_LLM_GEMINI_API_KEY.
const EnvPrefix = "SUMMARIZER"

// defaults lists every known key with its default value. Registering each key
// is also what lets viper's AutomaticEnv find it during Unmarshal.
var defaults = map[string]interface{}{
	"server.port":      8080,
	"server.log_level": "info",

	"llm.gemini_api_key": "",
	"llm.model_name":     "gemini-2.0-flash",

	"task.worker_count":     4,
	"task.queue_size":       100,
	"task.default_timeout":  60 * time.Second,
	"task.chunk_timeout":    5 * time.Minute,
	"task.sweep_interval":   5 * time.Minute,
	"task.result_retention": time.Hour,

	"chunk.max_size": 5000,
	"chunk.overlap":  200,

	"cache.backend":     "memory",
	"cache.redis_url":   "",
	"cache.ttl":         time.Hour,
	"cache.memory_size": 1024,

	"gate.strict_default":          false,
	"gate.inappropriate_threshold": 3,
	"gate.lists_path":              "",

	"summarize.min_chars":          50,
	"summarize.async_threshold":    5000,
	"summarize.compress_threshold": 10000,
	"summarize.chunk_threshold":    20000,

	"extract.fetch_timeout": 10 * time.Second,
	"extract.user_agent":    "Mozilla/5.0 (compatible; summarizer-api/1.0)",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Optional config.yaml in the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a fully populated Config.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
