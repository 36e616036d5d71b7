package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	Chunk     ChunkConfig     `mapstructure:"chunk" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Gate      GateConfig      `mapstructure:"gate" validate:"required"`
	Summarize SummarizeConfig `mapstructure:"summarize" validate:"required"`
	Extract   ExtractConfig   `mapstructure:"extract" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
}

// TaskConfig controls the background task processor.
type TaskConfig struct {
	// WorkerCount is the number of tasks allowed to execute concurrently.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize bounds the number of outstanding (queued or running) tasks.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// DefaultTimeout caps a single-shot summarization task.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" validate:"required,gt=0"`

	// ChunkTimeout caps a chunked map-reduce task, which makes one model
	// call per chunk plus a final call.
	ChunkTimeout time.Duration `mapstructure:"chunk_timeout" validate:"required,gt=0"`

	SweepInterval   time.Duration `mapstructure:"sweep_interval" validate:"required,gt=0"`
	ResultRetention time.Duration `mapstructure:"result_retention" validate:"required,gt=0"`
}

// ChunkConfig contains the content chunking parameters.
type ChunkConfig struct {
	MaxSize int `mapstructure:"max_size" validate:"required,gt=0"`
	Overlap int `mapstructure:"overlap" validate:"gte=0,ltfield=MaxSize"`
}

// CacheConfig selects and configures the summary result cache.
type CacheConfig struct {
	Backend    string        `mapstructure:"backend" validate:"required,oneof=redis memory none"`
	RedisURL   string        `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	TTL        time.Duration `mapstructure:"ttl" validate:"required,gt=0"`
	MemorySize int           `mapstructure:"memory_size" validate:"gt=0"`
}

// GateConfig contains the content gate settings.
type GateConfig struct {
	StrictDefault          bool   `mapstructure:"strict_default"`
	InappropriateThreshold int    `mapstructure:"inappropriate_threshold" validate:"required,gt=0"`
	ListsPath              string `mapstructure:"lists_path"`
}

// SummarizeConfig holds the size thresholds that select an execution path.
type SummarizeConfig struct {
	MinChars          int `mapstructure:"min_chars" validate:"required,gt=0"`
	AsyncThreshold    int `mapstructure:"async_threshold" validate:"required,gtfield=MinChars"`
	CompressThreshold int `mapstructure:"compress_threshold" validate:"required,gtfield=AsyncThreshold"`
	ChunkThreshold    int `mapstructure:"chunk_threshold" validate:"required,gtfield=CompressThreshold"`
}

// ExtractConfig controls how remote content is fetched.
type ExtractConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"required,gt=0"`
	UserAgent    string        `mapstructure:"user_agent" validate:"required"`
}
