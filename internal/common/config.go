package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Uploads     UploadsConfig   `toml:"uploads"`
	Qdrant      QdrantConfig    `toml:"qdrant"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	RateLimit   RateLimitConfig `toml:"ratelimit"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// UploadsConfig controls transient storage for uploaded documents
type UploadsConfig struct {
	Dir             string `toml:"dir" validate:"required"`
	MaxFileSize     int64  `toml:"max_file_size" validate:"gt=0"` // bytes
	JanitorSchedule string `toml:"janitor_schedule"`              // cron spec, empty disables the janitor
	MaxAge          string `toml:"max_age"`                       // e.g. "30m" - janitor removes older files
}

// QdrantConfig contains vector index backend settings
type QdrantConfig struct {
	URL        string `toml:"url" validate:"required,url"`
	APIKey     string `toml:"api_key"`
	Collection string `toml:"collection" validate:"required"`
	Timeout    string `toml:"timeout"` // e.g. "15s"
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	Model          string  `toml:"model"`           // generation model
	EmbedModel     string  `toml:"embed_model"`     // embedding model
	EmbedDimension int     `toml:"embed_dimension"` // must match the provisioned collection
	Temperature    float32 `toml:"temperature"`
	Timeout        string  `toml:"timeout"`
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// LLMConfig selects the default generation provider
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"oneof=gemini claude"`
}

// RetrievalConfig controls query-time retrieval and context assembly
type RetrievalConfig struct {
	TopK            int `toml:"top_k" validate:"gt=0"`
	MaxContextChars int `toml:"max_context_chars" validate:"gt=0"`
}

// RateLimitConfig controls the inbound request rate limit
type RateLimitConfig struct {
	RequestsPerMinute int `toml:"requests_per_minute" validate:"gte=0"` // 0 disables limiting
	Burst             int `toml:"burst" validate:"gte=0"`
}

// NewDefaultConfig returns a Config populated with defaults. File, env, and
// flag layers override these in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3000,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Uploads: UploadsConfig{
			Dir:             "./uploads",
			MaxFileSize:     25 * 1024 * 1024,
			JanitorSchedule: "*/10 * * * *",
			MaxAge:          "30m",
		},
		Qdrant: QdrantConfig{
			URL:        "http://localhost:6333",
			Collection: "quaestor-documents",
			Timeout:    "15s",
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.2,
			Timeout:        "60s",
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2048,
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
		},
		Retrieval: RetrievalConfig{
			TopK:            2,
			MaxContextChars: 8000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 8,
			Burst:             8,
		},
	}
}

// LoadFromFiles loads configuration by layering: defaults -> file1 -> file2
// -> ... -> environment variables. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies QUAESTOR_* environment variable overrides
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("QUAESTOR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("QUAESTOR_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("QUAESTOR_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("QUAESTOR_UPLOADS_DIR"); v != "" {
		config.Uploads.Dir = v
	}
	if v := os.Getenv("QUAESTOR_QDRANT_URL"); v != "" {
		config.Qdrant.URL = v
	}
	if v := os.Getenv("QUAESTOR_QDRANT_API_KEY"); v != "" {
		config.Qdrant.APIKey = v
	}
	if v := os.Getenv("QUAESTOR_QDRANT_COLLECTION"); v != "" {
		config.Qdrant.Collection = v
	}
	if v := os.Getenv("QUAESTOR_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	// Accepted for compatibility with Google tooling conventions
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("QUAESTOR_ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("QUAESTOR_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = v
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural constraints on the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Qdrant.Timeout != "" {
		if _, err := time.ParseDuration(c.Qdrant.Timeout); err != nil {
			return fmt.Errorf("invalid qdrant.timeout %q: %w", c.Qdrant.Timeout, err)
		}
	}
	if c.Gemini.Timeout != "" {
		if _, err := time.ParseDuration(c.Gemini.Timeout); err != nil {
			return fmt.Errorf("invalid gemini.timeout %q: %w", c.Gemini.Timeout, err)
		}
	}
	if c.Uploads.MaxAge != "" {
		if _, err := time.ParseDuration(c.Uploads.MaxAge); err != nil {
			return fmt.Errorf("invalid uploads.max_age %q: %w", c.Uploads.MaxAge, err)
		}
	}

	return nil
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
