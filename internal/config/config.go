package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the ABAPLens server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	AI        AIConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	LogLevel           slog.Level
	MaxBodyBytes       int64
	RateLimitPerMinute int
	APIKeyHashes       []string
	TrustedProxies     []string
}

// DatabaseConfig is optional. An empty URL disables analysis history.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional. An empty URL disables result caching and
// switches rate limiting to the in-process limiter.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	OpenAI           OpenAIConfig
	Anthropic        AnthropicConfig
	Ollama           OllamaConfig
	VLLM             VLLMConfig
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
	"vllm":      true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:               env.Int("PORT", 5000),
			Env:                envString("ABAPLENS_ENV", "development"),
			LogLevel:           env.Level("LOG_LEVEL", slog.LevelInfo),
			MaxBodyBytes:       int64(env.Int("MAX_BODY_BYTES", 1<<20)),
			RateLimitPerMinute: env.Int("RATE_LIMIT_PER_MINUTE", 60),
			APIKeyHashes:       envList("API_KEY_HASHES"),
			TrustedProxies:     envList("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    env.Int("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    env.Int("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: env.Duration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			CacheTTL: env.Duration("ANALYSIS_CACHE_TTL", 0),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "openai"),
			InferenceTimeout: env.DurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4o"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				Model:   os.Getenv("VLLM_MODEL"),
			},
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  envString("OTEL_SERVICE_NAME", "abaplens"),
		},
	}

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Model returns the model identifier for the configured provider.
func (c AIConfig) Model() string {
	switch c.Provider {
	case "openai":
		return c.OpenAI.Model
	case "anthropic":
		return c.Anthropic.Model
	case "ollama":
		return c.Ollama.Model
	case "vllm":
		return c.VLLM.Model
	default:
		return ""
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.Server.RateLimitPerMinute)
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, anthropic, ollama, vllm; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}
	if c.AI.InferenceTimeout < 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must not be negative")
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}
	if c.Redis.CacheTTL < 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must not be negative")
	}
	if c.Redis.CacheTTL > 0 && c.Redis.URL == "" {
		return fmt.Errorf("ANALYSIS_CACHE_TTL requires REDIS_URL")
	}

	for _, h := range c.Server.APIKeyHashes {
		if !strings.HasPrefix(h, "$2") {
			return fmt.Errorf("API_KEY_HASHES must contain bcrypt hashes")
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envReader parses typed values and collects every malformed one.
type envReader struct {
	errs []error
}

func (e *envReader) fail(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: invalid value %q: %w", key, v, err))
}

func (e *envReader) Int(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.fail(key, v, err)
		return defaultVal
	}
	return i
}

func (e *envReader) Duration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.fail(key, v, err)
		return defaultVal
	}
	return d
}

func (e *envReader) DurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.fail(key, v, err)
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (e *envReader) Level(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		e.fail(key, v, err)
		return defaultVal
	}
	return lvl
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
