package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/abaplens/abaplens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv is a helper that sets environment variables for a test and restores them after.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

// validEnv returns the minimum set of valid environment variables.
func validEnv() map[string]string {
	return map[string]string{
		"OPENAI_API_KEY": "sk-test",
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, slog.LevelInfo, cfg.Server.LogLevel)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
	assert.Empty(t, cfg.Server.APIKeyHashes)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o", cfg.AI.Model())
	assert.Equal(t, 120*time.Second, cfg.AI.InferenceTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Zero(t, cfg.Redis.CacheTTL)
}

func TestLoad_CustomPort(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MalformedValuesFail(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "abc"},
		{"MAX_BODY_BYTES", "1MB"},
		{"RATE_LIMIT_PER_MINUTE", "lots"},
		{"LOG_LEVEL", "chatty"},
		{"AI_INFERENCE_TIMEOUT_SECS", "2m"},
		{"DATABASE_CONN_MAX_LIFETIME", "forever"},
		{"ANALYSIS_CACHE_TTL", "1 hour"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setEnv(t, validEnv())
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_RateLimitMustBePositive(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MINUTE")
}

func TestLoad_TrustedProxies(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestLoad_PortOutOfRange(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("PORT", "70000")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_LogLevel(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.Server.LogLevel)
}

func TestLoad_MissingOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoad_InvalidProvider(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("AI_PROVIDER", "gemini")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_PROVIDER")
	assert.Contains(t, err.Error(), "gemini")
}

func TestLoad_AnthropicRequiresKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestLoad_OllamaNeedsNoKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.AI.Model())
	assert.Equal(t, "http://localhost:11434", cfg.AI.Ollama.BaseURL)
}

func TestLoad_VLLMRequiresModel(t *testing.T) {
	t.Setenv("AI_PROVIDER", "vllm")
	t.Setenv("VLLM_MODEL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VLLM_MODEL")
}

func TestLoad_InferenceTimeout(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("AI_INFERENCE_TIMEOUT_SECS", "30")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.AI.InferenceTimeout)
}

func TestLoad_InvalidRedisURL(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("REDIS_URL", "localhost:6379")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_CacheTTLRequiresRedis(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("ANALYSIS_CACHE_TTL", "10m")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_CacheTTLWithRedis(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ANALYSIS_CACHE_TTL", "10m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoad_APIKeyHashes(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("API_KEY_HASHES", " $2a$10$abc , $2a$10$def ,")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"$2a$10$abc", "$2a$10$def"}, cfg.Server.APIKeyHashes)
}

func TestLoad_APIKeyHashesRejectsPlaintext(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("API_KEY_HASHES", "plaintext-key")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt")
}
