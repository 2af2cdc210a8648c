package ai_test

import (
	"testing"

	"github.com/abaplens/abaplens/internal/ai"
	"github.com/abaplens/abaplens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel_OpenAI(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "openai",
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o"},
	}
	m, err := ai.NewModel(cfg)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewModel_Anthropic(t *testing.T) {
	cfg := config.AIConfig{
		Provider:  "anthropic",
		Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test", Model: "claude-sonnet-4-5-20250929"},
	}
	m, err := ai.NewModel(cfg)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewModel_Ollama(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "ollama",
		Ollama:   config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
	}
	m, err := ai.NewModel(cfg)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewModel_VLLM(t *testing.T) {
	cfg := config.AIConfig{
		Provider: "vllm",
		VLLM:     config.VLLMConfig{BaseURL: "http://localhost:8000/v1", Model: "mistral-7b"},
	}
	m, err := ai.NewModel(cfg)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewModel_Unknown(t *testing.T) {
	cfg := config.AIConfig{Provider: "unknown-provider"}
	_, err := ai.NewModel(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
	assert.Contains(t, err.Error(), "unknown-provider")
}

func TestNewModel_Empty(t *testing.T) {
	_, err := ai.NewModel(config.AIConfig{Provider: ""})
	require.Error(t, err)
}
