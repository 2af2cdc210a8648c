package ai

import (
	"fmt"

	"github.com/abaplens/abaplens/internal/ai/anthropic"
	"github.com/abaplens/abaplens/internal/ai/ollama"
	"github.com/abaplens/abaplens/internal/ai/openai"
	"github.com/abaplens/abaplens/internal/ai/vllm"
	"github.com/abaplens/abaplens/internal/config"
	"github.com/tmc/langchaingo/llms"
)

// NewModel constructs the completion client for the configured provider.
// Called once at startup; the result is injected into the dispatcher.
func NewModel(cfg config.AIConfig) (llms.Model, error) {
	var (
		m   llms.Model
		err error
	)
	switch cfg.Provider {
	case "openai":
		m, err = openai.NewModel(cfg.OpenAI)
	case "anthropic":
		m, err = anthropic.NewModel(cfg.Anthropic)
	case "ollama":
		m, err = ollama.NewModel(cfg.Ollama)
	case "vllm":
		m, err = vllm.NewModel(cfg.VLLM)
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, anthropic, ollama, vllm", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.Provider, err)
	}
	return m, nil
}
