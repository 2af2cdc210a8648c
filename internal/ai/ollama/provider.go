package ollama

import (
	"github.com/abaplens/abaplens/internal/config"
	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

// NewModel returns a client for a local or remote Ollama server.
func NewModel(cfg config.OllamaConfig) (llms.Model, error) {
	return lcollama.New(
		lcollama.WithServerURL(cfg.BaseURL),
		lcollama.WithModel(cfg.Model),
	)
}
