package openai

import (
	"github.com/abaplens/abaplens/internal/config"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// NewModel returns an OpenAI chat-completions client.
func NewModel(cfg config.OpenAIConfig) (llms.Model, error) {
	return lcopenai.New(
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	)
}
