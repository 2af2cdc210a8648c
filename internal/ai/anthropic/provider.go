package anthropic

import (
	"github.com/abaplens/abaplens/internal/config"
	"github.com/tmc/langchaingo/llms"
	lcanthropic "github.com/tmc/langchaingo/llms/anthropic"
)

// NewModel returns an Anthropic messages client.
func NewModel(cfg config.AnthropicConfig) (llms.Model, error) {
	return lcanthropic.New(
		lcanthropic.WithToken(cfg.APIKey),
		lcanthropic.WithModel(cfg.Model),
	)
}
