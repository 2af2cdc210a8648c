package vllm

import (
	"github.com/abaplens/abaplens/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// vLLM does not check the bearer token unless started with --api-key,
// but the OpenAI client refuses to start without one.
const placeholderToken = "EMPTY"

// NewModel returns a client for a vLLM server through its
// OpenAI-compatible endpoint.
func NewModel(cfg config.VLLMConfig) (llms.Model, error) {
	return openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(placeholderToken),
		openai.WithModel(cfg.Model),
	)
}
