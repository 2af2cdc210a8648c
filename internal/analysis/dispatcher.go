package analysis

import (
	"context"
	"fmt"

	"github.com/abaplens/abaplens/internal/ai"
	"github.com/tmc/langchaingo/llms"
)

// Dispatcher sends one prompt per call to the completion service.
// It never retries.
type Dispatcher struct {
	model    llms.Model
	provider string
	schema   Schema
	opts     []llms.CallOption
}

// NewDispatcher creates a Dispatcher around an explicitly constructed model.
func NewDispatcher(model llms.Model, provider string, schema Schema, opts ...llms.CallOption) *Dispatcher {
	return &Dispatcher{
		model:    model,
		provider: provider,
		schema:   schema,
		opts:     opts,
	}
}

// Dispatch returns the raw text of the first choice of the model reply.
func (d *Dispatcher) Dispatch(ctx context.Context, code string) (string, error) {
	resp, err := d.model.GenerateContent(ctx, d.schema.Messages(code), d.opts...)
	if err != nil {
		return "", &UpstreamError{Provider: d.provider, Err: ai.Classify(err)}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", &UpstreamError{
			Provider: d.provider,
			Err:      fmt.Errorf("%w: reply has no choices", ai.ErrInvalidResponse),
		}
	}
	return resp.Choices[0].Content, nil
}
