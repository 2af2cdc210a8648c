package mock

import (
	"context"
	"sync/atomic"

	"github.com/tmc/langchaingo/llms"
)

// Model satisfies llms.Model for testing and records every call.
type Model struct {
	GenerateFunc func(ctx context.Context, messages []llms.MessageContent) (string, error)

	calls    atomic.Int64
	messages atomic.Pointer[[]llms.MessageContent]
}

// GenerateContent returns the GenerateFunc reply as the single choice.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls.Add(1)
	m.messages.Store(&messages)

	if m.GenerateFunc == nil {
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: ""}}}, nil
	}
	text, err := m.GenerateFunc(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

// Call implements the single-prompt path of llms.Model.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Calls returns how many times the model was invoked.
func (m *Model) Calls() int { return int(m.calls.Load()) }

// LastMessages returns the messages of the most recent call, or nil.
func (m *Model) LastMessages() []llms.MessageContent {
	p := m.messages.Load()
	if p == nil {
		return nil
	}
	return *p
}

// NewReplyModel returns a Model that always answers with reply.
func NewReplyModel(reply string) *Model {
	return &Model{
		GenerateFunc: func(_ context.Context, _ []llms.MessageContent) (string, error) {
			return reply, nil
		},
	}
}

// NewFailingModel returns a Model that always returns the given error.
func NewFailingModel(err error) *Model {
	return &Model{
		GenerateFunc: func(_ context.Context, _ []llms.MessageContent) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutModel returns a Model that blocks until the context is done and
// then returns the context error, as a real client would.
func NewTimeoutModel() *Model {
	return &Model{
		GenerateFunc: func(ctx context.Context, _ []llms.MessageContent) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// NewEmptyChoicesModel returns a Model whose reply carries no choices.
func NewEmptyChoicesModel() llms.Model {
	return emptyChoices{}
}

type emptyChoices struct{}

func (emptyChoices) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func (e emptyChoices) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, e, prompt, options...)
}

// Compile-time check that Model implements llms.Model.
var _ llms.Model = (*Model)(nil)
