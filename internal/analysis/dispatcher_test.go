package analysis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abaplens/abaplens/internal/ai"
	"github.com/abaplens/abaplens/internal/ai/mock"
	"github.com/abaplens/abaplens/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestDispatch_SendsSystemAndUserPrompt(t *testing.T) {
	m := mock.NewReplyModel("reply")
	d := analysis.NewDispatcher(m, "mock", analysis.DefaultSchema)

	out, err := d.Dispatch(context.Background(), "REPORT ztest.")
	require.NoError(t, err)
	assert.Equal(t, "reply", out)
	assert.Equal(t, 1, m.Calls())

	msgs := m.LastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)

	system := msgs[0].Parts[0].(llms.TextContent).Text
	for _, field := range analysis.DefaultSchema.RequiredFields() {
		assert.Contains(t, system, field)
	}
	assert.Contains(t, system, "S/4HANA")

	user := msgs[1].Parts[0].(llms.TextContent).Text
	assert.Equal(t, "Analyze this ABAP code:\n\nREPORT ztest.", user)
}

func TestDispatch_WithFakeLLM(t *testing.T) {
	d := analysis.NewDispatcher(fake.NewFakeLLM([]string{"first"}), "fake", analysis.DefaultSchema)

	out, err := d.Dispatch(context.Background(), "WRITE 1.")
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestDispatch_ProviderError(t *testing.T) {
	d := analysis.NewDispatcher(mock.NewFailingModel(errors.New("connection refused")), "openai", analysis.DefaultSchema)

	_, err := d.Dispatch(context.Background(), "WRITE 1.")
	require.Error(t, err)

	var upstream *analysis.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "openai", upstream.Provider)
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "upstream", analysis.ErrorKind(err))
}

func TestDispatch_Timeout(t *testing.T) {
	d := analysis.NewDispatcher(mock.NewTimeoutModel(), "openai", analysis.DefaultSchema)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Dispatch(ctx, "WRITE 1.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
	assert.Equal(t, "upstream_timeout", analysis.ErrorKind(err))
}

func TestDispatch_CallerCanceled(t *testing.T) {
	d := analysis.NewDispatcher(mock.NewTimeoutModel(), "openai", analysis.DefaultSchema)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := d.Dispatch(ctx, "WRITE 1.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrCanceled)
	assert.Equal(t, "canceled", analysis.ErrorKind(err))
}

func TestDispatch_NoChoices(t *testing.T) {
	d := analysis.NewDispatcher(mock.NewEmptyChoicesModel(), "openai", analysis.DefaultSchema)

	_, err := d.Dispatch(context.Background(), "WRITE 1.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}
