package telemetry_test

import (
	"context"
	"testing"

	"github.com/abaplens/abaplens/internal/config"
	"github.com/abaplens/abaplens/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.SetupTracing(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_WithEndpoint(t *testing.T) {
	shutdown, err := telemetry.SetupTracing(context.Background(), config.TelemetryConfig{
		OTLPEndpoint: "http://127.0.0.1:4318",
		ServiceName:  "abaplens-test",
	})
	require.NoError(t, err)
	// Nothing was exported, so shutdown has nothing to flush.
	assert.NoError(t, shutdown(context.Background()))
}
