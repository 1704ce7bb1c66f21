package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.False(t, Enabled(""))
}

func TestInitWithEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "http://127.0.0.1:4318", "test")
	require.NoError(t, err)
	assert.True(t, Enabled("127.0.0.1:4318"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so there is nothing to flush.
	_ = shutdown(ctx)
}
