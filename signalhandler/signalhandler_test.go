package signalhandler

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupHandler_CancelsOnSignal(t *testing.T) {
	ctx, stop := SetupHandler(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}
}

func TestSetupHandler_StopCancels(t *testing.T) {
	ctx, stop := SetupHandler(context.Background())
	stop()
	assert.Error(t, ctx.Err())
}
