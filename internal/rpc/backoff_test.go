package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff_Next(t *testing.T) {
	b := NewBackoff(time.Second)

	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
	assert.Equal(t, 4*time.Second, b.Next())
	assert.Equal(t, 8*time.Second, b.Next())
}

func TestBackoff_DelaySaturates(t *testing.T) {
	b := NewBackoff(time.Millisecond)
	assert.Equal(t, time.Millisecond, b.Delay(-3))
	assert.Equal(t, b.Delay(30), b.Delay(64))
}

func TestContextSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ContextSleep(ctx, time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContextSleep_Elapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, ContextSleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
