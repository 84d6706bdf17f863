package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := ContextSignal(ctx)
	require.False(t, sig.Cancelled())

	fired := make(chan struct{})
	sig.OnCancel(func() { close(fired) })

	cancel()
	assert.True(t, sig.Cancelled())

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("OnCancel callback did not run")
	}
}

func TestContextSignal_Stop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sig := ContextSignal(ctx)
	stop := sig.OnCancel(func() { t.Error("detached callback must not run") })

	assert.True(t, stop())
	cancel()
	assert.False(t, stop())
}
