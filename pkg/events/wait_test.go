package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor_Delivered(t *testing.T) {
	bus := events.NewBus()
	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Emit(context.Background(), "system:ready", "ok")
	}()

	evt, err := bus.WaitFor(context.Background(), "system:ready", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", evt.Payload)
	assert.Zero(t, bus.Stats().Subscribers, "waiter unsubscribes")
}

func TestWaitFor_Timeout(t *testing.T) {
	bus := events.NewBus()
	start := time.Now()
	_, err := bus.WaitFor(context.Background(), "never", 20*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrWaitTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, bus.Stats().Subscribers)
}

func TestWaitFor_ContextAndClose(t *testing.T) {
	bus := events.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bus.WaitFor(ctx, "never", 0)
	assert.ErrorIs(t, err, context.Canceled)

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Close()
	}()
	_, err = bus.WaitFor(context.Background(), "never", 0)
	assert.ErrorIs(t, err, domain.ErrBusClosed)
}
