package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(out *[]string, label string) domain.EventHandler {
	return func(context.Context, domain.Event) error {
		*out = append(*out, label)
		return nil
	}
}

func TestBus_PriorityOrder(t *testing.T) {
	bus := events.NewBus()
	var order []string

	bus.Subscribe("tap", record(&order, "low"), events.WithPriority(-5))
	bus.Subscribe("tap", record(&order, "first-default"))
	bus.Subscribe("tap", record(&order, "high"), events.WithPriority(10))
	bus.Subscribe("tap", record(&order, "second-default"))

	require.True(t, bus.Emit(context.Background(), "tap", nil))
	assert.Equal(t, []string{"high", "first-default", "second-default", "low"}, order)
}

func TestBus_Patterns(t *testing.T) {
	bus := events.NewBus()
	var got []string

	bus.Subscribe("*", record(&got, "all"))
	bus.Subscribe("gesture:*", record(&got, "gesture"))
	bus.Subscribe("gesture:swipe", record(&got, "swipe"))

	bus.Emit(context.Background(), "gesture:swipe", nil)
	bus.Emit(context.Background(), "keyboard:press", nil)

	assert.Equal(t, []string{"all", "gesture", "swipe", "all"}, got)
}

func TestMatch(t *testing.T) {
	assert.True(t, events.Match("*", "anything"))
	assert.True(t, events.Match("voice:*", "voice:command"))
	assert.False(t, events.Match("voice:*", "voiceover"))
	assert.False(t, events.Match("voice:cmd", "voice:command"))
}

func TestBus_Once(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	bus.Subscribe("tick", func(context.Context, domain.Event) error {
		calls++
		return nil
	}, events.Once())

	bus.Emit(context.Background(), "tick", nil)
	bus.Emit(context.Background(), "tick", nil)

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Stats().Subscribers)
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	bus := events.NewBus()
	var order []string
	var unsubB events.Unsubscribe

	bus.Subscribe("x", func(context.Context, domain.Event) error {
		order = append(order, "a")
		unsubB()
		return nil
	}, events.WithPriority(1))
	unsubB = bus.Subscribe("x", record(&order, "b"))

	bus.Emit(context.Background(), "x", nil)
	bus.Emit(context.Background(), "x", nil)

	// The first emission works on the snapshot taken before "a" ran.
	assert.Equal(t, []string{"a", "b", "a"}, order)
	unsubB() // idempotent
}

func TestBus_MiddlewareTransformAndCancel(t *testing.T) {
	bus := events.NewBus()
	var payloads []any
	bus.Subscribe("*", func(_ context.Context, evt domain.Event) error {
		payloads = append(payloads, evt.Payload)
		return nil
	})

	bus.Use(func(_ context.Context, evt domain.Event) (domain.Event, bool) {
		if evt.Name == "blocked" {
			return evt, false
		}
		evt.Payload = "transformed"
		return evt, true
	})

	assert.True(t, bus.Emit(context.Background(), "open", "raw"))
	assert.False(t, bus.Emit(context.Background(), "blocked", "raw"))

	assert.Equal(t, []any{"transformed"}, payloads)
	stats := bus.Stats()
	assert.Equal(t, uint64(1), stats.Cancelled)
	assert.Equal(t, uint64(1), stats.Emitted)
	assert.Len(t, bus.History("", 0), 1, "cancelled events are not logged")
}

func TestBus_HandlerFailureIsContained(t *testing.T) {
	tests := []struct {
		name    string
		handler domain.EventHandler
	}{
		{"error", func(context.Context, domain.Event) error { return errors.New("boom") }},
		{"panic", func(context.Context, domain.Event) error { panic("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewBus()
			var order []string
			var failures []domain.HandlerFailure

			bus.Subscribe(domain.EventSystemError, func(_ context.Context, evt domain.Event) error {
				failures = append(failures, evt.Payload.(domain.HandlerFailure))
				return nil
			})
			bus.Subscribe("save", record(&order, "before"), events.WithPriority(2))
			bus.Subscribe("save", tt.handler, events.WithPriority(1))
			bus.Subscribe("save", record(&order, "after"))

			assert.True(t, bus.Emit(context.Background(), "save", nil))

			assert.Equal(t, []string{"before", "after"}, order)
			require.Len(t, failures, 1)
			assert.Equal(t, "save", failures[0].Event.Name)
			assert.Equal(t, "save", failures[0].Pattern)
			assert.Contains(t, failures[0].Message, "boom")
			assert.Equal(t, uint64(1), bus.Stats().HandlerFailures)
		})
	}
}

func TestBus_FailingErrorHandlerDoesNotLoop(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	bus.Subscribe(domain.EventSystemError, func(context.Context, domain.Event) error {
		calls++
		return errors.New("error handler broken")
	})
	bus.Subscribe("x", func(context.Context, domain.Event) error { return errors.New("x broken") })

	bus.Emit(context.Background(), "x", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(2), bus.Stats().HandlerFailures)
}

func TestBus_HistoryFilterAndLimit(t *testing.T) {
	bus := events.NewBus(events.WithHistorySize(3))
	for _, name := range []string{"a:1", "b:1", "a:2", "a:3", "b:2"} {
		bus.Emit(context.Background(), name, nil)
	}

	all := bus.History("*", 0)
	require.Len(t, all, 3)
	assert.Equal(t, "a:2", all[0].Name)

	onlyA := bus.History("a:*", 1)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "a:3", onlyA[0].Name)
}

func TestBus_SequenceAndSource(t *testing.T) {
	fixed := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	bus := events.NewBus(events.WithClock(func() time.Time { return fixed }))

	bus.EmitFrom(context.Background(), "camera", "gesture:pinch", 1)
	bus.Emit(context.Background(), "gesture:pinch", 2)

	hist := bus.History("", 0)
	require.Len(t, hist, 2)
	assert.Less(t, hist[0].ID, hist[1].ID)
	assert.Equal(t, "camera", hist[0].Source)
	assert.Equal(t, fixed, hist[1].Timestamp)
	assert.Equal(t, "gesture", hist[0].Namespace())
}

func TestBus_Close(t *testing.T) {
	bus := events.NewBus()
	bus.Close()
	assert.False(t, bus.Emit(context.Background(), "late", nil))
	bus.Close()
}

func TestBus_ConcurrentEmitters(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe("ping", func(ctx context.Context, evt domain.Event) error {
		if n := evt.Payload.(int); n > 0 {
			bus.Emit(ctx, "ping", n-1)
		}
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 11 deliveries each; chains stay short so concurrency must not trip the breaker.
			bus.Emit(context.Background(), "ping", 10)
		}()
	}
	wg.Wait()

	assert.Equal(t, 110, count)
	assert.Zero(t, bus.Stats().CircuitBreaks)
}
