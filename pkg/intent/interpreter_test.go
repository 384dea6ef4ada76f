package intent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/intent"
	"github.com/aretw0/synapse/pkg/ports"
)

type sink struct {
	actions []domain.Action
	err     error
}

func (s *sink) dispatcher() ports.Dispatcher {
	return ports.DispatchFunc(func(_ context.Context, a domain.Action) error {
		s.actions = append(s.actions, a)
		return s.err
	})
}

func names(evts []domain.Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Name
	}
	return out
}

func TestInterpreter_GestureToNavigation(t *testing.T) {
	bus := events.NewBus()
	out := &sink{}
	in := intent.New().
		Map("gesture:swipe-left", intent.Navigate("previous")).
		Map("voice:*", intent.Verb())
	detach := in.Attach(bus, out.dispatcher())
	defer detach()

	ctx := context.Background()
	bus.Emit(ctx, "gesture:swipe-left", nil)
	bus.Emit(ctx, "voice:open", "settings")
	bus.Emit(ctx, "keyboard:enter", nil)

	assert.Equal(t, []string{"intent:navigate", "intent:open"}, names(bus.History("intent:*", 0)))
	require.Len(t, out.actions, 1)
	assert.Equal(t, domain.Action{Type: domain.ActionNavigate, Payload: "previous"}, out.actions[0])

	opened := bus.History("intent:open", 0)
	require.Len(t, opened, 1)
	assert.Equal(t, "settings", opened[0].Payload)
}

func TestInterpreter_WhenGuardsRule(t *testing.T) {
	bus := events.NewBus()
	out := &sink{}
	loud := func(evt domain.Event) bool { return evt.Payload == "loud" }
	intent.New().
		Map("voice:*", intent.When(loud, intent.Action("shout", "audio/SHOUT"))).
		Attach(bus, out.dispatcher())

	ctx := context.Background()
	bus.Emit(ctx, "voice:say", "quiet")
	bus.Emit(ctx, "voice:say", "loud")

	require.Len(t, out.actions, 1)
	assert.Equal(t, "audio/SHOUT", out.actions[0].Type)
	assert.Len(t, bus.History("intent:shout", 0), 1)
}

func TestInterpreter_DispatchFailureRaisesSystemError(t *testing.T) {
	bus := events.NewBus()
	out := &sink{err: errors.New("store offline")}
	intent.New().Map("gesture:tap", intent.Named("select")).Map("gesture:tap", intent.Navigate("home")).
		Attach(bus, out.dispatcher())

	bus.Emit(context.Background(), "gesture:tap", nil)

	failures := bus.History(domain.EventSystemError, 0)
	require.Len(t, failures, 1)
	f, ok := failures[0].Payload.(domain.HandlerFailure)
	require.True(t, ok)
	assert.Contains(t, f.Message, "store offline")
	assert.Len(t, bus.History("intent:*", 0), 2)
}

func TestInterpreter_WildcardIgnoresOwnIntents(t *testing.T) {
	bus := events.NewBus()
	out := &sink{}
	intent.New().Map(domain.Wildcard, intent.Verb()).Attach(bus, out.dispatcher())

	assert.True(t, bus.Emit(context.Background(), "gesture:tap", nil))
	assert.Equal(t, []string{"intent:tap"}, names(bus.History("intent:*", 0)))
	assert.Zero(t, bus.Stats().CircuitBreaks)
}

func TestInterpreter_OutcomeBridge(t *testing.T) {
	bus := events.NewBus()
	out := &sink{}
	intent.New().Attach(bus, out.dispatcher())

	ctx := context.Background()
	bus.EmitFrom(ctx, "editor", domain.EventInteraction, map[string]any{
		"success":  false,
		"duration": "250ms",
	})
	bus.Emit(ctx, domain.EventInteraction, domain.ActionRecord{Type: "save", Success: true, Duration: time.Second})

	require.Len(t, out.actions, 2)
	first := out.actions[0].Payload.(domain.ActionRecord)
	assert.Equal(t, domain.ActionRecordInteraction, out.actions[0].Type)
	assert.Equal(t, "editor", first.Type, "source fills a missing type")
	assert.False(t, first.Success)
	assert.Equal(t, 250*time.Millisecond, first.Duration)
	assert.False(t, first.Timestamp.IsZero())

	second := out.actions[1].Payload.(domain.ActionRecord)
	assert.Equal(t, "save", second.Type)
	assert.True(t, second.Success)
}

func TestInterpreter_DetachRemovesSubscriptions(t *testing.T) {
	bus := events.NewBus()
	out := &sink{}
	detach := intent.New().Map("gesture:*", intent.Verb()).Attach(bus, out.dispatcher())
	before := bus.Stats().Subscribers

	detach()
	assert.Equal(t, before-2, bus.Stats().Subscribers)
	bus.Emit(context.Background(), "gesture:tap", nil)
	assert.Empty(t, bus.History("intent:*", 0))
}

func TestDecodeOutcome(t *testing.T) {
	rec, err := intent.DecodeOutcome(map[string]any{
		"type":      "build",
		"success":   "true",
		"duration":  "1.5s",
		"timestamp": "2026-01-02T15:04:05Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "build", rec.Type)
	assert.True(t, rec.Success)
	assert.Equal(t, 1500*time.Millisecond, rec.Duration)
	assert.Equal(t, 2026, rec.Timestamp.Year())

	_, err = intent.DecodeOutcome(42)
	assert.Error(t, err)
	_, err = intent.DecodeOutcome(map[string]any{"duration": "soon"})
	assert.Error(t, err)
}
