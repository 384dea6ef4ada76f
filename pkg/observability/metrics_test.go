package observability_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/observability"
	"github.com/aretw0/synapse/pkg/plugin"
	"github.com/aretw0/synapse/pkg/store"
)

const exposition = `
# HELP synapse_circuit_breaks_total Emissions refused by the circuit breaker.
# TYPE synapse_circuit_breaks_total counter
synapse_circuit_breaks_total 1
# HELP synapse_handler_failures_total Event handlers that returned an error or panicked.
# TYPE synapse_handler_failures_total counter
synapse_handler_failures_total 1
`

func TestMetrics_FollowBusEvents(t *testing.T) {
	bus := events.NewBus()
	m := observability.New()
	stop := m.Watch(bus)
	defer stop()
	ctx := context.Background()

	bus.Subscribe("demo:fail", func(context.Context, domain.Event) error {
		return errors.New("nope")
	})
	bus.Subscribe("demo:loop", func(ctx context.Context, evt domain.Event) error {
		bus.Emit(ctx, evt.Name, nil)
		return nil
	})

	bus.Emit(ctx, "demo:fail", nil)
	bus.Emit(ctx, "demo:loop", nil)

	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(exposition),
		"synapse_circuit_breaks_total", "synapse_handler_failures_total"))
}

func TestMetrics_PluginAndCognitiveEvents(t *testing.T) {
	bus := events.NewBus()
	m := observability.New()
	m.Watch(bus)
	ctx := context.Background()

	bus.Emit(ctx, domain.EventPluginReady, domain.PluginNotice{Name: "a", Duration: 20 * time.Millisecond})
	bus.Emit(ctx, domain.EventPluginReady, domain.PluginNotice{Name: "b"})
	bus.Emit(ctx, domain.EventPluginFailed, domain.PluginNotice{Name: "c"})
	bus.Emit(ctx, domain.EventCognitiveChanged, domain.CognitiveTransition{
		From: domain.CognitiveNeutral,
		To:   domain.CognitiveFrustrated,
	})

	body := scrape(t, m)
	assert.Contains(t, body, `synapse_plugin_inits_total{outcome="ready"} 2`)
	assert.Contains(t, body, `synapse_plugin_inits_total{outcome="failed"} 1`)
	assert.Contains(t, body, `synapse_plugin_init_duration_seconds_count 3`)
	assert.Contains(t, body, `synapse_cognitive_state{state="frustrated"} 1`)
	assert.Contains(t, body, `synapse_cognitive_state{state="neutral"} 0`)
	assert.Contains(t, body, `synapse_cognitive_transitions_total{from="neutral",to="frustrated"} 1`)
	assert.Contains(t, body, `synapse_events_total{namespace="plugin"} 3`)
}

type busHost struct {
	*events.Bus
}

func (h busHost) Dispatch(context.Context, domain.Action) error { return nil }
func (h busHost) Logger() *slog.Logger { return logging.NewNop() }

func TestMetrics_CountsCriticalAndDeferredInits(t *testing.T) {
	bus := events.NewBus()
	m := observability.New()
	m.Watch(bus)
	o := plugin.New(busHost{Bus: bus})
	require.NoError(t, o.Register(&plugin.Hooks{ID: "core", Priority: domain.DefaultCriticalPriority}))
	require.NoError(t, o.Register(&plugin.Hooks{ID: "extra", Priority: 10}))
	require.NoError(t, o.Register(&plugin.Hooks{
		ID:       "broken",
		Priority: domain.DefaultCriticalPriority,
		OnInit: func(context.Context, plugin.Host) error {
			return errors.New("no backend")
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, o.Init(ctx))
	require.NoError(t, o.WaitDeferred(ctx))
	defer func() { _ = o.Destroy(context.Background()) }()

	body := scrape(t, m)
	assert.Contains(t, body, `synapse_plugin_inits_total{outcome="ready"} 2`)
	assert.Contains(t, body, `synapse_plugin_inits_total{outcome="failed"} 1`)
	assert.Contains(t, body, `synapse_plugin_init_duration_seconds_count 3`)
}

func TestMetrics_StoreMiddleware(t *testing.T) {
	m := observability.New()
	s, err := store.New(store.CombineReducers(map[string]store.Reducer{
		"noop": func(state any, _ domain.Action) any {
			if state == nil {
				return 0
			}
			return state
		},
	}), store.ApplyMiddleware(m.Middleware()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, domain.Action{Type: "ui/CLICK"}))
	require.NoError(t, s.Dispatch(ctx, domain.Action{Type: "ui/CLICK"}))
	assert.Error(t, s.Dispatch(ctx, domain.Action{}))

	body := scrape(t, m)
	assert.Contains(t, body, `synapse_actions_total{type="ui/CLICK"} 2`)
	assert.NotContains(t, body, `synapse_actions_total{type=""}`)
}

func TestMetrics_PrivateRegistries(t *testing.T) {
	a, b := observability.New(), observability.New(observability.WithProcessCollectors())
	n, err := testutil.GatherAndCount(a.Registry(), "synapse_cognitive_state")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = testutil.GatherAndCount(b.Registry(), "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
