package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/store"
)

const namespace = "synapse"

// Subscriber is the part of the bus Metrics listens on.
type Subscriber interface {
	Subscribe(pattern string, handler domain.EventHandler, opts ...events.SubscribeOption) events.Unsubscribe
}

// Metrics holds the runtime collectors.
type Metrics struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	handlerFailures prometheus.Counter
	circuitBreaks   prometheus.Counter
	actions         *prometheus.CounterVec
	pluginInits     *prometheus.CounterVec
	pluginInitTime  prometheus.Histogram
	cognitiveState  *prometheus.GaugeVec
	transitions     *prometheus.CounterVec
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	processCollectors bool
}

// WithProcessCollectors also registers the Go runtime and process collectors.
func WithProcessCollectors() Option {
	return func(o *options) {
		o.processCollectors = true
	}
}

// New creates the collectors on a private registry.
func New(opts ...Option) *Metrics {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events delivered on the bus, by namespace.",
			},
			[]string{"namespace"},
		),
		handlerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Event handlers that returned an error or panicked.",
		}),
		circuitBreaks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaks_total",
			Help:      "Emissions refused by the circuit breaker.",
		}),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Actions that went through the store reducers, by type.",
			},
			[]string{"type"},
		),
		pluginInits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plugin_inits_total",
				Help:      "Plugin init attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		pluginInitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_init_duration_seconds",
			Help:      "Duration of plugin init hooks.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		cognitiveState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cognitive_state",
				Help:      "1 for the current cognitive state, 0 otherwise.",
			},
			[]string{"state"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cognitive_transitions_total",
				Help:      "Committed cognitive state transitions.",
			},
			[]string{"from", "to"},
		),
	}

	m.registry.MustRegister(
		m.events,
		m.handlerFailures,
		m.circuitBreaks,
		m.actions,
		m.pluginInits,
		m.pluginInitTime,
		m.cognitiveState,
		m.transitions,
	)
	if o.processCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.setState(domain.CognitiveNeutral)
	return m
}

// Registry exposes the private registry, mostly for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Watch subscribes to every event on bus. Call the returned function to stop.
func (m *Metrics) Watch(bus Subscriber) events.Unsubscribe {
	return bus.Subscribe(domain.Wildcard, func(_ context.Context, evt domain.Event) error {
		m.observe(evt)
		return nil
	}, events.WithPriority(-1000))
}

func (m *Metrics) observe(evt domain.Event) {
	m.events.WithLabelValues(evt.Namespace()).Inc()

	switch evt.Name {
	case domain.EventSystemError:
		m.handlerFailures.Inc()
	case domain.EventCircuitBreaker:
		m.circuitBreaks.Inc()
	case domain.EventPluginReady:
		m.pluginInits.WithLabelValues("ready").Inc()
		if n, ok := evt.Payload.(domain.PluginNotice); ok {
			m.pluginInitTime.Observe(n.Duration.Seconds())
		}
	case domain.EventPluginFailed:
		m.pluginInits.WithLabelValues("failed").Inc()
		if n, ok := evt.Payload.(domain.PluginNotice); ok {
			m.pluginInitTime.Observe(n.Duration.Seconds())
		}
	case domain.EventCognitiveChanged:
		if tr, ok := evt.Payload.(domain.CognitiveTransition); ok {
			m.transitions.WithLabelValues(string(tr.From), string(tr.To)).Inc()
			m.setState(tr.To)
		}
	}
}

func (m *Metrics) setState(current domain.CognitiveState) {
	for _, s := range domain.CognitiveStates {
		v := 0.0
		if s == current {
			v = 1
		}
		m.cognitiveState.WithLabelValues(string(s)).Set(v)
	}
}

// Middleware counts every action that reached the reducers without error.
func (m *Metrics) Middleware() store.Middleware {
	return func(store.MiddlewareAPI) func(store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(ctx context.Context, action domain.Action) error {
				if err := next(ctx, action); err != nil {
					return err
				}
				m.actions.WithLabelValues(action.Type).Inc()
				return nil
			}
		}
	}
}
