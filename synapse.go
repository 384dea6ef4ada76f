package synapse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/cognitive"
	"github.com/aretw0/synapse/pkg/config"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/history"
	"github.com/aretw0/synapse/pkg/intent"
	"github.com/aretw0/synapse/pkg/observability"
	"github.com/aretw0/synapse/pkg/plugin"
	"github.com/aretw0/synapse/pkg/store"
)

// Runtime is one self-contained synapse instance.
// Every registry (subscribers, plugins, state) belongs to the instance; nothing is process-wide.
type Runtime struct {
	cfg    config.Config
	logger *slog.Logger

	bus         *events.Bus
	store       *store.Store
	detector    *cognitive.Detector
	plugins     *plugin.Orchestrator
	interpreter *intent.Interpreter
	metrics     *observability.Metrics

	reducers   map[string]store.Reducer
	middleware []store.Middleware
	rules      []rule

	closeOnce sync.Once
	detach    []func()
}

type rule struct {
	pattern string
	rule    intent.Rule
}

// Option defines a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets a custom structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithReducer adds a slice to the state tree. The "cognitive" key is reserved.
func WithReducer(key string, reducer store.Reducer) Option {
	return func(r *Runtime) {
		if r.reducers == nil {
			r.reducers = make(map[string]store.Reducer)
		}
		r.reducers[key] = reducer
	}
}

// WithMiddleware installs store middleware ahead of the built-in ones.
func WithMiddleware(mws ...store.Middleware) Option {
	return func(r *Runtime) {
		r.middleware = append(r.middleware, mws...)
	}
}

// WithIntent maps raw events matching pattern through rule.
func WithIntent(pattern string, fn intent.Rule) Option {
	return func(r *Runtime) {
		r.rules = append(r.rules, rule{pattern: pattern, rule: fn})
	}
}

// WithMetrics feeds m from the runtime's events and actions.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// New builds a runtime from cfg.
func New(cfg config.Config, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runtime{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if _, taken := r.reducers[cognitive.SliceKey]; taken {
		return nil, fmt.Errorf("state key %q is reserved", cognitive.SliceKey)
	}

	r.bus = events.NewBus(
		events.WithLogger(r.logger.With("component", "events")),
		events.WithBreaker(cfg.Breaker()),
		events.WithHistorySize(cfg.Events.HistorySize),
	)
	r.detector = cognitive.NewDetector(cfg.Detector(),
		cognitive.WithLogger(r.logger.With("component", "cognitive")),
		cognitive.WithEmitter(r.bus),
	)

	reducers := map[string]store.Reducer{cognitive.SliceKey: cognitive.Reducer()}
	for key, reducer := range r.reducers {
		reducers[key] = reducer
	}
	mws := []store.Middleware{store.Logger(r.logger.With("component", "store"))}
	mws = append(mws, r.middleware...)
	if r.metrics != nil {
		mws = append(mws, r.metrics.Middleware())
	}
	mws = append(mws, r.detector.Middleware())

	st, err := store.New(store.CombineReducers(reducers),
		store.WithLogger(r.logger.With("component", "store")),
		store.WithActionHistory(cfg.Store.ActionHistory),
		store.ApplyMiddleware(mws...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}
	r.store = st

	r.plugins = plugin.New(r,
		plugin.WithLogger(r.logger.With("component", "plugins")),
		plugin.WithCriticalPriority(cfg.Plugins.CriticalPriority),
		plugin.WithDefaults(cfg.PluginDefaults()),
	)

	r.interpreter = intent.New(intent.WithLogger(r.logger.With("component", "intent")))
	for _, rl := range r.rules {
		r.interpreter.Map(rl.pattern, rl.rule)
	}
	r.detach = append(r.detach, r.interpreter.Attach(r.bus, r.store))
	if r.metrics != nil {
		r.detach = append(r.detach, r.metrics.Watch(r.bus))
	}
	return r, nil
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() config.Config { return r.cfg }

// Bus returns the event channel.
func (r *Runtime) Bus() *events.Bus { return r.bus }

// Store returns the action store.
func (r *Runtime) Store() *store.Store { return r.store }

// Detector returns the cognitive state detector.
func (r *Runtime) Detector() *cognitive.Detector { return r.detector }

// History returns the session history owned by the detector.
func (r *Runtime) History() *history.History { return r.detector.History() }

// Plugins returns the lifecycle orchestrator.
func (r *Runtime) Plugins() *plugin.Orchestrator { return r.plugins }

// Logger implements plugin.Host.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Subscribe implements plugin.Host.
func (r *Runtime) Subscribe(pattern string, handler domain.EventHandler, opts ...events.SubscribeOption) events.Unsubscribe {
	return r.bus.Subscribe(pattern, handler, opts...)
}

// Emit raises an event on the bus. It reports false when delivery was refused.
func (r *Runtime) Emit(ctx context.Context, name string, payload any) bool {
	return r.bus.Emit(ctx, name, payload)
}

// Dispatch sends an action through the store.
func (r *Runtime) Dispatch(ctx context.Context, action domain.Action) error {
	return r.store.Dispatch(ctx, action)
}

// RecordInteraction feeds one outcome to the session history and the detector.
func (r *Runtime) RecordInteraction(ctx context.Context, rec domain.ActionRecord) error {
	return r.store.Dispatch(ctx, cognitive.RecordAction(rec))
}

// Cognitive returns the committed cognitive slice.
func (r *Runtime) Cognitive() cognitive.Snapshot {
	if snap, ok := r.store.Select(cognitive.SliceKey).(*cognitive.Snapshot); ok && snap != nil {
		return *snap
	}
	return cognitive.Snapshot{State: domain.CognitiveNeutral}
}

// Register adds a plugin. See plugin.Orchestrator.Register.
func (r *Runtime) Register(p plugin.Plugin, opts ...plugin.RegisterOption) error {
	return r.plugins.Register(p, opts...)
}

// Init initializes the plugins. See plugin.Orchestrator.Init.
func (r *Runtime) Init(ctx context.Context) error { return r.plugins.Init(ctx) }

// Start starts the plugins.
func (r *Runtime) Start(ctx context.Context) error { return r.plugins.Start(ctx) }

// Stop stops the plugins.
func (r *Runtime) Stop(ctx context.Context) error { return r.plugins.Stop(ctx) }

// Destroy tears the plugins down; the runtime can be initialized again afterwards.
func (r *Runtime) Destroy(ctx context.Context) error { return r.plugins.Destroy(ctx) }

// IsInitialized reports whether Init succeeded and Destroy has not run since.
func (r *Runtime) IsInitialized() bool { return r.plugins.IsInitialized() }

// Close destroys the plugins, detaches the built-in subscribers and closes the bus.
// The runtime is unusable afterwards.
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		if r.plugins.IsInitialized() {
			err = r.plugins.Destroy(ctx)
		}
		for _, d := range r.detach {
			d()
		}
		r.bus.Close()
	})
	return err
}
