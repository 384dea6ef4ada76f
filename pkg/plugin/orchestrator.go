package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
)

// Status is a point-in-time view of one registered plugin.
type Status struct {
	Name         string             `json:"name"`
	State        domain.PluginState `json:"state"`
	Priority     int                `json:"priority"`
	Essential    bool               `json:"essential"`
	Critical     bool               `json:"critical"`
	Late         bool               `json:"late,omitempty"`
	Capabilities Capabilities       `json:"capabilities"`
	Error        string             `json:"error,omitempty"`
}

type entry struct {
	plugin Plugin
	opts   Options
	caps   Capabilities
	order  int

	state       domain.PluginState
	err         error
	initialized bool // init hook succeeded since the last Destroy
	late        bool // registered while Init was running or done
}

// Orchestrator owns the plugin registry and drives lifecycle phases.
type Orchestrator struct {
	host             Host
	logger           *slog.Logger
	criticalPriority int
	defaults         Options
	now              func() time.Time

	mu           sync.Mutex
	entries      []*entry
	byName       map[string]*entry
	seq          int
	initializing bool
	initialized  bool
	started      bool

	cancelDeferred context.CancelFunc
	deferredDone   chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithCriticalPriority sets the priority at or above which a plugin belongs to the critical cohort.
func WithCriticalPriority(priority int) Option {
	return func(o *Orchestrator) {
		o.criticalPriority = priority
	}
}

// WithDefaults sets the registration attributes used when neither the plugin nor Register provides one.
func WithDefaults(defaults Options) Option {
	return func(o *Orchestrator) {
		o.defaults = defaults
	}
}

// WithClock overrides the time source used for init durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator whose plugins receive host during Init.
func New(host Host, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		host:             host,
		logger:           logging.NewNop(),
		criticalPriority: domain.DefaultCriticalPriority,
		defaults: Options{
			Priority:    domain.DefaultPluginPriority,
			InitTimeout: domain.DefaultInitTimeout,
		},
		now:    time.Now,
		byName: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register adds a plugin to the registry.
// A plugin registered once Init has begun is recorded but receives no lifecycle calls.
func (o *Orchestrator) Register(p Plugin, opts ...RegisterOption) error {
	if p == nil || p.Name() == "" {
		return domain.ErrInvalidPlugin
	}
	name := p.Name()

	options := o.defaults
	if c, ok := p.(Configured); ok {
		own := c.Options()
		if own.Priority != 0 {
			options.Priority = own.Priority
		}
		if own.InitTimeout > 0 {
			options.InitTimeout = own.InitTimeout
		}
		options.Essential = own.Essential
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.InitTimeout <= 0 {
		options.InitTimeout = domain.DefaultInitTimeout
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.byName[name]; exists {
		return fmt.Errorf("%q: %w", name, domain.ErrDuplicatePlugin)
	}
	e := &entry{
		plugin: p,
		opts:   options,
		caps:   capabilitiesOf(p),
		order:  o.seq,
		state:  domain.PluginRegistered,
		late:   o.initializing || o.initialized,
	}
	o.seq++
	o.entries = append(o.entries, e)
	o.byName[name] = e

	if e.late {
		o.logger.Warn("plugin registered after init, it will not receive lifecycle calls", "plugin", name)
	} else {
		o.logger.Debug("plugin registered", "plugin", name, "priority", options.Priority, "essential", options.Essential)
	}
	return nil
}

// Get returns a registered plugin by name.
func (o *Orchestrator) Get(name string) (Plugin, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.byName[name]
	if !ok {
		return nil, false
	}
	return e.plugin, true
}

// IsInitialized reports whether Init completed successfully and Destroy has not run since.
func (o *Orchestrator) IsInitialized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}

// IsStarted reports whether the orchestrator is between Start and Stop.
func (o *Orchestrator) IsStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started
}

// Status returns a snapshot of every plugin in registration order.
func (o *Orchestrator) Status() []Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Status, 0, len(o.entries))
	for _, e := range o.entries {
		s := Status{
			Name:         e.plugin.Name(),
			State:        e.state,
			Priority:     e.opts.Priority,
			Essential:    e.opts.Essential,
			Critical:     e.opts.Priority >= o.criticalPriority,
			Late:         e.late,
			Capabilities: e.caps,
		}
		if e.err != nil {
			s.Error = e.err.Error()
		}
		out = append(out, s)
	}
	return out
}

// Init initializes the critical cohort concurrently and schedules the deferred cohort.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	if o.initialized || o.initializing {
		o.mu.Unlock()
		return domain.ErrAlreadyInitialized
	}
	o.initializing = true
	critical, deferred := o.partition()
	o.mu.Unlock()

	o.logger.Info("initializing plugins", "critical", len(critical), "deferred", len(deferred))

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range critical {
		e := e
		g.Go(func() error {
			err := o.initOne(gctx, e)
			if err != nil && e.opts.Essential {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.rollback(ctx, critical)
		o.mu.Lock()
		o.initializing = false
		for _, e := range o.entries {
			e.late = false
		}
		o.mu.Unlock()
		o.logger.Error("init aborted by essential plugin", "error", err)
		return err
	}

	dctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.mu.Lock()
	o.initializing = false
	o.initialized = true
	o.cancelDeferred = cancel
	o.deferredDone = done
	o.mu.Unlock()

	o.host.Emit(ctx, domain.EventSystemReady, o.Status())
	go o.runDeferred(dctx, deferred, done)
	return nil
}

// partition splits eligible entries into cohorts. Caller holds o.mu.
func (o *Orchestrator) partition() (critical, deferred []*entry) {
	for _, e := range o.entries {
		if e.late {
			continue
		}
		if e.opts.Priority >= o.criticalPriority {
			critical = append(critical, e)
		} else {
			deferred = append(deferred, e)
		}
	}
	sort.SliceStable(deferred, func(i, j int) bool {
		return deferred[i].opts.Priority > deferred[j].opts.Priority
	})
	return critical, deferred
}

type outcome struct {
	err error
}

// initOne races the init hook against its timeout.
// A hook that settles after losing the race writes into a buffered channel nobody reads.
func (o *Orchestrator) initOne(ctx context.Context, e *entry) error {
	name := e.plugin.Name()
	o.setState(e, domain.PluginInitializing, nil)
	startedAt := o.now()

	var err error
	if e.caps.Init {
		hook, _ := e.plugin.(Initializer)
		hctx, cancel := context.WithTimeout(ctx, e.opts.InitTimeout)
		defer cancel()

		done := make(chan outcome, 1)
		go func() {
			done <- outcome{err: safeCall(name, "init", func() error { return hook.Init(hctx, o.host) })}
		}()

		select {
		case res := <-done:
			if res.err != nil {
				err = fmt.Errorf("plugin %q: %w: %w", name, domain.ErrPluginInitFailed, res.err)
			}
		case <-hctx.Done():
			if ctx.Err() != nil {
				err = fmt.Errorf("plugin %q: init aborted: %w", name, ctx.Err())
			} else {
				err = fmt.Errorf("plugin %q did not finish init within %s: %w", name, e.opts.InitTimeout, domain.ErrPluginInitTimeout)
			}
		}
	}

	notice := domain.PluginNotice{
		Name:     name,
		Priority: e.opts.Priority,
		Duration: o.now().Sub(startedAt),
		Err:      err,
	}
	if err != nil {
		o.setState(e, domain.PluginFailed, err)
		o.logger.Warn("plugin init failed", "plugin", name, "essential", e.opts.Essential, "error", err)
		o.host.Emit(ctx, domain.EventPluginFailed, notice)
		return err
	}

	o.mu.Lock()
	e.state = domain.PluginInitialized
	e.err = nil
	e.initialized = true
	o.mu.Unlock()
	o.logger.Debug("plugin initialized", "plugin", name, "duration", notice.Duration)
	o.host.Emit(ctx, domain.EventPluginReady, notice)
	return nil
}

// rollback destroys critical plugins that initialized before an essential failure.
func (o *Orchestrator) rollback(ctx context.Context, cohort []*entry) {
	for i := len(cohort) - 1; i >= 0; i-- {
		e := cohort[i]
		o.mu.Lock()
		ok := e.initialized
		o.mu.Unlock()
		if !ok {
			continue
		}
		if e.caps.Destroy {
			d, _ := e.plugin.(Destroyer)
			if err := safeCall(e.plugin.Name(), "destroy", func() error { return d.Destroy(ctx) }); err != nil {
				o.logger.Warn("plugin rollback failed", "plugin", e.plugin.Name(), "error", err)
			}
		}
		o.mu.Lock()
		e.initialized = false
		e.state = domain.PluginRegistered
		o.mu.Unlock()
	}
}

func (o *Orchestrator) runDeferred(ctx context.Context, cohort []*entry, done chan struct{}) {
	defer close(done)

	ready, failed := 0, 0
	for _, e := range cohort {
		if ctx.Err() != nil {
			return
		}
		if err := o.initOne(ctx, e); err != nil {
			if ctx.Err() != nil {
				return
			}
			failed++
			continue
		}
		ready++

		if err := o.startOne(ctx, e); err != nil {
			o.logger.Warn("deferred plugin failed to start", "plugin", e.plugin.Name(), "error", err)
		}
	}

	o.logger.Info("deferred plugins settled", "ready", ready, "failed", failed)
	o.host.Emit(ctx, domain.EventDeferredReady, map[string]int{"ready": ready, "failed": failed})
}

// WaitDeferred blocks until the deferred cohort has settled or ctx is done.
func (o *Orchestrator) WaitDeferred(ctx context.Context) error {
	o.mu.Lock()
	done := o.deferredDone
	o.mu.Unlock()
	if done == nil {
		return domain.ErrNotInitialized
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs start hooks in registration order.
// Deferred plugins that become ready later are started as they arrive.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if !o.initialized {
		o.mu.Unlock()
		return domain.ErrNotInitialized
	}
	if o.started {
		o.mu.Unlock()
		o.logger.Warn("start called twice, ignoring")
		return nil
	}
	o.started = true
	targets := append([]*entry(nil), o.entries...)
	o.mu.Unlock()

	for _, e := range targets {
		if err := o.startOne(ctx, e); err != nil {
			if e.opts.Essential {
				return err
			}
			o.logger.Warn("plugin failed to start", "plugin", e.plugin.Name(), "error", err)
		}
	}
	o.host.Emit(ctx, domain.EventSystemStarted, nil)
	return nil
}

// startOne starts e at most once per start cycle while the orchestrator is
// started; the checks and the claim happen under one lock. A Stop that lands
// while the start hook runs skips the entry, so startOne stops it itself.
func (o *Orchestrator) startOne(ctx context.Context, e *entry) error {
	o.mu.Lock()
	if !o.started || e.late || (e.state != domain.PluginInitialized && e.state != domain.PluginStopped) {
		o.mu.Unlock()
		return nil
	}
	e.state = domain.PluginStarting
	o.mu.Unlock()

	if e.caps.Start {
		s, _ := e.plugin.(Starter)
		if err := safeCall(e.plugin.Name(), "start", func() error { return s.Start(ctx) }); err != nil {
			err = fmt.Errorf("plugin %q: start: %w", e.plugin.Name(), err)
			o.setState(e, domain.PluginFailed, err)
			return err
		}
	}

	o.mu.Lock()
	if o.started {
		e.state = domain.PluginStarted
		e.err = nil
		o.mu.Unlock()
		return nil
	}
	e.state = domain.PluginStopping
	o.mu.Unlock()

	o.logger.Warn("orchestrator stopped while plugin was starting, stopping it", "plugin", e.plugin.Name())
	return o.stopOne(ctx, e)
}

// stopOne runs the stop hook of an entry already claimed as stopping.
func (o *Orchestrator) stopOne(ctx context.Context, e *entry) error {
	if e.caps.Stop {
		s, _ := e.plugin.(Stopper)
		if err := safeCall(e.plugin.Name(), "stop", func() error { return s.Stop(ctx) }); err != nil {
			err = fmt.Errorf("plugin %q: stop: %w", e.plugin.Name(), err)
			o.setState(e, domain.PluginFailed, err)
			return err
		}
	}
	o.setState(e, domain.PluginStopped, nil)
	return nil
}

// Stop runs stop hooks in reverse registration order.
// Every plugin is stopped even when an earlier one fails; the failures are joined.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		o.logger.Warn("stop called while not started, ignoring")
		return nil
	}
	o.started = false
	targets := append([]*entry(nil), o.entries...)
	o.mu.Unlock()

	var errs []error
	for i := len(targets) - 1; i >= 0; i-- {
		e := targets[i]
		o.mu.Lock()
		running := e.state == domain.PluginStarted
		if running {
			e.state = domain.PluginStopping
		}
		o.mu.Unlock()
		if !running {
			continue
		}
		if err := o.stopOne(ctx, e); err != nil {
			o.logger.Warn("plugin failed to stop", "plugin", e.plugin.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	o.host.Emit(ctx, domain.EventSystemStopped, nil)
	return errors.Join(errs...)
}

// Destroy stops a running orchestrator, cancels the deferred cohort and tears
// down every initialized plugin in reverse order. Afterwards the orchestrator
// can be initialized again, including plugins that were registered late.
func (o *Orchestrator) Destroy(ctx context.Context) error {
	var errs []error
	if o.IsStarted() {
		if err := o.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	o.mu.Lock()
	cancel, done := o.cancelDeferred, o.deferredDone
	o.mu.Unlock()
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	o.mu.Lock()
	targets := append([]*entry(nil), o.entries...)
	o.mu.Unlock()

	for i := len(targets) - 1; i >= 0; i-- {
		e := targets[i]
		o.mu.Lock()
		live := e.initialized
		if live {
			e.state = domain.PluginDestroying
		}
		o.mu.Unlock()
		if !live {
			continue
		}
		var err error
		if e.caps.Destroy {
			d, _ := e.plugin.(Destroyer)
			err = safeCall(e.plugin.Name(), "destroy", func() error { return d.Destroy(ctx) })
		}
		o.mu.Lock()
		e.initialized = false
		if err != nil {
			e.state = domain.PluginFailed
			e.err = fmt.Errorf("plugin %q: destroy: %w", e.plugin.Name(), err)
			errs = append(errs, e.err)
		} else {
			e.state = domain.PluginDestroyed
		}
		o.mu.Unlock()
	}

	o.mu.Lock()
	o.initialized = false
	o.started = false
	o.cancelDeferred = nil
	o.deferredDone = nil
	for _, e := range o.entries {
		e.late = false
	}
	o.mu.Unlock()

	o.host.Emit(ctx, domain.EventSystemDestroyed, nil)
	return errors.Join(errs...)
}

func (o *Orchestrator) setState(e *entry, state domain.PluginState, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e.state = state
	e.err = err
}

// safeCall converts a panicking hook into an error.
func safeCall(name, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %q panicked in %s: %v\n%s", name, hook, r, debug.Stack())
		}
	}()
	return fn()
}
