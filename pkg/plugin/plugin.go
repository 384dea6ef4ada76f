package plugin

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/ports"
)

// Host is the runtime surface handed to plugins during Init.
type Host interface {
	ports.Emitter
	ports.Dispatcher
	Subscribe(pattern string, handler domain.EventHandler, opts ...events.SubscribeOption) events.Unsubscribe
	Logger() *slog.Logger
}

// Plugin is a capability module. Only the name is mandatory.
type Plugin interface {
	Name() string
}

// Initializer is implemented by plugins with an init hook.
type Initializer interface {
	Init(ctx context.Context, host Host) error
}

// Starter is implemented by plugins with a start hook.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by plugins with a stop hook.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Destroyer is implemented by plugins with a destroy hook.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// Configured is implemented by plugins that carry their own registration defaults.
// Options passed to Register override them.
type Configured interface {
	Options() Options
}

// Capabilities records which hooks a plugin provides.
type Capabilities struct {
	Init, Start, Stop, Destroy bool
}

type capabilityReporter interface {
	Capabilities() Capabilities
}

func capabilitiesOf(p Plugin) Capabilities {
	if r, ok := p.(capabilityReporter); ok {
		return r.Capabilities()
	}
	_, hasInit := p.(Initializer)
	_, hasStart := p.(Starter)
	_, hasStop := p.(Stopper)
	_, hasDestroy := p.(Destroyer)
	return Capabilities{Init: hasInit, Start: hasStart, Stop: hasStop, Destroy: hasDestroy}
}

// Options are the registration attributes of a plugin.
type Options struct {
	Priority    int           `json:"priority"`
	Essential   bool          `json:"essential"`
	InitTimeout time.Duration `json:"init_timeout"`
}

// RegisterOption overrides one registration attribute.
type RegisterOption func(*Options)

// WithPriority sets the priority; plugins at or above the critical threshold initialize first.
func WithPriority(priority int) RegisterOption {
	return func(o *Options) {
		o.Priority = priority
	}
}

// WithEssential marks a plugin whose init failure aborts Init.
func WithEssential(essential bool) RegisterOption {
	return func(o *Options) {
		o.Essential = essential
	}
}

// WithInitTimeout bounds the init hook.
func WithInitTimeout(timeout time.Duration) RegisterOption {
	return func(o *Options) {
		o.InitTimeout = timeout
	}
}

// Hooks adapts plain functions to a Plugin. Nil hooks are reported as absent.
type Hooks struct {
	ID          string
	Priority    int
	Essential   bool
	InitTimeout time.Duration

	OnInit    func(ctx context.Context, host Host) error
	OnStart   func(ctx context.Context) error
	OnStop    func(ctx context.Context) error
	OnDestroy func(ctx context.Context) error
}

// Name implements Plugin.
func (h *Hooks) Name() string { return h.ID }

// Options implements Configured.
func (h *Hooks) Options() Options {
	return Options{Priority: h.Priority, Essential: h.Essential, InitTimeout: h.InitTimeout}
}

// Capabilities reports the non-nil hooks.
func (h *Hooks) Capabilities() Capabilities {
	return Capabilities{
		Init:    h.OnInit != nil,
		Start:   h.OnStart != nil,
		Stop:    h.OnStop != nil,
		Destroy: h.OnDestroy != nil,
	}
}

// Init implements Initializer.
func (h *Hooks) Init(ctx context.Context, host Host) error { return h.OnInit(ctx, host) }

// Start implements Starter.
func (h *Hooks) Start(ctx context.Context) error { return h.OnStart(ctx) }

// Stop implements Stopper.
func (h *Hooks) Stop(ctx context.Context) error { return h.OnStop(ctx) }

// Destroy implements Destroyer.
func (h *Hooks) Destroy(ctx context.Context) error { return h.OnDestroy(ctx) }
