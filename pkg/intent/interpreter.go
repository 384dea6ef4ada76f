package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/ports"
)

// Prefix namespaces every interpreted command.
const Prefix = "intent:"

// Bus is the part of the event channel the interpreter needs.
type Bus interface {
	ports.Emitter
	Subscribe(pattern string, handler domain.EventHandler, opts ...events.SubscribeOption) events.Unsubscribe
}

// Intent is the interpretation of one raw event.
type Intent struct {
	Name    string
	Payload any
	Action  *domain.Action
}

// Rule interprets a raw event. Returning false leaves the event alone.
type Rule func(evt domain.Event) (Intent, bool)

type binding struct {
	pattern string
	rule    Rule
}

// Interpreter maps raw events to intents and actions.
type Interpreter struct {
	logger *slog.Logger

	mu       sync.RWMutex
	bindings []binding
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// New creates an empty interpreter.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Map binds rule to every event matching pattern. Bindings take effect on the next Attach.
func (i *Interpreter) Map(pattern string, rule Rule) *Interpreter {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.bindings = append(i.bindings, binding{pattern: pattern, rule: rule})
	return i
}

// Attach subscribes every binding and the outcome bridge to bus.
// The returned function removes all of them.
func (i *Interpreter) Attach(bus Bus, dispatcher ports.Dispatcher) func() {
	i.mu.RLock()
	bindings := append([]binding(nil), i.bindings...)
	i.mu.RUnlock()

	unsubs := make([]events.Unsubscribe, 0, len(bindings)+1)
	for _, b := range bindings {
		unsubs = append(unsubs, bus.Subscribe(b.pattern, i.handle(b, bus, dispatcher)))
	}
	unsubs = append(unsubs, bus.Subscribe(domain.EventInteraction, i.bridgeOutcome(dispatcher)))

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (i *Interpreter) handle(b binding, emitter ports.Emitter, dispatcher ports.Dispatcher) domain.EventHandler {
	return func(ctx context.Context, evt domain.Event) error {
		if strings.HasPrefix(evt.Name, Prefix) {
			return nil
		}
		in, ok := b.rule(evt)
		if !ok {
			return nil
		}
		i.logger.Debug("interpreted event", "event", evt.Name, "intent", in.Name)
		emitter.Emit(ctx, Prefix+in.Name, in.Payload)
		if in.Action == nil {
			return nil
		}
		if err := dispatcher.Dispatch(ctx, *in.Action); err != nil {
			return fmt.Errorf("dispatch %s for %s: %w", in.Action.Type, evt.Name, err)
		}
		return nil
	}
}

func (i *Interpreter) bridgeOutcome(dispatcher ports.Dispatcher) domain.EventHandler {
	return func(ctx context.Context, evt domain.Event) error {
		rec, err := DecodeOutcome(evt.Payload)
		if err != nil {
			return err
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = evt.Timestamp
		}
		if rec.Type == "" {
			rec.Type = evt.Source
		}
		return dispatcher.Dispatch(ctx, domain.Action{Type: domain.ActionRecordInteraction, Payload: rec})
	}
}

// DecodeOutcome reads an interaction outcome from an ActionRecord or a loosely
// typed map (as produced by JSON or YAML input). Durations may be strings ("250ms").
func DecodeOutcome(payload any) (domain.ActionRecord, error) {
	switch v := payload.(type) {
	case domain.ActionRecord:
		return v, nil
	case *domain.ActionRecord:
		if v != nil {
			return *v, nil
		}
	case map[string]any:
		var rec domain.ActionRecord
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
			),
			Result: &rec,
		})
		if err != nil {
			return domain.ActionRecord{}, err
		}
		if err := dec.Decode(v); err != nil {
			return domain.ActionRecord{}, fmt.Errorf("decode interaction outcome: %w", err)
		}
		return rec, nil
	}
	return domain.ActionRecord{}, fmt.Errorf("unsupported interaction outcome payload %T", payload)
}
