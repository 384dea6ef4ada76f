package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/synapse/internal/presentation/tui"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/plugin"
)

// Event and action names owned by the bundled plugins.
const (
	EventCoachHint  = "coach:hint"
	ActionCoachHint = "coach/HINT"
	CoachSlice      = "coach"
)

var hints = map[domain.CognitiveState]string{
	domain.CognitiveFrustrated:   "Several attempts failed in a row. Try a smaller change or read the last error closely.",
	domain.CognitiveConcentrated: "Flow detected. Notifications are muted.",
	domain.CognitiveExploring:    "Looking around? The search palette lists every command.",
	domain.CognitiveLearning:     "Accuracy is climbing. Keep going.",
}

// console prints what happens on the bus. It is critical and essential:
// without it a simulation has no output.
type console struct {
	out  io.Writer
	json bool

	mu   sync.Mutex
	subs []events.Unsubscribe
	n    int
}

func newConsole(out io.Writer, jsonMode bool) *console {
	return &console{out: out, json: jsonMode}
}

func (c *console) Name() string { return "console" }

func (c *console) Options() plugin.Options {
	return plugin.Options{Priority: 100, Essential: true}
}

func (c *console) Init(ctx context.Context, host plugin.Host) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs,
		host.Subscribe(domain.EventCognitiveChanged, c.onTransition),
		host.Subscribe(EventCoachHint, c.onHint),
		host.Subscribe(domain.EventCircuitBreaker, c.onBreak),
		host.Subscribe(domain.EventPluginFailed, c.onPluginFailed),
	)
	return nil
}

func (c *console) Destroy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, unsub := range c.subs {
		unsub()
	}
	c.subs = nil
	return nil
}

func (c *console) line(evt domain.Event, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.json {
		_ = json.NewEncoder(c.out).Encode(map[string]any{
			"event":     evt.Name,
			"timestamp": evt.Timestamp,
			"payload":   evt.Payload,
		})
		return
	}
	fmt.Fprintln(c.out, text)
}

func (c *console) onTransition(ctx context.Context, evt domain.Event) error {
	tr, ok := evt.Payload.(domain.CognitiveTransition)
	if !ok {
		return fmt.Errorf("unexpected payload %T", evt.Payload)
	}
	c.mu.Lock()
	c.n++
	n := c.n
	c.mu.Unlock()
	c.line(evt, fmt.Sprintf("  [%d] %s -> %s (confidence %.2f)", n, tui.State(tr.From), tui.State(tr.To), tr.Confidence))
	return nil
}

func (c *console) onHint(ctx context.Context, evt domain.Event) error {
	c.line(evt, fmt.Sprintf("      hint: %v", evt.Payload))
	return nil
}

func (c *console) onBreak(ctx context.Context, evt domain.Event) error {
	if cb, ok := evt.Payload.(domain.CircuitBreak); ok {
		c.line(evt, fmt.Sprintf("  ! circuit breaker tripped on %q: %s", cb.Event, cb.Reason))
	}
	return nil
}

func (c *console) onPluginFailed(ctx context.Context, evt domain.Event) error {
	if n, ok := evt.Payload.(domain.PluginNotice); ok {
		c.line(evt, fmt.Sprintf("  ! plugin %s failed: %v", n.Name, n.Err))
	}
	return nil
}

// coach turns cognitive transitions into hints. It is deferred and optional.
type coach struct {
	unsub events.Unsubscribe
}

func (c *coach) Name() string { return "coach" }

func (c *coach) Options() plugin.Options {
	return plugin.Options{Priority: 10}
}

func (c *coach) Init(ctx context.Context, host plugin.Host) error {
	c.unsub = host.Subscribe(domain.EventCognitiveChanged, func(ctx context.Context, evt domain.Event) error {
		tr, ok := evt.Payload.(domain.CognitiveTransition)
		if !ok {
			return nil
		}
		if hint, ok := hints[tr.To]; ok {
			host.Emit(ctx, EventCoachHint, hint)
		}
		return nil
	})
	return nil
}

func (c *coach) Destroy(ctx context.Context) error {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	return nil
}

// CoachReducer counts the hints that reached the store.
func CoachReducer(state any, action domain.Action) any {
	n, _ := state.(int)
	if action.Type == ActionCoachHint {
		return n + 1
	}
	return n
}
