package domain

import (
	"context"
	"time"
)

// Reserved event names raised by the runtime itself.
const (
	EventSystemError      = "system:error"
	EventCircuitBreaker   = "system:circuit-breaker"
	EventSystemReady      = "system:ready"
	EventSystemStarted    = "system:started"
	EventSystemStopped    = "system:stopped"
	EventSystemDestroyed  = "system:destroyed"
	EventDeferredReady    = "system:deferred-ready"
	EventPluginReady      = "plugin:ready"
	EventPluginFailed     = "plugin:failed"
	EventInteraction      = "interaction:outcome"
	EventCognitiveChanged = "cognitive:changed"
)

// Wildcard matches every event name when used as a subscription pattern.
const Wildcard = "*"

// Event is an immutable broadcast message.
type Event struct {
	// ID is a per-bus sequence number, strictly increasing in emission order.
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Payload   any       `json:"payload,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Namespace returns the part of the name before the first ':' (or the whole name).
func (e Event) Namespace() string {
	for i := 0; i < len(e.Name); i++ {
		if e.Name[i] == ':' {
			return e.Name[:i]
		}
	}
	return e.Name
}

// EventHandler reacts to a delivered event.
// The context carries the emission chain; handlers that re-emit must pass it along.
type EventHandler func(ctx context.Context, evt Event) error

// HandlerFailure is the payload of a system:error event.
type HandlerFailure struct {
	Event   Event  `json:"event"`
	Pattern string `json:"pattern"`
	Err     error  `json:"-"`
	Message string `json:"message"`
}

// CircuitBreak is the payload of a system:circuit-breaker event.
type CircuitBreak struct {
	Event  string   `json:"event"`
	Chain  []string `json:"chain"`
	Depth  int      `json:"depth"`
	Reason string   `json:"reason"`
}

// PluginNotice is the payload of plugin:ready and plugin:failed events.
type PluginNotice struct {
	Name     string        `json:"name"`
	Priority int           `json:"priority"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}
