package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
)

// Middleware runs before delivery. Returning false cancels the event.
type Middleware func(ctx context.Context, evt domain.Event) (domain.Event, bool)

// Stats is a snapshot of bus counters.
type Stats struct {
	Emitted         uint64 `json:"emitted"`
	Delivered       uint64 `json:"delivered"`
	Cancelled       uint64 `json:"cancelled"`
	HandlerFailures uint64 `json:"handler_failures"`
	CircuitBreaks   uint64 `json:"circuit_breaks"`
	Subscribers     int    `json:"subscribers"`
	HistorySize     int    `json:"history_size"`
}

// Bus is the runtime's event channel.
// Safe for concurrent use; each emission is delivered synchronously on the caller's goroutine.
type Bus struct {
	mu         sync.RWMutex
	subs       []*subscription // copy-on-write, sorted by priority
	middleware []Middleware
	nextID     uint64

	seq     atomic.Uint64
	breaker Breaker
	logger  *slog.Logger
	now     func() time.Time

	histMu   sync.Mutex
	history  []domain.Event
	histSize int

	emitted, delivered, cancelled, failures, breaks atomic.Uint64

	inflight  atomic.Int64
	reporting atomic.Int32

	closeOnce sync.Once
	closed    chan struct{}
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithBreaker replaces the circuit breaker settings.
func WithBreaker(breaker Breaker) Option {
	return func(b *Bus) {
		b.breaker = breaker
	}
}

// WithHistorySize bounds the event history log. Zero disables it.
func WithHistorySize(n int) Option {
	return func(b *Bus) {
		b.histSize = n
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		b.now = now
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		breaker:  DefaultBreaker(),
		logger:   logging.NewNop(),
		now:      time.Now,
		histSize: domain.DefaultEventHistorySize,
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every event matching pattern.
func (b *Bus) Subscribe(pattern string, handler domain.EventHandler, opts ...SubscribeOption) Unsubscribe {
	s := &subscription{pattern: pattern, handler: handler}
	for _, opt := range opts {
		opt(s)
	}

	b.mu.Lock()
	b.nextID++
	s.id = b.nextID
	b.subs = insert(b.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(s.id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs, _ = remove(b.subs, id)
}

// Use appends a middleware. Middlewares run in installation order.
func (b *Bus) Use(mw Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := make([]Middleware, len(b.middleware), len(b.middleware)+1)
	copy(next, b.middleware)
	b.middleware = append(next, mw)
}

// Emit raises an event with no source.
func (b *Bus) Emit(ctx context.Context, name string, payload any) bool {
	return b.EmitFrom(ctx, "", name, payload)
}

// EmitFrom raises an event tagged with its source.
// It returns false when the event was cancelled by middleware, refused by the
// circuit breaker, or the bus is closed.
func (b *Bus) EmitFrom(ctx context.Context, source, name string, payload any) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.isClosed() {
		return false
	}

	chain := Chain(ctx)
	if reason, tripped := b.breaker.check(chain, name); tripped {
		b.trip(ctx, chain, name, reason)
		return false
	}
	if b.breaker.saturated(b.inflight.Load()) {
		b.trip(ctx, chain, name, reasonInFlight)
		return false
	}
	return b.deliver(ctx, chain, source, name, payload)
}

func (b *Bus) deliver(ctx context.Context, chain []string, source, name string, payload any) bool {
	b.inflight.Add(1)
	defer b.inflight.Add(-1)

	evt := domain.Event{
		ID:        b.seq.Add(1),
		Name:      name,
		Payload:   payload,
		Source:    source,
		Timestamp: b.now(),
	}

	b.mu.RLock()
	middleware := b.middleware
	subs := b.subs
	b.mu.RUnlock()

	for _, mw := range middleware {
		next, ok := mw(ctx, evt)
		if !ok {
			b.cancelled.Add(1)
			b.logger.Debug("event cancelled by middleware", "event", name, "id", evt.ID)
			return false
		}
		evt = next
	}

	b.emitted.Add(1)
	b.record(evt)

	linked := withLink(ctx, chain, evt.Name)
	for _, s := range subs {
		if !Match(s.pattern, evt.Name) || !s.claim() {
			continue
		}
		if s.once {
			b.unsubscribe(s.id)
		}
		b.delivered.Add(1)
		if err := invoke(linked, s.handler, evt); err != nil {
			b.fail(linked, s, evt, err)
		}
	}
	return true
}

// invoke runs a handler, turning panics into errors.
func invoke(ctx context.Context, h domain.EventHandler, evt domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, evt)
}

func (b *Bus) fail(ctx context.Context, s *subscription, evt domain.Event, err error) {
	b.failures.Add(1)
	b.logger.Warn("event handler failed",
		"event", evt.Name,
		"pattern", s.pattern,
		"err", err,
	)
	// A failing system:error handler is only logged.
	if evt.Name == domain.EventSystemError {
		return
	}
	b.EmitFrom(ctx, "events", domain.EventSystemError, domain.HandlerFailure{
		Event:   evt,
		Pattern: s.pattern,
		Err:     err,
		Message: err.Error(),
	})
}

func (b *Bus) trip(ctx context.Context, chain []string, name, reason string) {
	b.breaks.Add(1)
	captured := append(append([]string(nil), chain...), name)
	b.logger.Error("circuit breaker tripped",
		"event", name,
		"reason", reason,
		"depth", len(chain),
		"chain", captured,
	)
	// Never report from inside a report, whether the handler kept its context or not.
	if occurrences(chain, domain.EventCircuitBreaker) > 0 || b.reporting.Load() > 0 {
		return
	}
	b.reporting.Add(1)
	defer b.reporting.Add(-1)
	// The report starts a chain of its own so its handlers still have room to emit.
	b.deliver(ctx, nil, "events", domain.EventCircuitBreaker, domain.CircuitBreak{
		Event:  name,
		Chain:  captured,
		Depth:  len(chain),
		Reason: reason,
	})
}

func (b *Bus) record(evt domain.Event) {
	if b.histSize <= 0 {
		return
	}
	b.histMu.Lock()
	defer b.histMu.Unlock()
	if len(b.history) >= b.histSize {
		copy(b.history, b.history[1:])
		b.history = b.history[:len(b.history)-1]
	}
	b.history = append(b.history, evt)
}

// History returns logged events matching pattern ("" or "*" for all), oldest first.
// A positive limit keeps only the most recent matches.
func (b *Bus) History(pattern string, limit int) []domain.Event {
	b.histMu.Lock()
	defer b.histMu.Unlock()

	var out []domain.Event
	for _, evt := range b.history {
		if pattern == "" || Match(pattern, evt.Name) {
			out = append(out, evt)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	subs := len(b.subs)
	b.mu.RUnlock()
	b.histMu.Lock()
	hist := len(b.history)
	b.histMu.Unlock()

	return Stats{
		Emitted:         b.emitted.Load(),
		Delivered:       b.delivered.Load(),
		Cancelled:       b.cancelled.Load(),
		HandlerFailures: b.failures.Load(),
		CircuitBreaks:   b.breaks.Load(),
		Subscribers:     subs,
		HistorySize:     hist,
	}
}

// Close stops delivery and releases every pending WaitFor.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

func (b *Bus) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}
