package cognitive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/history"
	"github.com/aretw0/synapse/pkg/ports"
)

// Detector is the vote-debounced cognitive state machine.
// Safe for concurrent use.
type Detector struct {
	cfg     Config
	history *history.History
	logger  *slog.Logger
	emitter ports.Emitter
	now     func() time.Time

	mu         sync.Mutex
	current    domain.CognitiveState
	confidence float64
	since      time.Time

	// Pending transition: consecutive votes for one candidate.
	pending  domain.CognitiveState
	votes    map[domain.CognitiveState]int
	strength float64

	rules    map[domain.CognitiveState][]Cooldown // keyed by the state just departed
	blocked  map[domain.CognitiveState]int        // blocked state -> remaining actions
	observed int                                  // records since the last tick
	ticks    uint64
	last     Assessment
}

// Option configures the Detector.
type Option func(*Detector)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithEmitter raises cognitive:changed events on every committed transition.
func WithEmitter(e ports.Emitter) Option {
	return func(d *Detector) {
		d.emitter = e
	}
}

// WithHistory shares an existing history instead of allocating one.
func WithHistory(h *history.History) Option {
	return func(d *Detector) {
		d.history = h
	}
}

// WithClock overrides the time source of transitions.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// NewDetector creates a detector in the neutral state.
func NewDetector(cfg Config, opts ...Option) *Detector {
	if cfg.DebounceTicks <= 0 {
		cfg.DebounceTicks = domain.DefaultDebounceTicks
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = domain.DefaultAnalysisTickEvery
	}
	d := &Detector{
		cfg:     cfg,
		logger:  logging.NewNop(),
		emitter: ports.NopEmitter{},
		now:     time.Now,
		current: domain.CognitiveNeutral,
		votes:   make(map[domain.CognitiveState]int),
		rules:   make(map[domain.CognitiveState][]Cooldown),
		blocked: make(map[domain.CognitiveState]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = history.New(cfg.HistoryCapacity)
	}
	d.since = d.now()
	for _, c := range cfg.Cooldowns {
		if c.Actions > 0 {
			d.rules[c.After] = append(d.rules[c.After], c)
		}
	}
	return d
}

// History returns the session history the detector reads.
func (d *Detector) History() *history.History {
	return d.history
}

// Current returns the committed state and its confidence.
func (d *Detector) Current() (domain.CognitiveState, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.confidence
}

// LastAssessment returns the inputs of the most recent tick.
func (d *Detector) LastAssessment() Assessment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Blocked returns the active cooldowns (blocked state -> remaining actions).
func (d *Detector) Blocked() map[domain.CognitiveState]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[domain.CognitiveState]int, len(d.blocked))
	for k, v := range d.blocked {
		out[k] = v
	}
	return out
}

// Observe records one outcome and advances the cooldowns.
// It reports whether an analysis cycle is due.
func (d *Detector) Observe(rec domain.ActionRecord) bool {
	d.history.Record(rec)

	d.mu.Lock()
	defer d.mu.Unlock()
	for state, remaining := range d.blocked {
		if remaining <= 1 {
			delete(d.blocked, state)
			continue
		}
		d.blocked[state] = remaining - 1
	}
	d.observed++
	return d.observed >= d.cfg.TickEvery
}

// Tick runs one analysis cycle. It returns the transition when one commits.
func (d *Detector) Tick(ctx context.Context) (domain.CognitiveTransition, bool) {
	assessment := Assess(d.history, d.cfg.Thresholds)

	d.mu.Lock()
	d.ticks++
	d.observed = 0
	d.last = assessment
	candidate, strength := d.choose(assessment)
	tr, committed := d.vote(candidate, strength)
	d.mu.Unlock()

	if committed {
		d.logger.InfoContext(ctx, "cognitive state changed",
			"from", tr.From,
			"to", tr.To,
			"confidence", tr.Confidence,
		)
		d.emitter.Emit(ctx, domain.EventCognitiveChanged, tr)
	}
	return tr, committed
}

// choose picks the highest-priority qualifying state that no cooldown blocks.
func (d *Detector) choose(a Assessment) (domain.CognitiveState, float64) {
	suppressed := false
	for _, s := range a.Qualifying() {
		if _, ok := d.blocked[s.State]; ok {
			suppressed = true
			continue
		}
		return s.State, s.Strength
	}
	if suppressed {
		return domain.CognitiveNeutral, 0.5
	}
	return domain.CognitiveNeutral, 1
}

// vote applies the debounce. Callers hold d.mu.
func (d *Detector) vote(candidate domain.CognitiveState, strength float64) (domain.CognitiveTransition, bool) {
	if candidate == d.current {
		d.resetVotes()
		return domain.CognitiveTransition{}, false
	}
	if candidate != d.pending {
		d.resetVotes()
		d.pending = candidate
	}
	d.votes[candidate]++
	d.strength += strength

	if d.votes[candidate] < d.cfg.DebounceTicks {
		return domain.CognitiveTransition{}, false
	}

	tr := domain.CognitiveTransition{
		From:       d.current,
		To:         candidate,
		Confidence: clamp(d.strength/float64(d.cfg.DebounceTicks), 0, 1),
		At:         d.now(),
	}
	d.current = candidate
	d.confidence = tr.Confidence
	d.since = tr.At
	d.resetVotes()
	for _, c := range d.rules[tr.From] {
		d.blocked[c.Block] = c.Actions
	}
	return tr, true
}

func (d *Detector) resetVotes() {
	d.pending = ""
	d.strength = 0
	for k := range d.votes {
		delete(d.votes, k)
	}
}

// Reset returns to neutral and forgets votes, cooldowns and history.
func (d *Detector) Reset() {
	d.history.Clear()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = domain.CognitiveNeutral
	d.confidence = 0
	d.since = d.now()
	d.observed = 0
	d.resetVotes()
	for k := range d.blocked {
		delete(d.blocked, k)
	}
}

// Run ticks on a fixed interval until ctx is done, dispatching each committed transition.
func (d *Detector) Run(ctx context.Context, interval time.Duration, dispatcher ports.Dispatcher) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if tr, ok := d.Tick(ctx); ok {
				if err := dispatcher.Dispatch(ctx, ChangeAction(tr)); err != nil {
					d.logger.Warn("failed to dispatch cognitive transition", "err", err)
				}
			}
		}
	}
}

// ChangeAction wraps a transition into its store action.
func ChangeAction(tr domain.CognitiveTransition) domain.Action {
	return domain.Action{Type: domain.ActionCognitiveChange, Payload: tr}
}
