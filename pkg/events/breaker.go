package events

import (
	"context"

	"github.com/aretw0/synapse/pkg/domain"
)

// Breaker bounds re-entrant emission.
type Breaker struct {
	Enabled bool
	// MaxCallDepth caps the chain length for any emission, distinct names included.
	MaxCallDepth int
	// MaxChainLength caps the chain length once a name recurs inside it.
	MaxChainLength int
	// MaxInFlight caps deliveries running at once on the bus, across every
	// chain. It catches re-entry that dropped its context. Zero disables it.
	MaxInFlight int
}

// DefaultBreaker returns the breaker used when none is configured.
func DefaultBreaker() Breaker {
	return Breaker{
		Enabled:        true,
		MaxCallDepth:   domain.DefaultMaxCallDepth,
		MaxChainLength: domain.DefaultMaxChainLength,
		MaxInFlight:    domain.DefaultMaxInFlight,
	}
}

const (
	reasonDepth    = "max call depth exceeded"
	reasonCycle    = "cyclic emission"
	reasonInFlight = "max in-flight deliveries exceeded"
)

// check reports why emitting name on top of chain must be refused.
func (b Breaker) check(chain []string, name string) (string, bool) {
	if !b.Enabled {
		return "", false
	}
	depth := len(chain)
	if b.MaxCallDepth > 0 && depth >= b.MaxCallDepth {
		return reasonDepth, true
	}
	if b.MaxChainLength > 0 && depth >= b.MaxChainLength && occurrences(chain, name) > 0 {
		return reasonCycle, true
	}
	return "", false
}

// saturated reports whether inflight deliveries leave no room for another.
func (b Breaker) saturated(inflight int64) bool {
	return b.Enabled && b.MaxInFlight > 0 && inflight >= int64(b.MaxInFlight)
}

func occurrences(chain []string, name string) int {
	n := 0
	for _, c := range chain {
		if c == name {
			n++
		}
	}
	return n
}

type chainKey struct{}

// Chain returns the names currently being dispatched in ctx, outermost first.
func Chain(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	chain, _ := ctx.Value(chainKey{}).([]string)
	return chain
}

// withLink returns a context whose chain is the current chain plus name.
// The slice is copied so sibling emissions never share a backing array.
func withLink(ctx context.Context, chain []string, name string) context.Context {
	next := make([]string, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = name
	return context.WithValue(ctx, chainKey{}, next)
}
