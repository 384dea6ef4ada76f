package events

import (
	"strings"
	"sync/atomic"

	"github.com/aretw0/synapse/pkg/domain"
)

// Unsubscribe removes a subscription. Calling it more than once is harmless.
type Unsubscribe func()

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscription)

// WithPriority orders the handler; higher runs first. The default is 0.
func WithPriority(priority int) SubscribeOption {
	return func(s *subscription) {
		s.priority = priority
	}
}

// Once removes the subscription after its first delivery.
func Once() SubscribeOption {
	return func(s *subscription) {
		s.once = true
	}
}

type subscription struct {
	id       uint64
	pattern  string
	handler  domain.EventHandler
	priority int
	once     bool
	fired    atomic.Bool
}

// Match reports whether pattern selects the event name.
// Supported forms: exact name, "*", and "<namespace>:*".
func Match(pattern, name string) bool {
	switch {
	case pattern == domain.Wildcard:
		return true
	case pattern == name:
		return true
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	}
	return false
}

// claim returns false when a once-subscription has already fired.
func (s *subscription) claim() bool {
	if !s.once {
		return true
	}
	return s.fired.CompareAndSwap(false, true)
}

// insert places s after every subscription with priority >= s.priority,
// which keeps registration order among equal priorities.
func insert(subs []*subscription, s *subscription) []*subscription {
	i := len(subs)
	for i > 0 && subs[i-1].priority < s.priority {
		i--
	}
	next := make([]*subscription, 0, len(subs)+1)
	next = append(next, subs[:i]...)
	next = append(next, s)
	next = append(next, subs[i:]...)
	return next
}

func remove(subs []*subscription, id uint64) ([]*subscription, bool) {
	for i, s := range subs {
		if s.id == id {
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			return next, true
		}
	}
	return subs, false
}
