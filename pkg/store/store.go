package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/domain"
)

// Listener observes the state after each dispatch. ctx is the dispatch
// context, so emissions made from a listener stay on the dispatching chain.
type Listener func(ctx context.Context, state State, action domain.Action)

// Unsubscribe removes a listener. Calling it more than once is harmless.
type Unsubscribe func()

// Store holds the state tree.
// Safe for concurrent use. Reducers run under the store lock and must not dispatch.
type Store struct {
	reducer    RootReducer
	middleware []Middleware
	logger     *slog.Logger

	mu    sync.RWMutex
	state State

	reduceMu sync.Mutex

	listenMu  sync.RWMutex
	listeners []listenerEntry
	nextID    uint64

	actMu      sync.Mutex
	actions    []domain.Action
	actionsCap int

	dispatch DispatchFunc
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithActionHistory keeps the last n dispatched actions. Zero disables it.
func WithActionHistory(n int) Option {
	return func(s *Store) {
		s.actionsCap = n
	}
}

// New builds a store and runs the init action so every slice has its initial value.
func New(reducer RootReducer, opts ...Option) (*Store, error) {
	s := &Store{
		reducer: reducer,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := reducer(nil, domain.Action{Type: domain.ActionInit})
	if err != nil {
		return nil, fmt.Errorf("failed to build initial state: %w", err)
	}
	s.state = initial

	wrappers := make([]func(DispatchFunc) DispatchFunc, len(s.middleware))
	for i, mw := range s.middleware {
		wrappers[i] = mw(s)
	}
	s.dispatch = Compose(wrappers...)(s.reduce)
	return s, nil
}

// GetState returns the current tree. Callers must not mutate it.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Select returns one slice of the tree.
func (s *Store) Select(key string) any {
	return s.GetState()[key]
}

// Dispatch sends an action through middleware, reducers and listeners.
func (s *Store) Dispatch(ctx context.Context, action domain.Action) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if action.Type == "" {
		return fmt.Errorf("action type is required")
	}
	return s.dispatch(ctx, action)
}

// reduce is the innermost step of the chain.
func (s *Store) reduce(ctx context.Context, action domain.Action) error {
	s.reduceMu.Lock()
	prev := s.GetState()
	next, err := s.reducer(prev, action)
	if err != nil {
		s.reduceMu.Unlock()
		return err
	}
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.reduceMu.Unlock()

	s.remember(action)
	s.notify(ctx, next, action)
	return nil
}

func (s *Store) remember(action domain.Action) {
	if s.actionsCap <= 0 {
		return
	}
	s.actMu.Lock()
	defer s.actMu.Unlock()
	if len(s.actions) >= s.actionsCap {
		s.actions = append(s.actions[:0], s.actions[1:]...)
	}
	s.actions = append(s.actions, action)
}

// Actions returns the retained action history, oldest first.
func (s *Store) Actions() []domain.Action {
	s.actMu.Lock()
	defer s.actMu.Unlock()
	return append([]domain.Action(nil), s.actions...)
}

// Subscribe registers a listener called once after every dispatch.
func (s *Store) Subscribe(fn Listener) Unsubscribe {
	s.listenMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.listenMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenMu.Lock()
			defer s.listenMu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(ctx context.Context, state State, action domain.Action) {
	s.listenMu.RLock()
	listeners := append([]listenerEntry(nil), s.listeners...)
	s.listenMu.RUnlock()

	for _, l := range listeners {
		l.fn(ctx, state, action)
	}
}
