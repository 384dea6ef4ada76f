package store

import (
	"context"
	"log/slog"

	"github.com/aretw0/synapse/pkg/domain"
)

// DispatchFunc moves an action one step along the pipeline.
type DispatchFunc func(ctx context.Context, action domain.Action) error

// MiddlewareAPI is what a middleware sees of the store.
// Dispatch re-enters the full chain from the outermost middleware.
type MiddlewareAPI interface {
	GetState() State
	Dispatch(ctx context.Context, action domain.Action) error
}

// Middleware wraps dispatch: given the store API it returns a wrapper for next.
type Middleware func(api MiddlewareAPI) func(next DispatchFunc) DispatchFunc

// Compose chains wrappers right-to-left: Compose(f, g, h)(d) == f(g(h(d))).
func Compose(wrappers ...func(DispatchFunc) DispatchFunc) func(DispatchFunc) DispatchFunc {
	return func(d DispatchFunc) DispatchFunc {
		for i := len(wrappers) - 1; i >= 0; i-- {
			d = wrappers[i](d)
		}
		return d
	}
}

// ApplyMiddleware installs middlewares; the first one listed runs first.
func ApplyMiddleware(mws ...Middleware) Option {
	return func(s *Store) {
		s.middleware = append(s.middleware, mws...)
	}
}

// Logger returns a middleware that logs every action through logger.
func Logger(logger *slog.Logger) Middleware {
	return func(MiddlewareAPI) func(DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action domain.Action) error {
				err := next(ctx, action)
				if err != nil {
					logger.WarnContext(ctx, "action failed", "type", action.Type, "err", err)
				} else {
					logger.DebugContext(ctx, "action dispatched", "type", action.Type)
				}
				return err
			}
		}
	}
}

// Filter returns a middleware that drops actions for which keep returns false.
func Filter(keep func(domain.Action) bool) Middleware {
	return func(MiddlewareAPI) func(DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action domain.Action) error {
				if !keep(action) {
					return nil
				}
				return next(ctx, action)
			}
		}
	}
}
