package ports

import (
	"context"

	"github.com/aretw0/synapse/pkg/domain"
)

// Dispatcher sends actions through the store pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, action domain.Action) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, action domain.Action) error

// Dispatch implements Dispatcher.
func (f DispatchFunc) Dispatch(ctx context.Context, action domain.Action) error {
	return f(ctx, action)
}
