package ports

import "context"

// Emitter raises named events.
// Implementations deliver synchronously and report whether delivery happened.
type Emitter interface {
	Emit(ctx context.Context, name string, payload any) bool
}

// NopEmitter discards every event.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(context.Context, string, any) bool { return false }
