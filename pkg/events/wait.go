package events

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
)

// WaitFor blocks until an event matching name is emitted, the timeout
// elapses, ctx is done, or the bus is closed. A non-positive timeout waits
// without a deadline.
func (b *Bus) WaitFor(ctx context.Context, name string, timeout time.Duration) (domain.Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	got := make(chan domain.Event, 1)
	unsubscribe := b.Subscribe(name, func(_ context.Context, evt domain.Event) error {
		got <- evt
		return nil
	}, Once())
	defer unsubscribe()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case evt := <-got:
		return evt, nil
	case <-deadline:
		return domain.Event{}, fmt.Errorf("%s after %s: %w", name, timeout, domain.ErrWaitTimeout)
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	case <-b.closed:
		return domain.Event{}, domain.ErrBusClosed
	}
}
