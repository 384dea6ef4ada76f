package cognitive

import (
	"context"
	"fmt"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/store"
)

// Middleware makes the detector resident in the store's dispatch path.
// Every interaction/RECORD action is recorded after the reducers ran; when an
// analysis cycle commits a transition, cognitive/STATE_CHANGE is dispatched
// through the full chain.
func (d *Detector) Middleware() store.Middleware {
	return func(api store.MiddlewareAPI) func(store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(ctx context.Context, action domain.Action) error {
				if err := next(ctx, action); err != nil {
					return err
				}
				if action.Type != domain.ActionRecordInteraction {
					return nil
				}
				rec, err := recordFrom(action.Payload)
				if err != nil {
					return err
				}
				if !d.Observe(rec) {
					return nil
				}
				if tr, ok := d.Tick(ctx); ok {
					return api.Dispatch(ctx, ChangeAction(tr))
				}
				return nil
			}
		}
	}
}

func recordFrom(payload any) (domain.ActionRecord, error) {
	switch rec := payload.(type) {
	case domain.ActionRecord:
		return rec, nil
	case *domain.ActionRecord:
		if rec != nil {
			return *rec, nil
		}
	}
	return domain.ActionRecord{}, fmt.Errorf("%s payload must be an ActionRecord, got %T", domain.ActionRecordInteraction, payload)
}

// RecordAction builds the interaction/RECORD action for rec.
func RecordAction(rec domain.ActionRecord) domain.Action {
	return domain.Action{Type: domain.ActionRecordInteraction, Payload: rec}
}
