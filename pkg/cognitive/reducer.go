package cognitive

import (
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/store"
)

// SliceKey is the state tree key owned by Reducer.
const SliceKey = "cognitive"

// Snapshot is the cognitive slice of the state tree.
type Snapshot struct {
	State       domain.CognitiveState `json:"state"`
	Previous    domain.CognitiveState `json:"previous,omitempty"`
	Confidence  float64               `json:"confidence"`
	Since       time.Time             `json:"since,omitempty"`
	Transitions int                   `json:"transitions"`
}

// Reducer owns the cognitive slice; it reacts only to cognitive/STATE_CHANGE.
func Reducer() store.Reducer {
	return func(state any, action domain.Action) any {
		snap, _ := state.(*Snapshot)
		if snap == nil {
			snap = &Snapshot{State: domain.CognitiveNeutral}
		}
		if action.Type != domain.ActionCognitiveChange {
			return snap
		}
		tr, ok := action.Payload.(domain.CognitiveTransition)
		if !ok {
			return snap
		}
		return &Snapshot{
			State:       tr.To,
			Previous:    tr.From,
			Confidence:  tr.Confidence,
			Since:       tr.At,
			Transitions: snap.Transitions + 1,
		}
	}
}
