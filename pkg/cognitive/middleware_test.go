package cognitive_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/synapse/pkg/cognitive"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCognitiveStore(t *testing.T, d *cognitive.Detector) *store.Store {
	t.Helper()
	s, err := store.New(
		store.CombineReducers(map[string]store.Reducer{cognitive.SliceKey: cognitive.Reducer()}),
		store.ApplyMiddleware(d.Middleware()),
		store.WithActionHistory(100),
	)
	require.NoError(t, err)
	return s
}

func TestMiddleware_DispatchesStateChange(t *testing.T) {
	d := cognitive.NewDetector(cognitive.DefaultConfig())
	s := newCognitiveStore(t, d)
	ctx := context.Background()

	ts := epoch
	for i := 0; i < 12; i++ {
		ts = ts.Add(400 * time.Millisecond)
		rec := domain.ActionRecord{Timestamp: ts, Type: "tap", Success: i%3 == 2, Duration: 700 * time.Millisecond}
		require.NoError(t, s.Dispatch(ctx, cognitive.RecordAction(rec)))
	}

	snap := s.Select(cognitive.SliceKey).(*cognitive.Snapshot)
	assert.Equal(t, domain.CognitiveFrustrated, snap.State)
	assert.Equal(t, domain.CognitiveNeutral, snap.Previous)
	assert.Equal(t, 1, snap.Transitions)
	assert.Greater(t, snap.Confidence, 0.0)
	assert.Equal(t, 12, d.History().Len())

	var changes int
	for _, a := range s.Actions() {
		if a.Type == domain.ActionCognitiveChange {
			changes++
		}
	}
	assert.Equal(t, 1, changes)
}

func TestMiddleware_TickEvery(t *testing.T) {
	cfg := cognitive.DefaultConfig()
	cfg.TickEvery = 4
	d := cognitive.NewDetector(cfg)
	s := newCognitiveStore(t, d)
	ctx := context.Background()

	ts := epoch
	// 12 records, one tick every 4: frustrated only qualifies from record 10, so one vote.
	for i := 0; i < 12; i++ {
		ts = ts.Add(400 * time.Millisecond)
		rec := domain.ActionRecord{Timestamp: ts, Type: "tap", Success: false, Duration: time.Second}
		require.NoError(t, s.Dispatch(ctx, cognitive.RecordAction(rec)))
	}
	assert.Equal(t, domain.CognitiveNeutral, s.Select(cognitive.SliceKey).(*cognitive.Snapshot).State)
}

func TestMiddleware_IgnoresOtherActions(t *testing.T) {
	d := cognitive.NewDetector(cognitive.DefaultConfig())
	s := newCognitiveStore(t, d)

	require.NoError(t, s.Dispatch(context.Background(), domain.Action{Type: domain.ActionNavigate, Payload: "home"}))
	assert.Zero(t, d.History().Len())
}

func TestMiddleware_RejectsBadPayload(t *testing.T) {
	d := cognitive.NewDetector(cognitive.DefaultConfig())
	s := newCognitiveStore(t, d)

	err := s.Dispatch(context.Background(), domain.Action{Type: domain.ActionRecordInteraction, Payload: "oops"})
	assert.Error(t, err)

	rec := &domain.ActionRecord{Type: "tap", Success: true}
	require.NoError(t, s.Dispatch(context.Background(), domain.Action{Type: domain.ActionRecordInteraction, Payload: rec}))
	assert.Equal(t, 1, d.History().Len())
}

func TestReducer_IgnoresMalformedChange(t *testing.T) {
	r := cognitive.Reducer()
	initial := r(nil, domain.Action{Type: domain.ActionInit})
	same := r(initial, domain.Action{Type: domain.ActionCognitiveChange, Payload: "bad"})
	assert.Same(t, initial, same)
}
