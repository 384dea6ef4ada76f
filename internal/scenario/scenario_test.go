package scenario_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/synapse"
	"github.com/aretw0/synapse/internal/scenario"
	"github.com/aretw0/synapse/pkg/config"
	"github.com/aretw0/synapse/pkg/domain"
)

func TestBuiltins_ReachExpectedState(t *testing.T) {
	for _, name := range scenario.Names() {
		t.Run(name, func(t *testing.T) {
			s, err := scenario.Lookup(name)
			require.NoError(t, err)
			require.NoError(t, s.Validate())

			rt, err := synapse.New(config.Default())
			require.NoError(t, err)
			t.Cleanup(func() { _ = rt.Close(context.Background()) })

			require.NoError(t, scenario.Play(context.Background(), rt, s))
			assert.Equal(t, s.Expect, rt.Cognitive().State)
			assert.Equal(t, s.Len(), rt.History().Len())
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := scenario.Lookup("panic")
	require.ErrorIs(t, err, scenario.ErrUnknownScenario)
	assert.Contains(t, err.Error(), "burst")
}

func TestRecords_Expansion(t *testing.T) {
	s := scenario.Scenario{
		Name: "mixed",
		Steps: []scenario.Step{
			{Types: []string{"a", "b"}, Outcomes: "SF", Duration: time.Second, Gap: 2 * time.Second, Repeat: 3},
			{Type: "c", Success: true},
		},
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	recs := s.Records(start)
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"a", "b", "a", "c"}, []string{recs[0].Type, recs[1].Type, recs[2].Type, recs[3].Type})
	assert.Equal(t, []bool{true, false, true, true}, []bool{recs[0].Success, recs[1].Success, recs[2].Success, recs[3].Success})
	assert.Equal(t, start.Add(2*time.Second), recs[0].Timestamp)
	assert.Equal(t, start.Add(6*time.Second), recs[2].Timestamp)
	assert.Equal(t, recs[2].Timestamp, recs[3].Timestamp)
}

func TestParse(t *testing.T) {
	s, err := scenario.Parse([]byte(`
name: slow-start
expect: frustrated
steps:
  - type: build
    duration: 250ms
    gap: 1s
    repeat: 4
  - types: [lint, test]
    outcomes: SSF
`))
	require.NoError(t, err)
	assert.Equal(t, "slow-start", s.Name)
	assert.Equal(t, domain.CognitiveFrustrated, s.Expect)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, 250*time.Millisecond, s.Steps[0].Duration)
	assert.Equal(t, time.Second, s.Steps[0].Gap)
	assert.Equal(t, 5, s.Len())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "steps: [{type: a}]", "no name"},
		{"no steps", "name: x", "no steps"},
		{"no type", "name: x\nsteps: [{success: true}]", "missing type"},
		{"bad outcomes", "name: x\nsteps: [{type: a, outcomes: SXF}]", "S and F"},
		{"bad state", "name: x\nexpect: sleepy\nsteps: [{type: a}]", "sleepy"},
		{"bad yaml", "name: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type recorderFunc func(ctx context.Context, rec domain.ActionRecord) error

func (f recorderFunc) RecordInteraction(ctx context.Context, rec domain.ActionRecord) error {
	return f(ctx, rec)
}

func TestPlay_StopsOnError(t *testing.T) {
	s, err := scenario.Lookup("burst")
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	err = scenario.Play(context.Background(), recorderFunc(func(context.Context, domain.ActionRecord) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	}), s)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "record 3")
	assert.Equal(t, 3, calls)
}

func TestPlay_PaceHonoursCancel(t *testing.T) {
	s, err := scenario.Lookup("focus")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var steps []int
	err = scenario.Play(ctx, recorderFunc(func(context.Context, domain.ActionRecord) error { return nil }), s,
		scenario.WithPace(time.Hour),
		scenario.OnStep(func(i int, _ domain.ActionRecord) {
			steps = append(steps, i)
			cancel()
		}),
	)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{0}, steps)
}
