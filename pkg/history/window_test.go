package history_test

import (
	"math"
	"testing"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/history"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func at(offset time.Duration, typ string, ok bool, dur time.Duration) domain.ActionRecord {
	return domain.ActionRecord{Timestamp: base.Add(offset), Type: typ, Success: ok, Duration: dur}
}

func TestWindow_Empty(t *testing.T) {
	var w history.Window
	assert.Zero(t, w.ErrorRate())
	assert.Zero(t, w.SuccessRate())
	assert.Zero(t, w.AvgDuration())
	assert.Zero(t, w.DurationCV())
	assert.Zero(t, w.TypeVariety())
	assert.Zero(t, w.ErrorCluster(5*time.Second))
	assert.Zero(t, w.Pauses(time.Second))
	assert.Zero(t, w.SuccessDelta())
}

func TestWindow_Rates(t *testing.T) {
	w := history.Window{
		at(0, "a", true, 100*time.Millisecond),
		at(time.Second, "b", false, 300*time.Millisecond),
		at(2*time.Second, "a", false, 200*time.Millisecond),
		at(3*time.Second, "c", true, 200*time.Millisecond),
	}

	assert.InDelta(t, 0.5, w.ErrorRate(), 1e-9)
	assert.InDelta(t, 0.5, w.SuccessRate(), 1e-9)
	assert.Equal(t, 200*time.Millisecond, w.AvgDuration())
	assert.InDelta(t, 0.75, w.TypeVariety(), 1e-9)
}

func TestWindow_DurationCV(t *testing.T) {
	steady := history.Window{
		at(0, "a", true, 200*time.Millisecond),
		at(0, "a", true, 200*time.Millisecond),
	}
	assert.Zero(t, steady.DurationCV())

	jittery := history.Window{
		at(0, "a", true, 100*time.Millisecond),
		at(0, "a", true, 300*time.Millisecond),
	}
	assert.InDelta(t, 0.5, jittery.DurationCV(), 1e-9)

	instant := history.Window{at(0, "a", true, 0)}
	assert.True(t, math.IsInf(instant.DurationCV(), 1))
}

func TestWindow_ErrorCluster(t *testing.T) {
	w := history.Window{
		at(0, "a", false, 0),
		at(10*time.Second, "a", false, 0),
		at(11*time.Second, "a", true, 0),
		at(12*time.Second, "a", false, 0),
		at(14*time.Second, "a", false, 0),
		at(30*time.Second, "a", false, 0),
	}
	assert.Equal(t, 3, w.ErrorCluster(5*time.Second))
	assert.Equal(t, 1, w.ErrorCluster(time.Second))
}

func TestWindow_Pauses(t *testing.T) {
	w := history.Window{
		at(0, "a", true, 0),
		at(500*time.Millisecond, "a", true, 0),
		at(2*time.Second, "a", true, 0),
		at(2100*time.Millisecond, "a", true, 0),
		at(4*time.Second, "a", true, 0),
	}
	assert.Equal(t, 2, w.Pauses(time.Second))
}

func TestWindow_SuccessDelta(t *testing.T) {
	w := history.Window{
		at(0, "a", false, 0),
		at(0, "a", false, 0),
		at(0, "a", true, 0),
		at(0, "a", true, 0),
	}
	assert.InDelta(t, 1.0, w.SuccessDelta(), 1e-9)
	assert.Zero(t, history.Window{at(0, "a", true, 0)}.SuccessDelta())
}
