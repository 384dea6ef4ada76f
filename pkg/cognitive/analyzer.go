package cognitive

import (
	"math"
	"time"

	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/history"
)

// Signal is one analyzer's verdict.
type Signal struct {
	State     domain.CognitiveState `json:"state"`
	Qualifies bool                  `json:"qualifies"`
	// Strength in [0.5, 1] for qualifying signals, growing with the margin past the thresholds.
	Strength float64 `json:"strength"`
}

// Metrics are the rolling inputs of one analysis cycle.
type Metrics struct {
	Samples      int           `json:"samples"`
	ErrorRate    float64       `json:"error_rate"`
	ErrorCluster int           `json:"error_cluster"`
	AvgDuration  time.Duration `json:"avg_duration"`
	SuccessRate  float64       `json:"success_rate"`
	DurationCV   float64       `json:"duration_cv"`
	TypeVariety  float64       `json:"type_variety"`
	Pauses       int           `json:"pauses"`
	SuccessDelta float64       `json:"success_delta"`
}

// Assessment is the result of evaluating every analyzer once.
type Assessment struct {
	Metrics Metrics  `json:"metrics"`
	Signals []Signal `json:"signals"` // tie-break order
}

// Qualifying returns the qualifying signals in tie-break order.
func (a Assessment) Qualifying() []Signal {
	var out []Signal
	for _, s := range a.Signals {
		if s.Qualifies {
			out = append(out, s)
		}
	}
	return out
}

// Assess evaluates all analyzers against h. Each analyzer needs a full window.
func Assess(h *history.History, t Thresholds) Assessment {
	frustrated := h.Window(t.FrustratedWindow)
	concentrated := h.Window(t.ConcentratedWindow)
	exploring := h.Window(t.ExploringWindow)
	learning := h.Window(t.LearningWindow)

	m := Metrics{
		Samples:      h.Len(),
		ErrorRate:    frustrated.ErrorRate(),
		ErrorCluster: frustrated.ErrorCluster(t.FrustratedClusterSpan),
		AvgDuration:  concentrated.AvgDuration(),
		SuccessRate:  concentrated.SuccessRate(),
		DurationCV:   concentrated.DurationCV(),
		TypeVariety:  exploring.TypeVariety(),
		Pauses:       exploring.Pauses(t.ExploringPause),
		SuccessDelta: learning.SuccessDelta(),
	}

	signals := []Signal{
		frustratedSignal(m, frustrated.Len() >= t.FrustratedWindow, t),
		concentratedSignal(m, concentrated.Len() >= t.ConcentratedWindow, t),
		learningSignal(m, learning.Len() >= t.LearningWindow, t),
		exploringSignal(m, exploring.Len() >= t.ExploringWindow, t),
	}
	return Assessment{Metrics: m, Signals: signals}
}

func frustratedSignal(m Metrics, full bool, t Thresholds) Signal {
	s := Signal{State: domain.CognitiveFrustrated}
	if !full || m.ErrorRate <= t.FrustratedErrorRate || m.ErrorCluster < t.FrustratedClusterSize {
		return s
	}
	s.Qualifies = true
	s.Strength = mean(
		above(m.ErrorRate, t.FrustratedErrorRate, 1),
		above(float64(m.ErrorCluster), float64(t.FrustratedClusterSize), float64(t.FrustratedWindow)),
	)
	return s
}

func concentratedSignal(m Metrics, full bool, t Thresholds) Signal {
	s := Signal{State: domain.CognitiveConcentrated}
	if !full ||
		m.AvgDuration >= t.ConcentratedMaxAvgDuration ||
		m.SuccessRate <= t.ConcentratedMinSuccessRate ||
		m.DurationCV >= t.ConcentratedMaxVariation {
		return s
	}
	s.Qualifies = true
	s.Strength = mean(
		below(float64(m.AvgDuration), float64(t.ConcentratedMaxAvgDuration), 0),
		above(m.SuccessRate, t.ConcentratedMinSuccessRate, 1),
		below(m.DurationCV, t.ConcentratedMaxVariation, 0),
	)
	return s
}

func exploringSignal(m Metrics, full bool, t Thresholds) Signal {
	s := Signal{State: domain.CognitiveExploring}
	if !full || m.TypeVariety <= t.ExploringMinVariety || m.Pauses < t.ExploringMinPauses {
		return s
	}
	s.Qualifies = true
	s.Strength = mean(
		above(m.TypeVariety, t.ExploringMinVariety, 1),
		above(float64(m.Pauses), float64(t.ExploringMinPauses), float64(t.ExploringWindow-1)),
	)
	return s
}

func learningSignal(m Metrics, full bool, t Thresholds) Signal {
	s := Signal{State: domain.CognitiveLearning}
	if !full || m.SuccessDelta < t.LearningMinDelta {
		return s
	}
	s.Qualifies = true
	s.Strength = above(m.SuccessDelta, t.LearningMinDelta, 1)
	return s
}

// above maps value in [threshold, ceiling] onto [0.5, 1].
func above(value, threshold, ceiling float64) float64 {
	if ceiling <= threshold {
		return 1
	}
	return clamp(0.5+0.5*(value-threshold)/(ceiling-threshold), 0.5, 1)
}

// below maps value in [floor, threshold] onto [1, 0.5].
func below(value, threshold, floor float64) float64 {
	if threshold <= floor {
		return 1
	}
	return clamp(0.5+0.5*(threshold-value)/(threshold-floor), 0.5, 1)
}

func mean(xs ...float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}
