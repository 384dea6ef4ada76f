package cognitive

import (
	"time"

	"github.com/aretw0/synapse/pkg/domain"
)

// Thresholds holds the qualifying conditions of every analyzer.
type Thresholds struct {
	FrustratedWindow      int
	FrustratedErrorRate   float64
	FrustratedClusterSize int
	FrustratedClusterSpan time.Duration

	ConcentratedWindow         int
	ConcentratedMaxAvgDuration time.Duration
	ConcentratedMinSuccessRate float64
	ConcentratedMaxVariation   float64 // coefficient of variation of durations

	ExploringWindow     int
	ExploringMinVariety float64
	ExploringMinPauses  int
	ExploringPause      time.Duration

	LearningWindow   int
	LearningMinDelta float64
}

// DefaultThresholds returns the stock analyzer settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FrustratedWindow:      10,
		FrustratedErrorRate:   0.40,
		FrustratedClusterSize: 3,
		FrustratedClusterSpan: 5 * time.Second,

		ConcentratedWindow:         15,
		ConcentratedMaxAvgDuration: 400 * time.Millisecond,
		ConcentratedMinSuccessRate: 0.90,
		ConcentratedMaxVariation:   0.35,

		ExploringWindow:     20,
		ExploringMinVariety: 0.60,
		ExploringMinPauses:  3,
		ExploringPause:      time.Second,

		LearningWindow:   20,
		LearningMinDelta: 0.15,
	}
}

// Cooldown blocks transitions into Block for Actions recorded actions after leaving After.
type Cooldown struct {
	After   domain.CognitiveState
	Block   domain.CognitiveState
	Actions int
}

// RecoveryCooldown is the default frustrated -> exploring suppression.
func RecoveryCooldown() Cooldown {
	return Cooldown{
		After:   domain.CognitiveFrustrated,
		Block:   domain.CognitiveExploring,
		Actions: domain.DefaultRecoveryCooldown,
	}
}

// Config configures a Detector.
type Config struct {
	Thresholds      Thresholds
	DebounceTicks   int
	TickEvery       int // analysis cycle every N recorded actions (middleware mode)
	HistoryCapacity int
	Cooldowns       []Cooldown
}

// DefaultConfig returns the stock detector configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds:      DefaultThresholds(),
		DebounceTicks:   domain.DefaultDebounceTicks,
		TickEvery:       domain.DefaultAnalysisTickEvery,
		HistoryCapacity: domain.DefaultHistoryCapacity,
		Cooldowns:       []Cooldown{RecoveryCooldown()},
	}
}
