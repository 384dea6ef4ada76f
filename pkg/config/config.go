package config

import (
	"log/slog"
	"time"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/cognitive"
	"github.com/aretw0/synapse/pkg/domain"
	"github.com/aretw0/synapse/pkg/events"
	"github.com/aretw0/synapse/pkg/plugin"
)

// Config is the full runtime configuration.
type Config struct {
	Log         Log         `json:"log" yaml:"log" mapstructure:"log"`
	Events      Events      `json:"events" yaml:"events" mapstructure:"events"`
	Plugins     Plugins     `json:"plugins" yaml:"plugins" mapstructure:"plugins"`
	Store       Store       `json:"store" yaml:"store" mapstructure:"store"`
	Cognitive   Cognitive   `json:"cognitive" yaml:"cognitive" mapstructure:"cognitive"`
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics" mapstructure:"diagnostics"`
}

// Log selects the logger.
type Log struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // text or json
}

// Events configures the event bus and its circuit breaker.
type Events struct {
	CircuitBreaker bool `json:"circuit_breaker" yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	MaxCallDepth   int  `json:"max_call_depth" yaml:"max_call_depth" mapstructure:"max_call_depth"`
	MaxChainLength int  `json:"max_chain_length" yaml:"max_chain_length" mapstructure:"max_chain_length"`
	MaxInFlight    int  `json:"max_in_flight" yaml:"max_in_flight" mapstructure:"max_in_flight"` // 0 disables
	HistorySize    int  `json:"history_size" yaml:"history_size" mapstructure:"history_size"`
}

// Plugins configures the lifecycle orchestrator.
type Plugins struct {
	CriticalPriority int           `json:"critical_priority" yaml:"critical_priority" mapstructure:"critical_priority"`
	DefaultPriority  int           `json:"default_priority" yaml:"default_priority" mapstructure:"default_priority"`
	InitTimeout      time.Duration `json:"init_timeout" yaml:"init_timeout" mapstructure:"init_timeout"`
}

// Store configures the action store.
type Store struct {
	ActionHistory int `json:"action_history" yaml:"action_history" mapstructure:"action_history"`
}

// Cognitive configures the detector and the session history.
type Cognitive struct {
	HistoryCapacity  int        `json:"history_capacity" yaml:"history_capacity" mapstructure:"history_capacity"`
	DebounceTicks    int        `json:"debounce_ticks" yaml:"debounce_ticks" mapstructure:"debounce_ticks"`
	TickEvery        int        `json:"tick_every" yaml:"tick_every" mapstructure:"tick_every"`
	RecoveryCooldown int        `json:"recovery_cooldown" yaml:"recovery_cooldown" mapstructure:"recovery_cooldown"`
	Thresholds       Thresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
}

// Thresholds groups the per-state analyzer settings.
type Thresholds struct {
	Frustrated   Frustrated   `json:"frustrated" yaml:"frustrated" mapstructure:"frustrated"`
	Concentrated Concentrated `json:"concentrated" yaml:"concentrated" mapstructure:"concentrated"`
	Exploring    Exploring    `json:"exploring" yaml:"exploring" mapstructure:"exploring"`
	Learning     Learning     `json:"learning" yaml:"learning" mapstructure:"learning"`
}

// Frustrated tunes detection of error bursts over the last Window actions.
type Frustrated struct {
	Window      int           `json:"window" yaml:"window" mapstructure:"window"`
	ErrorRate   float64       `json:"error_rate" yaml:"error_rate" mapstructure:"error_rate"`
	ClusterSize int           `json:"cluster_size" yaml:"cluster_size" mapstructure:"cluster_size"`
	ClusterSpan time.Duration `json:"cluster_span" yaml:"cluster_span" mapstructure:"cluster_span"`
}

// Concentrated tunes detection of fast, steady, mostly successful work.
type Concentrated struct {
	Window         int           `json:"window" yaml:"window" mapstructure:"window"`
	MaxAvgDuration time.Duration `json:"max_avg_duration" yaml:"max_avg_duration" mapstructure:"max_avg_duration"`
	MinSuccessRate float64       `json:"min_success_rate" yaml:"min_success_rate" mapstructure:"min_success_rate"`
	MaxVariation   float64       `json:"max_variation" yaml:"max_variation" mapstructure:"max_variation"`
}

// Exploring tunes detection of varied actions broken up by pauses.
type Exploring struct {
	Window     int           `json:"window" yaml:"window" mapstructure:"window"`
	MinVariety float64       `json:"min_variety" yaml:"min_variety" mapstructure:"min_variety"`
	MinPauses  int           `json:"min_pauses" yaml:"min_pauses" mapstructure:"min_pauses"`
	Pause      time.Duration `json:"pause" yaml:"pause" mapstructure:"pause"`
}

// Learning tunes detection of a rising success rate across the window.
type Learning struct {
	Window   int     `json:"window" yaml:"window" mapstructure:"window"`
	MinDelta float64 `json:"min_delta" yaml:"min_delta" mapstructure:"min_delta"`
}

// Diagnostics configures the optional HTTP diagnostics listener.
type Diagnostics struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Default returns the stock configuration.
func Default() Config {
	t := cognitive.DefaultThresholds()
	return Config{
		Log: Log{Level: "info", Format: "text"},
		Events: Events{
			CircuitBreaker: true,
			MaxCallDepth:   domain.DefaultMaxCallDepth,
			MaxChainLength: domain.DefaultMaxChainLength,
			MaxInFlight:    domain.DefaultMaxInFlight,
			HistorySize:    domain.DefaultEventHistorySize,
		},
		Plugins: Plugins{
			CriticalPriority: domain.DefaultCriticalPriority,
			DefaultPriority:  domain.DefaultPluginPriority,
			InitTimeout:      domain.DefaultInitTimeout,
		},
		Store: Store{ActionHistory: domain.DefaultActionHistorySize},
		Cognitive: Cognitive{
			HistoryCapacity:  domain.DefaultHistoryCapacity,
			DebounceTicks:    domain.DefaultDebounceTicks,
			TickEvery:        domain.DefaultAnalysisTickEvery,
			RecoveryCooldown: domain.DefaultRecoveryCooldown,
			Thresholds: Thresholds{
				Frustrated: Frustrated{
					Window:      t.FrustratedWindow,
					ErrorRate:   t.FrustratedErrorRate,
					ClusterSize: t.FrustratedClusterSize,
					ClusterSpan: t.FrustratedClusterSpan,
				},
				Concentrated: Concentrated{
					Window:         t.ConcentratedWindow,
					MaxAvgDuration: t.ConcentratedMaxAvgDuration,
					MinSuccessRate: t.ConcentratedMinSuccessRate,
					MaxVariation:   t.ConcentratedMaxVariation,
				},
				Exploring: Exploring{
					Window:     t.ExploringWindow,
					MinVariety: t.ExploringMinVariety,
					MinPauses:  t.ExploringMinPauses,
					Pause:      t.ExploringPause,
				},
				Learning: Learning{
					Window:   t.LearningWindow,
					MinDelta: t.LearningMinDelta,
				},
			},
		},
		Diagnostics: Diagnostics{Addr: "127.0.0.1:9464"},
	}
}

// Breaker converts the events section.
func (c Config) Breaker() events.Breaker {
	return events.Breaker{
		Enabled:        c.Events.CircuitBreaker,
		MaxCallDepth:   c.Events.MaxCallDepth,
		MaxChainLength: c.Events.MaxChainLength,
		MaxInFlight:    c.Events.MaxInFlight,
	}
}

// PluginDefaults converts the plugins section into registration defaults.
func (c Config) PluginDefaults() plugin.Options {
	return plugin.Options{
		Priority:    c.Plugins.DefaultPriority,
		InitTimeout: c.Plugins.InitTimeout,
	}
}

// Detector converts the cognitive section.
// A zero recovery cooldown disables the frustrated -> exploring suppression.
func (c Config) Detector() cognitive.Config {
	th := c.Cognitive.Thresholds
	cfg := cognitive.Config{
		Thresholds: cognitive.Thresholds{
			FrustratedWindow:      th.Frustrated.Window,
			FrustratedErrorRate:   th.Frustrated.ErrorRate,
			FrustratedClusterSize: th.Frustrated.ClusterSize,
			FrustratedClusterSpan: th.Frustrated.ClusterSpan,

			ConcentratedWindow:         th.Concentrated.Window,
			ConcentratedMaxAvgDuration: th.Concentrated.MaxAvgDuration,
			ConcentratedMinSuccessRate: th.Concentrated.MinSuccessRate,
			ConcentratedMaxVariation:   th.Concentrated.MaxVariation,

			ExploringWindow:     th.Exploring.Window,
			ExploringMinVariety: th.Exploring.MinVariety,
			ExploringMinPauses:  th.Exploring.MinPauses,
			ExploringPause:      th.Exploring.Pause,

			LearningWindow:   th.Learning.Window,
			LearningMinDelta: th.Learning.MinDelta,
		},
		DebounceTicks:   c.Cognitive.DebounceTicks,
		TickEvery:       c.Cognitive.TickEvery,
		HistoryCapacity: c.Cognitive.HistoryCapacity,
	}
	if c.Cognitive.RecoveryCooldown > 0 {
		cd := cognitive.RecoveryCooldown()
		cd.Actions = c.Cognitive.RecoveryCooldown
		cfg.Cooldowns = []cognitive.Cooldown{cd}
	}
	return cfg
}

// Logger builds the logger described by the log section.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if c.Log.Format == "json" {
		return logging.NewJSON(level), nil
	}
	return logging.New(level), nil
}
