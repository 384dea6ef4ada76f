package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/synapse/internal/logging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads a YAML or JSON file on top of Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes data ("yaml" or "json") on top of Default and validates the result.
func Parse(data []byte, format string) (Config, error) {
	raw := map[string]any{}
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse json config: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	_, err := logging.ParseLevel(c.Log.Level)
	check(err == nil, "log.level: %v", err)
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format must be text or json, got %q", c.Log.Format)

	check(c.Events.MaxCallDepth > 0, "events.max_call_depth must be positive")
	check(c.Events.MaxChainLength > 0, "events.max_chain_length must be positive")
	check(c.Events.MaxInFlight == 0 || c.Events.MaxInFlight >= c.Events.MaxCallDepth,
		"events.max_in_flight (%d) must be 0 or at least max_call_depth (%d)", c.Events.MaxInFlight, c.Events.MaxCallDepth)
	check(c.Events.HistorySize >= 0, "events.history_size must not be negative")

	check(c.Plugins.InitTimeout > 0, "plugins.init_timeout must be positive")
	check(c.Plugins.DefaultPriority < c.Plugins.CriticalPriority,
		"plugins.default_priority (%d) must be below critical_priority (%d)", c.Plugins.DefaultPriority, c.Plugins.CriticalPriority)

	check(c.Store.ActionHistory >= 0, "store.action_history must not be negative")

	cg := c.Cognitive
	check(cg.DebounceTicks >= 1, "cognitive.debounce_ticks must be at least 1")
	check(cg.TickEvery >= 1, "cognitive.tick_every must be at least 1")
	check(cg.RecoveryCooldown >= 0, "cognitive.recovery_cooldown must not be negative")

	th := cg.Thresholds
	windows := map[string]int{
		"frustrated":   th.Frustrated.Window,
		"concentrated": th.Concentrated.Window,
		"exploring":    th.Exploring.Window,
		"learning":     th.Learning.Window,
	}
	for _, name := range []string{"frustrated", "concentrated", "exploring", "learning"} {
		w := windows[name]
		check(w > 0, "cognitive.thresholds.%s.window must be positive", name)
		check(w <= cg.HistoryCapacity, "cognitive.thresholds.%s.window (%d) exceeds history_capacity (%d)", name, w, cg.HistoryCapacity)
	}
	for name, rate := range map[string]float64{
		"frustrated.error_rate":         th.Frustrated.ErrorRate,
		"concentrated.min_success_rate": th.Concentrated.MinSuccessRate,
		"exploring.min_variety":         th.Exploring.MinVariety,
	} {
		check(rate >= 0 && rate <= 1, "cognitive.thresholds.%s must be within [0,1], got %v", name, rate)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
