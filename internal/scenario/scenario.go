// Package scenario scripts interaction outcomes for driving a runtime
// without a user in front of it.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/synapse/pkg/domain"
)

// ErrUnknownScenario is returned by Lookup for names that are not built in.
var ErrUnknownScenario = errors.New("unknown scenario")

// Step expands into Repeat consecutive interaction records.
type Step struct {
	Type string `yaml:"type,omitempty"`
	// Types are cycled across repeats and override Type.
	Types   []string `yaml:"types,omitempty"`
	Success bool     `yaml:"success"`
	// Outcomes is a cycled pattern of S (success) and F (failure) that overrides Success.
	Outcomes string        `yaml:"outcomes,omitempty"`
	Duration time.Duration `yaml:"duration"`
	// Gap is the simulated time elapsed before each record.
	Gap    time.Duration `yaml:"gap"`
	Repeat int           `yaml:"repeat,omitempty"`
}

// Scenario is a named script of steps.
type Scenario struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description,omitempty"`
	Expect      domain.CognitiveState `yaml:"expect,omitempty"`
	Steps       []Step                `yaml:"steps"`
}

// Len returns the number of records the scenario produces.
func (s Scenario) Len() int {
	n := 0
	for _, st := range s.Steps {
		n += st.repeat()
	}
	return n
}

func (st Step) repeat() int {
	if st.Repeat < 1 {
		return 1
	}
	return st.Repeat
}

// Records expands the scenario into records whose timestamps start at start.
func (s Scenario) Records(start time.Time) []domain.ActionRecord {
	out := make([]domain.ActionRecord, 0, s.Len())
	at := start
	for _, st := range s.Steps {
		for i := 0; i < st.repeat(); i++ {
			at = at.Add(st.Gap)
			typ := st.Type
			if len(st.Types) > 0 {
				typ = st.Types[i%len(st.Types)]
			}
			success := st.Success
			if st.Outcomes != "" {
				success = st.Outcomes[i%len(st.Outcomes)] == 'S'
			}
			out = append(out, domain.ActionRecord{
				Timestamp: at,
				Type:      typ,
				Success:   success,
				Duration:  st.Duration,
			})
		}
	}
	return out
}

// Validate reports malformed steps.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario has no name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, st := range s.Steps {
		if st.Type == "" && len(st.Types) == 0 {
			return fmt.Errorf("scenario %q step %d: missing type", s.Name, i+1)
		}
		if strings.Trim(st.Outcomes, "SF") != "" {
			return fmt.Errorf("scenario %q step %d: outcomes may only contain S and F", s.Name, i+1)
		}
		if st.Duration < 0 || st.Gap < 0 || st.Repeat < 0 {
			return fmt.Errorf("scenario %q step %d: negative duration, gap or repeat", s.Name, i+1)
		}
	}
	if s.Expect != "" && !isState(s.Expect) {
		return fmt.Errorf("scenario %q: unknown expected state %q", s.Name, s.Expect)
	}
	return nil
}

func isState(s domain.CognitiveState) bool {
	for _, known := range domain.CognitiveStates {
		if s == known {
			return true
		}
	}
	return false
}

// Parse decodes a YAML scenario.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads a YAML scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Lookup returns a built-in scenario by name.
func Lookup(name string) (Scenario, error) {
	s, ok := builtin[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownScenario, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the built-in scenarios in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recorder receives the scripted outcomes.
type Recorder interface {
	RecordInteraction(ctx context.Context, rec domain.ActionRecord) error
}

type playConfig struct {
	pace   time.Duration
	start  time.Time
	onStep func(i int, rec domain.ActionRecord)
}

// PlayOption configures Play.
type PlayOption func(*playConfig)

// WithPace waits d of real time between records.
func WithPace(d time.Duration) PlayOption {
	return func(c *playConfig) {
		c.pace = d
	}
}

// WithStart sets the timestamp base of the generated records.
func WithStart(t time.Time) PlayOption {
	return func(c *playConfig) {
		c.start = t
	}
}

// OnStep is called after each record is accepted.
func OnStep(fn func(i int, rec domain.ActionRecord)) PlayOption {
	return func(c *playConfig) {
		c.onStep = fn
	}
}

// Play feeds the scenario to r, stopping at the first error or when ctx is done.
func Play(ctx context.Context, r Recorder, s Scenario, opts ...PlayOption) error {
	cfg := playConfig{start: time.Now()}
	for _, opt := range opts {
		opt(&cfg)
	}

	for i, rec := range s.Records(cfg.start) {
		if cfg.pace > 0 && i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.pace):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RecordInteraction(ctx, rec); err != nil {
			return fmt.Errorf("scenario %q record %d: %w", s.Name, i+1, err)
		}
		if cfg.onStep != nil {
			cfg.onStep(i, rec)
		}
	}
	return nil
}
