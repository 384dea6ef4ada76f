package cli

import (
	"io"
	"os"
	"time"

	"github.com/aretw0/synapse/internal/scenario"
)

// RunOptions contains the configuration shared by the simulate and serve commands.
type RunOptions struct {
	ConfigPath   string
	Scenario     string // built-in name
	ScenarioFile string // YAML file, overrides Scenario
	Pace         time.Duration
	JSON         bool // NDJSON events instead of coloured text
	Report       bool
	NoBanner     bool
	Debug        bool
	Out          io.Writer
}

func (o RunOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o RunOptions) quiet() bool {
	return o.JSON
}

// loadScenario resolves the scenario to play.
func (o RunOptions) loadScenario() (scenario.Scenario, error) {
	if o.ScenarioFile != "" {
		return scenario.Load(o.ScenarioFile)
	}
	name := o.Scenario
	if name == "" {
		name = "recovery"
	}
	return scenario.Lookup(name)
}
