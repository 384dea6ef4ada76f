package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/synapse"
	"github.com/aretw0/synapse/pkg/config"
	"github.com/aretw0/synapse/pkg/intent"
	"github.com/aretw0/synapse/pkg/observability"
)

// createRuntime builds a runtime with the bundled console and coach plugins registered.
func createRuntime(cfg config.Config, logger *slog.Logger, out io.Writer, jsonMode bool, metrics *observability.Metrics) (*synapse.Runtime, error) {
	opts := []synapse.Option{
		synapse.WithLogger(logger),
		synapse.WithReducer(CoachSlice, CoachReducer),
		synapse.WithIntent(EventCoachHint, intent.Action("hint", ActionCoachHint)),
	}
	if metrics != nil {
		opts = append(opts, synapse.WithMetrics(metrics))
	}

	rt, err := synapse.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing runtime: %w", err)
	}
	if err := rt.Register(newConsole(out, jsonMode)); err != nil {
		return nil, err
	}
	if err := rt.Register(&coach{}); err != nil {
		return nil, err
	}
	return rt, nil
}
