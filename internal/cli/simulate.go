package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/synapse"
	"github.com/aretw0/synapse/internal/presentation/tui"
	"github.com/aretw0/synapse/internal/report"
	"github.com/aretw0/synapse/internal/scenario"
)

// RunSimulation plays one scenario through a fresh runtime and prints the outcome.
func RunSimulation(opts RunOptions) error {
	ctx, cancel := withSignals(context.Background())
	defer cancel()

	err := simulate(ctx, opts, tui.NewRenderer())
	logCompletion(opts.out(), err, opts.quiet(), signalOf(ctx))
	return handleExecutionError(err)
}

func simulate(ctx context.Context, opts RunOptions, render tui.Renderer) error {
	w := opts.out()

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg, opts.Debug)
	if err != nil {
		return err
	}
	sc, err := opts.loadScenario()
	if err != nil {
		return err
	}

	if !opts.quiet() && !opts.NoBanner {
		tui.PrintBanner(w, synapse.Version)
	}

	rt, err := createRuntime(cfg, logger, w, opts.JSON, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.Background()); cerr != nil {
			logger.Warn("shutdown reported errors", "err", cerr)
		}
	}()

	if err := rt.Init(ctx); err != nil {
		return err
	}
	if err := rt.Start(ctx); err != nil {
		return err
	}
	if err := rt.Plugins().WaitDeferred(ctx); err != nil {
		return err
	}

	if !opts.quiet() {
		printSystemMessage(w, "Playing %q: %s (%d interactions)", sc.Name, sc.Description, sc.Len())
	}
	if err := scenario.Play(ctx, rt, sc, scenario.WithPace(opts.Pace)); err != nil {
		return err
	}

	snap := rt.Cognitive()
	if opts.quiet() {
		return json.NewEncoder(w).Encode(map[string]any{
			"scenario":  sc.Name,
			"expected":  sc.Expect,
			"cognitive": snap,
			"hints":     rt.Store().Select(CoachSlice),
		})
	}

	printSystemMessage(w, "Finished in %s.", tui.State(snap.State))
	if sc.Expect != "" && sc.Expect != snap.State {
		printSystemMessage(w, "Expected %s.", tui.State(sc.Expect))
	}
	if opts.Report {
		md := report.Markdown(report.Collect(rt, fmt.Sprintf("Scenario: %s", sc.Name)))
		out, err := render(md)
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(w, out)
	}
	return nil
}
