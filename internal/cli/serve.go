package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/synapse/internal/diagnostics"
	"github.com/aretw0/synapse/internal/scenario"
	"github.com/aretw0/synapse/pkg/observability"
)

const shutdownGrace = 5 * time.Second

// RunServe starts the diagnostics listener and replays the scenario until interrupted.
// An empty addr uses the configured diagnostics address.
func RunServe(opts RunOptions, addr string) error {
	w := opts.out()

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Diagnostics.Addr
	}
	logger, err := createLogger(cfg, opts.Debug)
	if err != nil {
		return err
	}
	sc, err := opts.loadScenario()
	if err != nil {
		return err
	}
	if opts.Pace <= 0 {
		opts.Pace = 500 * time.Millisecond
	}

	metrics := observability.New(observability.WithProcessCollectors())
	rt, err := createRuntime(cfg, logger, w, opts.JSON, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.Background()); cerr != nil {
			logger.Warn("shutdown reported errors", "err", cerr)
		}
	}()

	sigCtx, stop := withSignals(context.Background())
	defer stop()

	if err := rt.Init(sigCtx); err != nil {
		return err
	}
	if err := rt.Start(sigCtx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: addr,
		Handler: diagnostics.NewHandler(rt,
			diagnostics.WithMetrics(metrics.Handler()),
			diagnostics.WithLogger(logger),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		if !opts.quiet() {
			printSystemMessage(w, "Diagnostics on http://%s (healthz, state, plugins, events, metrics)", addr)
		}
		serverErrors <- srv.ListenAndServe()
	}()

	loopErr := make(chan error, 1)
	go func() {
		for round := 1; ; round++ {
			if !opts.quiet() {
				printSystemMessage(w, "Round %d: %s", round, sc.Name)
			}
			if err := scenario.Play(sigCtx, rt, sc, scenario.WithPace(opts.Pace)); err != nil {
				loopErr <- err
				return
			}
		}
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		stop()
		runErr = fmt.Errorf("server error: %w", err)
	case err := <-loopErr:
		runErr = err
	}

	// Give outstanding requests a deadline for completion.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown did not complete", "grace", shutdownGrace, "err", err)
		_ = srv.Close()
	}

	logCompletion(w, runErr, opts.quiet(), signalOf(sigCtx))
	return handleExecutionError(runErr)
}
