package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/synapse/internal/logging"
	"github.com/aretw0/synapse/pkg/config"
)

// signalCause records the signal that cancelled a context.
type signalCause struct {
	sig os.Signal
}

func (c signalCause) Error() string { return "received " + c.sig.String() }

// withSignals returns a context cancelled on SIGINT or SIGTERM, with the
// signal kept as its cause for signalOf.
func withSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			cancel(signalCause{sig: sig})
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}

// signalOf returns the signal that cancelled ctx, or nil.
func signalOf(ctx context.Context) os.Signal {
	var cause signalCause
	if errors.As(context.Cause(ctx), &cause) {
		return cause.sig
	}
	return nil
}

// LoadConfig returns the stock configuration when path is empty.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// createLogger configures the application logger on Stderr.
// An untouched log section keeps the CLI silent unless debug is set.
func createLogger(cfg config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		cfg.Log.Level = "debug"
	} else if cfg.Log == config.Default().Log {
		return logging.NewNop(), nil
	}
	return cfg.Logger()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, err error, quiet bool, sig os.Signal) {
	if quiet || err == nil {
		return
	}
	if isInterrupted(err) {
		switch {
		case sig == os.Interrupt:
			fmt.Fprintf(w, "[CTRL+C]\n")
			printSystemMessage(w, "Interrupted.")
		case sig != nil:
			fmt.Fprintf(w, "\n")
			printSystemMessage(w, "Terminated.")
		default:
			printSystemMessage(w, "Interrupted.")
		}
	}
}
