package main

import (
	"github.com/aretw0/synapse/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [scenario]",
	Short: "Loop a scenario and expose the runtime over HTTP",
	Long: `Starts a runtime with Prometheus metrics, replays a scenario until interrupted and
serves read-only diagnostics (healthz, state, plugins, events, metrics).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		if len(args) > 0 {
			opts.Scenario = args[0]
		}
		addr, _ := cmd.Flags().GetString("addr")
		return cli.RunServe(opts, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addRunFlags(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (defaults to diagnostics.addr from the config)")
}
