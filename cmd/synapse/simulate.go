package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/synapse/internal/cli"
	"github.com/aretw0/synapse/internal/scenario"
	"github.com/spf13/cobra"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario]",
	Short: "Play a scripted session through the runtime",
	Long: fmt.Sprintf(`Feeds a scripted sequence of interaction outcomes to a fresh runtime and prints
every cognitive transition as it commits, followed by a session report.

Built-in scenarios: %s.`, strings.Join(scenario.Names(), ", ")),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		if len(args) > 0 {
			opts.Scenario = args[0]
		}
		opts.Report, _ = cmd.Flags().GetBool("report")
		return cli.RunSimulation(opts)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addRunFlags(simulateCmd)
	simulateCmd.Flags().Bool("report", true, "Print the session report when the scenario ends")
}

// addRunFlags registers the flags shared by simulate and serve.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Play a YAML scenario file instead of a built-in")
	cmd.Flags().Duration("pace", 0, "Real time to wait between interactions")
	cmd.Flags().Bool("json", false, "Emit NDJSON events instead of coloured text")
	cmd.Flags().Bool("no-banner", false, "Skip the banner")
}

func runOptions(cmd *cobra.Command) cli.RunOptions {
	var opts cli.RunOptions
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	opts.ScenarioFile, _ = cmd.Flags().GetString("file")
	opts.Pace, _ = cmd.Flags().GetDuration("pace")
	opts.JSON, _ = cmd.Flags().GetBool("json")
	opts.NoBanner, _ = cmd.Flags().GetBool("no-banner")
	return opts
}
