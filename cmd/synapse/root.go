package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "synapse",
	Short: "Synapse is an event-driven plugin runtime that reacts to how its user is doing",
	Long: `Synapse wires an event channel, an action store and a plugin orchestrator
around a detector that infers the user's cognitive state from interaction outcomes.
The CLI drives scripted sessions through the runtime and exposes its diagnostics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Log runtime activity to stderr")
}
