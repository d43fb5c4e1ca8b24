// Package cli implements the honor command-line interface using Cobra.
// Each subcommand maps to an engine capability (serve, log, calc, score...).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "honor",
	Short: "honor — Habit honor score engine",
	Long: `honor computes behavioral honor scores from daily habit logs.

Completions fold into a normalized 0-1000 score per half-month period, with
streak bonuses, penalty caps, and period-over-period trends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
