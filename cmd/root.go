// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profile-stats",
	Short: "A CLI tool to summarize a GitHub user's profile.",
	Long: `profile-stats collects a GitHub user's repositories, contribution calendar
and activity counts, then derives the top languages, contribution streaks and
totals. The result can be printed as JSON or written into a README between
two marker comments.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file (default .profile-stats.yaml if present)")
}
