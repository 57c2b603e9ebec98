package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	presetFlag string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "rotation",
	Short: "Sector rotation phase engine",
	Long: `Sector rotation analysis pipeline.

Classifies sector and constituent momentum phases from relative strength,
scores pairwise rotations, tracks signal lifecycles and publishes daily
JSON artifacts.

Examples:
  go run ./cmd/rotation run
  go run ./cmd/rotation run --date 2026-08-28 --replay
  go run ./cmd/rotation sample
  go run ./cmd/rotation api
  go run ./cmd/rotation scheduler`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "preset id (classic|aggressive) or YAML path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
