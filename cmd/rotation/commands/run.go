package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotationlab/backend/pkg/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline pass and publish artifacts",
	Long: `Fetches price history, classifies phases, scores rotations, advances
the signal ledger and writes the run artifacts to the data directory.

Examples:
  go run ./cmd/rotation run
  go run ./cmd/rotation run --date 2026-08-28
  go run ./cmd/rotation run --replay`,
	RunE: runPipeline,
}

var (
	runDate   string
	runReplay bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "as-of date (YYYY-MM-DD, default today)")
	runCmd.Flags().BoolVar(&runReplay, "replay", false, "rebuild the signal ledger from history")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	pst, err := loadPreset(cfg)
	if err != nil {
		return err
	}

	asOf := time.Now()
	if runDate != "" {
		asOf, err = time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", runDate, err)
		}
	}

	p, cleanup, err := buildPipeline(cfg, log, pst, false)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := p.Run(context.Background(), asOf, runReplay)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("Run %s complete: %d sectors, %d rotations, regime %s\n",
		rep.Metadata.Date, rep.Metadata.TotalSectors,
		rep.Metadata.SignificantRotations, rep.Regime.Regime)
	return nil
}
