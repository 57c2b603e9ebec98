package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotationlab/backend/pkg/config"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild the signal ledger by replaying full history",
	Long: `Discards the stored signal ledger and reconstructs it by replaying
the entire fetched phase history. Equivalent to "run --replay"; this exists
as its own command so operators recovering from a corrupted ledger do not
have to remember a flag.`,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	pst, err := loadPreset(cfg)
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg, log, pst, false)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := p.Run(context.Background(), time.Now(), true)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	fmt.Printf("Ledger rebuilt through %s: %d signals in history\n",
		rep.Metadata.Date, len(rep.SignalsHistory))
	return nil
}
