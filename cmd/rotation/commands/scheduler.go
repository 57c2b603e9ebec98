package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rotationlab/backend/internal/scheduler"
	"github.com/rotationlab/backend/internal/scheduler/jobs"
	"github.com/rotationlab/backend/pkg/config"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily pipeline on a cron schedule",
	Long: `Starts the scheduler, which executes the pipeline every weekday after
the US market close and retries failures.

Example:
  go run ./cmd/rotation scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
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

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyRun(p, log)); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.WithField("signal", sig.String()).Info("shutdown signal received")
	return nil
}
