// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/pkg/logger"
)

// Runner triggers one pipeline pass.
type Runner interface {
	Run(ctx context.Context, asOf time.Time, forceReplay bool) (*contracts.RunReport, error)
}

// DailyRun executes the pipeline after the US market close on weekdays.
type DailyRun struct {
	runner Runner
	logger *logger.Logger
}

// NewDailyRun creates the daily pipeline job.
func NewDailyRun(runner Runner, log *logger.Logger) *DailyRun {
	return &DailyRun{runner: runner, logger: log}
}

// Name returns the job name.
func (j *DailyRun) Name() string {
	return "daily_run"
}

// Schedule fires weekdays at 16:30 local time, after the US close. The
// deployment host runs in Eastern time.
func (j *DailyRun) Schedule() string {
	return "0 30 16 * * 1-5"
}

// Run executes one pipeline pass for today.
func (j *DailyRun) Run(ctx context.Context) error {
	rep, err := j.runner.Run(ctx, time.Now(), false)
	if err != nil {
		return fmt.Errorf("daily run: %w", err)
	}
	j.logger.WithFields(map[string]interface{}{
		"date":      rep.Metadata.Date,
		"rotations": rep.Metadata.SignificantRotations,
	}).Info("daily run published")
	return nil
}
