package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotationlab/backend/internal/api"
	"github.com/rotationlab/backend/internal/api/handlers"
	"github.com/rotationlab/backend/pkg/config"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve published run artifacts over HTTP",
	Long: `Starts the REST API.

Endpoints:
  GET  /health                     - health check
  GET  /api/rotation/latest        - latest run report
  GET  /api/rotation/sectors/{etf} - sector constituent detail
  GET  /api/signals/history        - signal ledger
  GET  /api/regime                 - regime call only
  POST /api/run                    - trigger a pipeline run (?replay=1)

Example:
  go run ./cmd/rotation api --port 8091`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "listen port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
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

	reportHandler := handlers.NewReportHandler(cfg.Pipeline.DataDir, log)
	runHandler := handlers.NewRunHandler(p, log)
	router := api.NewRouter(reportHandler, runHandler, log)

	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
