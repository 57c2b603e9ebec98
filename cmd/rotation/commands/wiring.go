package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotationlab/backend/internal/marketdata"
	"github.com/rotationlab/backend/internal/pipeline"
	"github.com/rotationlab/backend/internal/preset"
	"github.com/rotationlab/backend/internal/report"
	"github.com/rotationlab/backend/internal/signals"
	"github.com/rotationlab/backend/internal/universe"
	"github.com/rotationlab/backend/pkg/config"
	"github.com/rotationlab/backend/pkg/database"
	"github.com/rotationlab/backend/pkg/httputil"
	"github.com/rotationlab/backend/pkg/logger"
	"github.com/rotationlab/backend/pkg/redis"
)

// loadPreset resolves the --preset flag (or configured path) into a preset:
// a built-in id first, then a YAML file path.
func loadPreset(cfg *config.Config) (*preset.Preset, error) {
	name := presetFlag
	if name == "" {
		name = cfg.Pipeline.PresetPath
	}
	if name == "" {
		return preset.Classic(), nil
	}
	if p, ok := preset.ByID(name); ok {
		return p, nil
	}
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("preset %q is neither a built-in id nor a readable file", name)
	}
	return preset.Load(name)
}

// buildPipeline wires a pipeline from configuration. The returned cleanup
// closes whatever optional backends were opened.
func buildPipeline(cfg *config.Config, log *logger.Logger, pst *preset.Preset, synthetic bool) (*pipeline.Pipeline, func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var source marketdata.Source
	if synthetic || cfg.MarketData.Provider == "synthetic" {
		source = marketdata.NewSyntheticSource(42, time.Now())
	} else {
		client := httputil.New(log).WithRateLimit(cfg.MarketData.RatePerSec)
		source = marketdata.NewStooqSource(client, log, cfg.MarketData.BaseURL)
	}

	if cfg.Redis.Enabled && !synthetic {
		rc, err := redis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, fetching uncached")
		} else {
			cleanups = append(cleanups, func() { rc.Close() })
			cache := redis.NewCache(rc, "rotation")
			source = marketdata.NewCachedSource(source, cache, log, cfg.Redis.TTL)
		}
	}

	var repo *signals.Repository
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		cleanups = append(cleanups, db.Close)
		repo = signals.NewRepository(db.Pool)
	}

	ledgerPath := filepath.Join(cfg.Pipeline.DataDir, fmt.Sprintf("ledger_%s.json", pst.Meta.ID))

	p := pipeline.New(pipeline.Options{
		Preset:   pst,
		Universe: universe.Default(),
		Source:   source,
		Store:    signals.NewStore(ledgerPath),
		Repo:     repo,
		Writer:   report.NewWriter(cfg.Pipeline.DataDir, log),
		Logger:   log,
		Lookback: cfg.Pipeline.Lookback,
	})
	return p, cleanup, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
	}
	return logger.New(cfg)
}
