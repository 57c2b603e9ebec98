// Package pipeline orchestrates one end-to-end run: fetch prices, classify
// sector and constituent phases, score rotations, infer the regime, advance
// the signal ledger and publish the run artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/marketdata"
	"github.com/rotationlab/backend/internal/phase"
	"github.com/rotationlab/backend/internal/preset"
	"github.com/rotationlab/backend/internal/regime"
	"github.com/rotationlab/backend/internal/report"
	"github.com/rotationlab/backend/internal/rotation"
	"github.com/rotationlab/backend/internal/signals"
	"github.com/rotationlab/backend/internal/universe"
	"github.com/rotationlab/backend/pkg/logger"
)

// ErrBenchmarkMissing aborts a run: every RS computation divides by the
// benchmark, so without it nothing downstream is meaningful.
var ErrBenchmarkMissing = errors.New("pipeline: benchmark series missing from fetched data")

// Beta estimation lookback, trading days.
const betaWindow = 60

// Pipeline wires the run stages together. Construct once, Run per day.
type Pipeline struct {
	cfg        *preset.Preset
	uni        *universe.Universe
	source     marketdata.Source
	classifier *phase.Classifier
	builder    *phase.Builder
	scorer     *rotation.Scorer
	detector   *regime.Detector
	tracker    *signals.Tracker
	store      *signals.Store
	repo       *signals.Repository
	writer     *report.Writer
	log        *logger.Logger
	lookback   int
}

// Options carries the injectable pieces of a pipeline.
type Options struct {
	Preset   *preset.Preset
	Universe *universe.Universe
	Source   marketdata.Source
	Store    *signals.Store
	Repo     *signals.Repository // optional database mirror
	Writer   *report.Writer
	Logger   *logger.Logger
	Lookback int // trading days of history to fetch
}

// New builds a pipeline from options.
func New(opts Options) *Pipeline {
	p := opts.Preset
	classifier := phase.NewClassifier(p.Scheme(), p.Phase.ReturnGuard, p.Phase.StrengthCap)
	return &Pipeline{
		cfg:        p,
		uni:        opts.Universe,
		source:     opts.Source,
		classifier: classifier,
		builder:    phase.NewBuilder(classifier, p.Phase.RSWindow, p.Phase.ConfirmDays),
		scorer:     rotation.NewScorer(p.Rotation),
		detector:   regime.NewDetector(p.Regime.ConfidenceFloor),
		tracker:    signals.NewTracker(p.Signals, opts.Logger),
		store:      opts.Store,
		repo:       opts.Repo,
		writer:     opts.Writer,
		log:        opts.Logger,
		lookback:   opts.Lookback,
	}
}

// Run executes one full pipeline pass as of the given date and publishes
// artifacts. forceReplay rebuilds the signal ledger from history even if the
// stored one looks healthy.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time, forceReplay bool) (*contracts.RunReport, error) {
	started := time.Now()

	symbols := append([]string{p.uni.Benchmark}, p.uni.SectorETFs()...)
	symbols = append(symbols, p.uni.AllHoldings()...)

	frame, err := p.source.Fetch(ctx, symbols, p.lookback)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch: %w", err)
	}

	if dropped, trimmed := frame.TrimPartialDay(); trimmed {
		p.log.WithField("date", dropped.Format("2006-01-02")).
			Warn("dropped partial trading day, volume well below prior session")
	}

	bench, ok := frame.Get(p.uni.Benchmark)
	if !ok || bench.Len() == 0 {
		return nil, ErrBenchmarkMissing
	}
	bench = truncateAfter(bench, asOf)
	if bench.Len() == 0 {
		return nil, ErrBenchmarkMissing
	}
	runDate := lastDate(bench)

	skipped := 0

	nodes, candidates, sectorPhases, nSkipped := p.buildSectorSnapshots(frame, bench)
	skipped += nSkipped
	if len(nodes) == 0 {
		return nil, fmt.Errorf("pipeline: no sector could be classified")
	}

	marketState, avgCorr := p.scorer.MarketState(candidates)
	edges := p.scorer.Score(candidates)
	regimeCall := p.detector.Infer(sectorPhases)

	stocks, fresh, details, nSkipped := p.buildStockSnapshots(frame, bench, runDate)
	skipped += nSkipped

	ledger, err := p.advanceLedger(runDate, stocks, forceReplay)
	if err != nil {
		return nil, err
	}

	meta := contracts.RunMetadata{
		Date:                 runDate.Format("2006-01-02"),
		MarketState:          marketState,
		AvgCorrelation:       avgCorr,
		TotalSectors:         len(nodes),
		SkippedInstruments:   skipped,
		SignificantRotations: len(edges),
		BenchmarkReturn:      round5(dailyReturn(bench)),
		PresetID:             p.cfg.Meta.ID,
		PresetHash:           p.cfg.Hash(),
		GeneratedAt:          time.Now().UTC(),
	}
	meta.Narrative = report.Narrative(meta, nodes, edges, regimeCall)

	rep := &contracts.RunReport{
		Metadata:       meta,
		Nodes:          nodes,
		Rotations:      edges,
		Regime:         regimeCall,
		Signals:        fresh,
		SignalsHistory: ledger.Signals,
	}

	if p.writer != nil {
		if err := p.writer.WriteRun(rep); err != nil {
			return nil, err
		}
		for _, d := range details {
			if err := p.writer.WriteSectorDetail(d); err != nil {
				return nil, err
			}
		}
	}

	if p.repo != nil {
		if err := p.repo.SaveLedger(ctx, runDate, ledger); err != nil {
			// Database mirroring is best effort; the JSON store already
			// holds the authoritative ledger.
			p.log.WithError(err).Warn("failed to mirror ledger to database")
		}
	}

	p.log.WithFields(map[string]interface{}{
		"date":      meta.Date,
		"sectors":   meta.TotalSectors,
		"rotations": meta.SignificantRotations,
		"skipped":   skipped,
		"elapsed":   time.Since(started).String(),
	}).Info("pipeline run complete")

	return rep, nil
}

// truncateAfter drops bars dated after asOf. A live feed queried before the
// close returns today's partial bar, which would poison every trailing
// window with an incomplete day.
func truncateAfter(s *marketdata.PriceSeries, asOf time.Time) *marketdata.PriceSeries {
	dates := s.Dates()
	drop := 0
	for i := len(dates) - 1; i >= 0 && dates[i].After(asOf); i-- {
		drop++
	}
	return s.Head(drop)
}

func lastDate(s *marketdata.PriceSeries) time.Time {
	bar, _ := s.Last()
	return bar.Date
}

func dailyReturn(s *marketdata.PriceSeries) float64 {
	closes := s.Closes()
	if len(closes) < 2 || closes[len(closes)-2] == 0 {
		return 0
	}
	return closes[len(closes)-1]/closes[len(closes)-2] - 1
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1e3) / 1e3 }
func round5(v float64) float64 { return math.Round(v*1e5) / 1e5 }
