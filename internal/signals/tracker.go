// Package signals tracks the open/close lifecycle of rotation entries. A
// signal opens when an instrument's confirmed phase enters an acceleration
// phase with real relative momentum behind it, and closes when the move
// completes, reverses, or simply takes too long.
package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/phase"
	"github.com/rotationlab/backend/internal/preset"
	"github.com/rotationlab/backend/pkg/logger"
)

// Instrument identifies what a signal trades.
type Instrument struct {
	Ticker     string
	Sector     string
	SectorName string
}

// Observation is one trading day's view of an instrument, as consumed by the
// lifecycle state machine.
type Observation struct {
	Date       time.Time
	Price      float64
	BenchPrice float64

	Confirmed     contracts.PhaseKind
	PrevConfirmed contracts.PhaseKind
	Momentum      float64
}

// Tracker applies the lifecycle rules day by day.
type Tracker struct {
	cfg preset.Signals
	log *logger.Logger
}

// NewTracker builds a tracker from preset tuning.
func NewTracker(cfg preset.Signals, log *logger.Logger) *Tracker {
	return &Tracker{cfg: cfg, log: log}
}

// Step advances the ledger by one observed day for one instrument.
//
// An existing active signal is marked to market first and then checked for
// close, in strict priority: terminal phase beats reversal beats expiry.
// Only when no signal is active can the day open one, and only on a phase
// transition into acceleration, not on merely being in it. That keeps a
// restart from re-opening entries for instruments already mid-phase.
func (t *Tracker) Step(led *Ledger, inst Instrument, day Observation) error {
	if day.Price <= 0 || day.BenchPrice <= 0 {
		return fmt.Errorf("signals: %s %s: non-positive price", inst.Ticker, day.Date.Format("2006-01-02"))
	}

	if sig := led.Active(inst.Ticker); sig != nil {
		t.markToMarket(sig, day)
		if reason, ok := t.closeReason(sig, day); ok {
			if err := sig.Close(day.Date, reason); err != nil {
				return err
			}
			t.log.WithFields(map[string]interface{}{
				"ticker":      inst.Ticker,
				"reason":      string(reason),
				"days_active": sig.DaysActive,
				"return":      sig.ReturnAbs,
			}).Debug("signal closed")
		}
		return nil
	}

	if !t.shouldOpen(day) {
		return nil
	}
	sig, err := contracts.NewSignal(inst.Ticker, inst.Sector, inst.SectorName, day.Date, day.Price, day.BenchPrice, day.Confirmed)
	if err != nil {
		return err
	}
	led.Add(sig)
	t.log.WithFields(map[string]interface{}{
		"ticker":   inst.Ticker,
		"phase":    string(day.Confirmed),
		"momentum": day.Momentum,
	}).Debug("signal opened")
	return nil
}

// markToMarket refreshes returns, holding age, and phase on an open signal.
// Holding age is calendar days, not trading days: a signal opened Friday is
// three days old on Monday.
func (t *Tracker) markToMarket(sig *contracts.Signal, day Observation) {
	sig.CurrentPhase = day.Confirmed
	sig.DaysActive = calendarDays(sig.OpenDate, day.Date)
	sig.ReturnAbs = round5(day.Price/sig.OpenPrice - 1)
	benchRet := day.BenchPrice/sig.BenchOpenPrice - 1
	sig.ReturnVsBench = round5(day.Price/sig.OpenPrice - 1 - benchRet)
}

func (t *Tracker) closeReason(sig *contracts.Signal, day Observation) (contracts.CloseReason, bool) {
	switch {
	case day.Confirmed.IsTerminal():
		return contracts.CloseConfirmed, true
	case day.Confirmed.IsWeak():
		return contracts.CloseReversed, true
	case sig.DaysActive > t.cfg.MaxHoldDays:
		return contracts.CloseExpired, true
	}
	return "", false
}

func (t *Tracker) shouldOpen(day Observation) bool {
	return day.Confirmed.IsAcceleration() &&
		!day.PrevConfirmed.IsAcceleration() &&
		day.Momentum >= t.cfg.OpenMomentumMin
}

// Replay rebuilds an instrument's signal history from scratch by walking the
// full phase series, skipping the warmup span where indicators are still
// settling. Replaying the same series always yields the same ledger entries.
func (t *Tracker) Replay(led *Ledger, inst Instrument, series *phase.Series, prices, bench []float64) error {
	if len(prices) != series.Len() || len(bench) != series.Len() {
		return fmt.Errorf("signals: %s: series length mismatch: %d dates, %d prices, %d bench",
			inst.Ticker, series.Len(), len(prices), len(bench))
	}
	for i := t.cfg.WarmupDays; i < series.Len(); i++ {
		prev := series.Confirmed[i]
		if i > 0 {
			prev = series.Confirmed[i-1]
		}
		day := Observation{
			Date:          series.Dates[i],
			Price:         prices[i],
			BenchPrice:    bench[i],
			Confirmed:     series.Confirmed[i],
			PrevConfirmed: prev,
			Momentum:      series.Momentum[i],
		}
		if err := t.Step(led, inst, day); err != nil {
			return err
		}
	}
	return nil
}

// Update advances an existing ledger by the latest day of the series. It is
// equivalent to replaying one more day: a ledger replayed through day N and
// then updated with day N+1 matches a ledger replayed through day N+1.
func (t *Tracker) Update(led *Ledger, inst Instrument, series *phase.Series, price, benchPrice float64) error {
	n := series.Len()
	if n == 0 {
		return fmt.Errorf("signals: %s: empty phase series", inst.Ticker)
	}
	prev := series.Confirmed[n-1]
	if n > 1 {
		prev = series.Confirmed[n-2]
	}
	return t.Step(led, inst, Observation{
		Date:          series.Dates[n-1],
		Price:         price,
		BenchPrice:    benchPrice,
		Confirmed:     series.Confirmed[n-1],
		PrevConfirmed: prev,
		Momentum:      series.Momentum[n-1],
	})
}

func calendarDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round5(v float64) float64 { return math.Round(v*1e5) / 1e5 }
