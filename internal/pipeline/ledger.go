package pipeline

import (
	"fmt"
	"time"

	"github.com/rotationlab/backend/internal/signals"
)

// advanceLedger loads the stored signal ledger and moves it to runDate.
//
// A healthy ledger advances incrementally: one tracker step per instrument
// for the latest day. A missing, malformed, or uninitialized ledger is
// rebuilt by replaying each instrument's full phase history, which yields
// the same entries an uninterrupted sequence of daily runs would have
// produced.
func (p *Pipeline) advanceLedger(runDate time.Time, stocks []stockState, forceReplay bool) (*signals.Ledger, error) {
	ledger, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("pipeline: load ledger: %w", err)
	}

	replay := forceReplay || ledger.NeedsReplay()
	if replay {
		ledger = signals.NewLedger()
		for _, st := range stocks {
			if err := p.tracker.Replay(ledger, st.inst, st.series, st.prices, st.benchPrices); err != nil {
				return nil, fmt.Errorf("pipeline: replay %s: %w", st.inst.Ticker, err)
			}
		}
		p.log.WithFields(map[string]interface{}{
			"instruments": len(stocks),
			"signals":     len(ledger.Signals),
		}).Info("ledger rebuilt from history")
	} else {
		for _, st := range stocks {
			n := st.series.Len()
			if n == 0 {
				continue
			}
			// Stale series never advance the ledger; a symbol whose feed
			// stopped keeps its last marked state.
			if !st.series.Dates[n-1].Equal(runDate) {
				continue
			}
			if err := p.tracker.Update(ledger, st.inst, st.series, st.prices[n-1], st.benchPrices[n-1]); err != nil {
				return nil, fmt.Errorf("pipeline: update %s: %w", st.inst.Ticker, err)
			}
		}
	}

	pruned := ledger.Prune(runDate, p.cfg.Signals.RetentionDays)
	if pruned > 0 {
		p.log.WithField("pruned", pruned).Debug("expired closed signals removed")
	}
	ledger.Sort()
	ledger.AsOf = runDate

	if err := p.store.Save(ledger); err != nil {
		return nil, fmt.Errorf("pipeline: save ledger: %w", err)
	}
	return ledger, nil
}
