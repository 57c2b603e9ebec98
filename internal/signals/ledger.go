package signals

import (
	"sort"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
)

// Ledger holds every tracked signal, active and closed, for one preset.
type Ledger struct {
	AsOf    time.Time           `json:"as_of"`
	Signals []*contracts.Signal `json:"signals"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{Signals: []*contracts.Signal{}}
}

// Add appends a signal.
func (l *Ledger) Add(sig *contracts.Signal) {
	l.Signals = append(l.Signals, sig)
}

// Active returns the open signal for a ticker, or nil. A ticker carries at
// most one open signal at a time.
func (l *Ledger) Active(ticker string) *contracts.Signal {
	for _, s := range l.Signals {
		if s.Ticker == ticker && s.IsActive() {
			return s
		}
	}
	return nil
}

// ActiveCount returns the number of open signals.
func (l *Ledger) ActiveCount() int {
	n := 0
	for _, s := range l.Signals {
		if s.IsActive() {
			n++
		}
	}
	return n
}

// Sort orders the ledger for presentation: active signals first, newest open
// date first, then closed signals newest close date first. Ties break by
// ticker so output is stable.
func (l *Ledger) Sort() {
	sort.SliceStable(l.Signals, func(i, j int) bool {
		a, b := l.Signals[i], l.Signals[j]
		if a.IsActive() != b.IsActive() {
			return a.IsActive()
		}
		if a.IsActive() {
			if !a.OpenDate.Equal(b.OpenDate) {
				return a.OpenDate.After(b.OpenDate)
			}
			return a.Ticker < b.Ticker
		}
		if !a.CloseDate.Equal(*b.CloseDate) {
			return a.CloseDate.After(*b.CloseDate)
		}
		return a.Ticker < b.Ticker
	})
}

// Prune drops closed signals whose close date is more than retentionDays
// calendar days before asOf. Active signals are never pruned.
func (l *Ledger) Prune(asOf time.Time, retentionDays int) int {
	cutoff := asOf.AddDate(0, 0, -retentionDays)
	kept := l.Signals[:0]
	dropped := 0
	for _, s := range l.Signals {
		if !s.IsActive() && s.CloseDate.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	l.Signals = kept
	return dropped
}

// Stats summarizes closed-signal outcomes.
type Stats struct {
	Active  int     `json:"active"`
	Closed  int     `json:"closed"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// Stats computes outcome counts. Win means the closed signal beat the
// benchmark over its holding period.
func (l *Ledger) Stats() Stats {
	var st Stats
	for _, s := range l.Signals {
		if s.IsActive() {
			st.Active++
			continue
		}
		st.Closed++
		if s.Won() {
			st.Wins++
		} else {
			st.Losses++
		}
	}
	if st.Closed > 0 {
		st.WinRate = float64(st.Wins) / float64(st.Closed)
	}
	return st
}

// NeedsReplay reports whether the ledger looks uninitialized or corrupted
// and should be rebuilt from history instead of incrementally updated. A
// ledger where every signal is active with zero days held is the footprint
// of a run that wrote entries but never marked them to market.
func (l *Ledger) NeedsReplay() bool {
	if l == nil || len(l.Signals) == 0 {
		return true
	}
	for _, s := range l.Signals {
		if s == nil || s.Ticker == "" || s.OpenPrice <= 0 {
			return true
		}
		if !s.IsActive() && s.CloseDate == nil {
			return true
		}
	}
	for _, s := range l.Signals {
		if !s.IsActive() || s.DaysActive != 0 {
			return false
		}
	}
	return true
}
