package contracts

import (
	"fmt"
	"time"
)

// SignalStatus is the lifecycle state of a tracked signal.
type SignalStatus string

const (
	SignalActive SignalStatus = "active"
	SignalClosed SignalStatus = "closed"
)

// CloseReason explains why a signal left the active set.
type CloseReason string

const (
	// CloseConfirmed: the confirmed phase reached the terminal leading phase.
	CloseConfirmed CloseReason = "confirmed"
	// CloseReversed: the confirmed phase degraded to a weak phase.
	CloseReversed CloseReason = "reversed"
	// CloseExpired: the signal exceeded the maximum holding horizon.
	CloseExpired CloseReason = "expired"
)

// Signal is one tracked rotation trade idea with an open/close lifecycle.
// Once Status is closed the record is immutable except for retention pruning.
type Signal struct {
	Ticker     string `json:"ticker"`
	Sector     string `json:"sector"`
	SectorName string `json:"sector_name"`

	OpenDate      time.Time `json:"open_date"`
	OpenPrice     float64   `json:"open_price"`
	BenchOpenPrice float64  `json:"bench_open_price"`

	CurrentPhase PhaseKind `json:"current_phase"`
	DaysActive   int       `json:"days_active"`

	// ReturnAbs is price/open-1; ReturnVsBench subtracts the benchmark
	// return over the same holding period. Both rounded to 5 decimals.
	ReturnAbs     float64 `json:"return_abs"`
	ReturnVsBench float64 `json:"return_vs_bench"`

	Status      SignalStatus `json:"status"`
	CloseDate   *time.Time   `json:"close_date"`
	CloseReason CloseReason  `json:"close_reason,omitempty"`
}

// NewSignal opens a signal at the given date and prices.
func NewSignal(ticker, sector, sectorName string, openDate time.Time, openPrice, benchOpenPrice float64, phase PhaseKind) (*Signal, error) {
	if ticker == "" {
		return nil, fmt.Errorf("signal requires a ticker")
	}
	if openPrice <= 0 {
		return nil, fmt.Errorf("signal %s: open price must be positive, got %f", ticker, openPrice)
	}
	if benchOpenPrice <= 0 {
		return nil, fmt.Errorf("signal %s: benchmark open price must be positive, got %f", ticker, benchOpenPrice)
	}

	return &Signal{
		Ticker:         ticker,
		Sector:         sector,
		SectorName:     sectorName,
		OpenDate:       openDate,
		OpenPrice:      openPrice,
		BenchOpenPrice: benchOpenPrice,
		CurrentPhase:   phase,
		Status:         SignalActive,
	}, nil
}

// Close terminates the signal. A closed signal cannot be closed again and a
// reason is mandatory.
func (s *Signal) Close(date time.Time, reason CloseReason) error {
	if s.Status == SignalClosed {
		return fmt.Errorf("signal %s already closed on %s", s.Ticker, s.CloseDate.Format("2006-01-02"))
	}
	switch reason {
	case CloseConfirmed, CloseReversed, CloseExpired:
	default:
		return fmt.Errorf("signal %s: invalid close reason %q", s.Ticker, reason)
	}

	d := date
	s.Status = SignalClosed
	s.CloseDate = &d
	s.CloseReason = reason
	return nil
}

// IsActive reports whether the signal is still open.
func (s *Signal) IsActive() bool {
	return s.Status == SignalActive
}

// Won reports whether a closed signal beat the benchmark.
func (s *Signal) Won() bool {
	return s.Status == SignalClosed && s.ReturnVsBench > 0
}
