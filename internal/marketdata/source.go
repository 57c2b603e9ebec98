package marketdata

import "context"

// Source provides daily OHLCV history. Two implementations exist: the Stooq
// CSV fetcher for live runs and the synthetic generator for sample runs and
// tests. The pipeline never branches on which one is active.
type Source interface {
	// Fetch returns roughly lookbackDays trading days of history for each
	// symbol. Symbols with no available data are simply absent from the
	// frame; callers decide whether that is fatal.
	Fetch(ctx context.Context, symbols []string, lookbackDays int) (*Frame, error)
}
