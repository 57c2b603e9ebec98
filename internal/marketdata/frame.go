package marketdata

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV observation. Open is not carried; nothing in the
// pipeline consumes it.
type Bar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the ordered daily history for one instrument. Dates are
// trading days, strictly increasing, no duplicates. The core treats a series
// as read-only once built.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewPriceSeries validates ordering and returns a series.
func NewPriceSeries(symbol string, bars []Bar) (*PriceSeries, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("series %s: dates not strictly increasing at index %d (%s >= %s)",
				symbol, i, bars[i-1].Date.Format("2006-01-02"), bars[i].Date.Format("2006-01-02"))
		}
	}
	return &PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// Len returns the number of trading days.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Dates returns the date column.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Head returns the series without its last n bars. Dropping nothing returns
// the receiver; dropping everything returns an empty series. Used by the
// partial-trading-day guard.
func (s *PriceSeries) Head(n int) *PriceSeries {
	if n <= 0 {
		return s
	}
	if n >= len(s.Bars) {
		return &PriceSeries{Symbol: s.Symbol}
	}
	return &PriceSeries{Symbol: s.Symbol, Bars: s.Bars[:len(s.Bars)-n]}
}

// Returns computes day-over-day simple returns; the result has Len()-1
// entries aligned with Dates()[1:].
func (s *PriceSeries) Returns() []float64 {
	if len(s.Bars) < 2 {
		return nil
	}
	out := make([]float64, len(s.Bars)-1)
	for i := 1; i < len(s.Bars); i++ {
		prev := s.Bars[i-1].Close
		if prev == 0 {
			out[i-1] = 0
			continue
		}
		out[i-1] = s.Bars[i].Close/prev - 1
	}
	return out
}

// AlignPair restricts two series to their common trading days, preserving
// order. Phase and indicator math requires paired observations.
func AlignPair(a, b *PriceSeries) (*PriceSeries, *PriceSeries) {
	inB := make(map[time.Time]Bar, len(b.Bars))
	for _, bar := range b.Bars {
		inB[bar.Date] = bar
	}

	var outA, outB []Bar
	for _, bar := range a.Bars {
		if other, ok := inB[bar.Date]; ok {
			outA = append(outA, bar)
			outB = append(outB, other)
		}
	}
	return &PriceSeries{Symbol: a.Symbol, Bars: outA},
		&PriceSeries{Symbol: b.Symbol, Bars: outB}
}

// Frame is the aligned price table for one run: every fetched instrument
// keyed by symbol, benchmark included.
type Frame struct {
	Series map[string]*PriceSeries
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{Series: make(map[string]*PriceSeries)}
}

// Get returns one instrument's series.
func (f *Frame) Get(symbol string) (*PriceSeries, bool) {
	s, ok := f.Series[symbol]
	if !ok || s == nil || len(s.Bars) == 0 {
		return nil, false
	}
	return s, true
}

// Symbols returns every symbol with at least one bar.
func (f *Frame) Symbols() []string {
	out := make([]string, 0, len(f.Series))
	for sym, s := range f.Series {
		if s != nil && len(s.Bars) > 0 {
			out = append(out, sym)
		}
	}
	return out
}

// Empty reports whether the frame holds no usable data.
func (f *Frame) Empty() bool {
	return len(f.Symbols()) == 0
}

// TrimPartialDay drops the newest session from every series when its average
// volume across the frame is below half of the prior session's. A feed
// queried before the close reports today's bar with whatever volume has
// traded so far, which would distort every volume-sensitive indicator.
// Returns the dropped date and whether a trim happened.
func (f *Frame) TrimPartialDay() (time.Time, bool) {
	var newest time.Time
	for _, s := range f.Series {
		if last, ok := s.Last(); ok && last.Date.After(newest) {
			newest = last.Date
		}
	}
	if newest.IsZero() {
		return time.Time{}, false
	}

	var todaySum, prevSum float64
	var todayN, prevN int
	for _, s := range f.Series {
		last, ok := s.Last()
		if !ok || !last.Date.Equal(newest) || s.Len() < 2 {
			continue
		}
		todaySum += last.Volume
		todayN++
		prevSum += s.Bars[s.Len()-2].Volume
		prevN++
	}
	if todayN == 0 || prevN == 0 || prevSum == 0 {
		return time.Time{}, false
	}
	if todaySum/float64(todayN) >= 0.5*(prevSum/float64(prevN)) {
		return time.Time{}, false
	}

	for sym, s := range f.Series {
		if last, ok := s.Last(); ok && last.Date.Equal(newest) {
			f.Series[sym] = s.Head(1)
		}
	}
	return newest, true
}
