package phase

import (
	"fmt"
	"math"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/indicators"
	"github.com/rotationlab/backend/internal/marketdata"
)

// Series is one instrument's dated phase history after warmup. Raw and
// Confirmed run in lockstep with Dates; Momentum carries the instantaneous
// RS-Momentum used by the signal-open strength filter.
type Series struct {
	Symbol    string
	Dates     []time.Time
	Raw       []contracts.PhaseKind
	Confirmed []contracts.PhaseKind
	Ratio     []float64
	Momentum  []float64

	index map[time.Time]int
}

// Index returns the position of a trading day, if present.
func (s *Series) Index(date time.Time) (int, bool) {
	i, ok := s.index[date]
	return i, ok
}

// Len returns the number of classified days.
func (s *Series) Len() int {
	return len(s.Dates)
}

// Builder derives phase series from price history. One parameterized builder
// serves every call site (sector vs market, stock vs market, stock vs
// sector ETF) so window or benchmark drift cannot creep in per caller.
type Builder struct {
	classifier  *Classifier
	window      int
	confirmDays int
}

// NewBuilder creates a phase series builder.
func NewBuilder(classifier *Classifier, window, confirmDays int) *Builder {
	return &Builder{
		classifier:  classifier,
		window:      window,
		confirmDays: confirmDays,
	}
}

// Window returns the RS rolling window.
func (b *Builder) Window() int {
	return b.window
}

// MinHistory is the number of aligned observations required before any phase
// can be classified: a full RS warmup (window for the rolling mean, window
// again for the momentum shift) plus one.
func (b *Builder) MinHistory() int {
	return b.window*2 + 1
}

// Build computes the raw and confirmed phase series of an instrument against
// a reference series. Returns an insufficient-history error when the aligned
// overlap cannot produce a single classified day.
func (b *Builder) Build(instr, ref *marketdata.PriceSeries) (*Series, error) {
	alignedInstr, alignedRef := marketdata.AlignPair(instr, ref)
	if alignedInstr.Len() < b.MinHistory() {
		return nil, fmt.Errorf("%s: insufficient history: %d aligned days, need %d",
			instr.Symbol, alignedInstr.Len(), b.MinHistory())
	}

	closes := alignedInstr.Closes()
	refCloses := alignedRef.Closes()
	dates := alignedInstr.Dates()

	ratio, momentum := indicators.RSSeries(closes, refCloses, b.window)

	s := &Series{
		Symbol: instr.Symbol,
		index:  make(map[time.Time]int),
	}
	for i := range dates {
		if math.IsNaN(ratio[i]) || math.IsNaN(momentum[i]) {
			continue
		}
		ret5 := trailingReturn5(closes, i)
		s.Dates = append(s.Dates, dates[i])
		s.Raw = append(s.Raw, b.classifier.Classify(ratio[i], momentum[i], ret5))
		s.Ratio = append(s.Ratio, ratio[i])
		s.Momentum = append(s.Momentum, momentum[i])
	}

	if len(s.Dates) == 0 {
		return nil, fmt.Errorf("%s: insufficient history: no classified days", instr.Symbol)
	}

	s.Confirmed = Smooth(s.Raw, b.confirmDays)
	for i, d := range s.Dates {
		s.index[d] = i
	}
	return s, nil
}

// trailingReturn5 is the 5-observation trailing return ending at index i.
func trailingReturn5(closes []float64, i int) float64 {
	if i < 4 || closes[i-4] == 0 {
		return 0.0
	}
	return closes[i]/closes[i-4] - 1
}
