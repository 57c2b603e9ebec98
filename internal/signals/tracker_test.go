package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/phase"
	"github.com/rotationlab/backend/internal/preset"
	"github.com/rotationlab/backend/pkg/logger"
)

var testInst = Instrument{Ticker: "NVDA", Sector: "XLK", SectorName: "Technology"}

func testCfg() preset.Signals {
	return preset.Signals{
		OpenMomentumMin:     101,
		MaxHoldDays:         30,
		RetentionDays:       60,
		WarmupDays:          50,
		FreshMaxDaysInPhase: 5,
	}
}

// makeSeries builds a confirmed phase series over consecutive calendar days.
func makeSeries(symbol string, start time.Time, phases []contracts.PhaseKind, momentum float64) *phase.Series {
	s := &phase.Series{Symbol: symbol}
	for i, ph := range phases {
		s.Dates = append(s.Dates, start.AddDate(0, 0, i))
		s.Raw = append(s.Raw, ph)
		s.Confirmed = append(s.Confirmed, ph)
		s.Ratio = append(s.Ratio, 100)
		s.Momentum = append(s.Momentum, momentum)
	}
	return s
}

func repeatPhases(spans ...struct {
	ph contracts.PhaseKind
	n  int
}) []contracts.PhaseKind {
	var out []contracts.PhaseKind
	for _, s := range spans {
		for i := 0; i < s.n; i++ {
			out = append(out, s.ph)
		}
	}
	return out
}

func span(ph contracts.PhaseKind, n int) struct {
	ph contracts.PhaseKind
	n  int
} {
	return struct {
		ph contracts.PhaseKind
		n  int
	}{ph, n}
}

func constPrices(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestReplayFullLifecycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 15),
		span(contracts.PhaseLeading, 15),
		span(contracts.PhaseLagging, 10),
	)
	s := makeSeries("NVDA", start, phases, 102)

	prices := make([]float64, len(phases))
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	bench := constPrices(len(phases), 400)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, prices, bench))

	require.Len(t, led.Signals, 1, "one entry and one exit, nothing else")
	sig := led.Signals[0]

	assert.Equal(t, "NVDA", sig.Ticker)
	assert.Equal(t, start.AddDate(0, 0, 60), sig.OpenDate, "opens on the improving transition")
	assert.Equal(t, 160.0, sig.OpenPrice)
	assert.Equal(t, contracts.SignalClosed, sig.Status)
	assert.Equal(t, contracts.CloseConfirmed, sig.CloseReason, "leading closes as confirmed")
	require.NotNil(t, sig.CloseDate)
	assert.Equal(t, start.AddDate(0, 0, 75), *sig.CloseDate)
	assert.Equal(t, 15, sig.DaysActive)
}

func TestReplaySkipsWarmup(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// The transition happens inside the warmup span and must not open.
	phases := repeatPhases(
		span(contracts.PhaseLagging, 10),
		span(contracts.PhaseImproving, 5),
		span(contracts.PhaseLagging, 45),
	)
	s := makeSeries("NVDA", start, phases, 102)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(len(phases), 100), constPrices(len(phases), 400)))
	assert.Empty(t, led.Signals)
}

func TestOpenRequiresMomentum(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 20),
	)
	s := makeSeries("NVDA", start, phases, 100.5)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(len(phases), 100), constPrices(len(phases), 400)))
	assert.Empty(t, led.Signals, "momentum below the floor never opens")
}

func TestOpenRequiresTransition(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Improving from day one: no entry transition after warmup, no signal.
	phases := repeatPhases(span(contracts.PhaseImproving, 80))
	s := makeSeries("NVDA", start, phases, 102)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(80, 100), constPrices(80, 400)))
	assert.Empty(t, led.Signals)
}

func TestCloseReversed(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 10),
		span(contracts.PhaseWeakening, 10),
	)
	s := makeSeries("NVDA", start, phases, 102)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(80, 100), constPrices(80, 400)))

	require.Len(t, led.Signals, 1)
	assert.Equal(t, contracts.CloseReversed, led.Signals[0].CloseReason)
	assert.Equal(t, start.AddDate(0, 0, 70), *led.Signals[0].CloseDate)
}

func TestCloseExpired(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Improving forever after entry: only the holding horizon can close it.
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 40),
	)
	s := makeSeries("NVDA", start, phases, 102)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(100, 100), constPrices(100, 400)))

	require.Len(t, led.Signals, 1)
	sig := led.Signals[0]
	assert.Equal(t, contracts.CloseExpired, sig.CloseReason)
	assert.Equal(t, 31, sig.DaysActive, "closes the first day past the horizon")
	assert.Equal(t, start.AddDate(0, 0, 91), *sig.CloseDate)
}

func TestAtMostOneActivePerTicker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 10),
	)
	s := makeSeries("NVDA", start, phases, 102)

	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()
	require.NoError(t, tr.Replay(led, testInst, s, constPrices(70, 100), constPrices(70, 400)))

	assert.Equal(t, 1, led.ActiveCount())
	require.Len(t, led.Signals, 1)
}

func TestReturnComputation(t *testing.T) {
	tr := NewTracker(testCfg(), logger.NewNop())
	led := NewLedger()

	open := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tr.Step(led, testInst, Observation{
		Date: open, Price: 100, BenchPrice: 4000,
		Confirmed: contracts.PhaseImproving, PrevConfirmed: contracts.PhaseLagging,
		Momentum: 102,
	}))
	require.NoError(t, tr.Step(led, testInst, Observation{
		Date: open.AddDate(0, 0, 3), Price: 110, BenchPrice: 4080,
		Confirmed: contracts.PhaseImproving, PrevConfirmed: contracts.PhaseImproving,
		Momentum: 102,
	}))

	sig := led.Active("NVDA")
	require.NotNil(t, sig)
	assert.InDelta(t, 0.10, sig.ReturnAbs, 1e-9)
	assert.InDelta(t, 0.08, sig.ReturnVsBench, 1e-9)
	assert.Equal(t, 3, sig.DaysActive, "calendar days, not trading days")
}

func TestReplayIncrementalEquivalence(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	phases := repeatPhases(
		span(contracts.PhaseLagging, 60),
		span(contracts.PhaseImproving, 15),
		span(contracts.PhaseLeading, 15),
		span(contracts.PhaseLagging, 10),
	)
	full := makeSeries("NVDA", start, phases, 102)
	n := full.Len()

	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	bench := constPrices(n, 400)

	truncate := func(s *phase.Series, k int) *phase.Series {
		return &phase.Series{
			Symbol:    s.Symbol,
			Dates:     s.Dates[:k],
			Raw:       s.Raw[:k],
			Confirmed: s.Confirmed[:k],
			Ratio:     s.Ratio[:k],
			Momentum:  s.Momentum[:k],
		}
	}

	tr := NewTracker(testCfg(), logger.NewNop())

	// Walk every boundary: ledger replayed through day k then updated with
	// day k+1 must match a ledger replayed through day k+1.
	for k := 55; k < n; k++ {
		stepwise := NewLedger()
		require.NoError(t, tr.Replay(stepwise, testInst, truncate(full, k), prices[:k], bench[:k]))
		require.NoError(t, tr.Update(stepwise, testInst, truncate(full, k+1), prices[k], bench[k]))

		direct := NewLedger()
		require.NoError(t, tr.Replay(direct, testInst, truncate(full, k+1), prices[:k+1], bench[:k+1]))

		assert.Equal(t, direct.Signals, stepwise.Signals, "divergence at day %d", k)
	}
}
