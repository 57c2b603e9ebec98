package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotationlab/backend/internal/contracts"
)

func openSignal(t *testing.T, ticker string, openDate time.Time) *contracts.Signal {
	t.Helper()
	sig, err := contracts.NewSignal(ticker, "XLK", "Technology", openDate, 100, 400, contracts.PhaseImproving)
	require.NoError(t, err)
	return sig
}

func closedSignal(t *testing.T, ticker string, openDate, closeDate time.Time, vsBench float64) *contracts.Signal {
	t.Helper()
	sig := openSignal(t, ticker, openDate)
	sig.ReturnVsBench = vsBench
	require.NoError(t, sig.Close(closeDate, contracts.CloseConfirmed))
	return sig
}

func TestLedgerSortOrder(t *testing.T) {
	d := func(day int) time.Time {
		return time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
	}

	led := NewLedger()
	led.Add(closedSignal(t, "OLD", d(1), d(5), 0.01))
	led.Add(openSignal(t, "AAA", d(10)))
	led.Add(closedSignal(t, "NEW", d(2), d(12), -0.01))
	led.Add(openSignal(t, "BBB", d(20)))
	led.Sort()

	var order []string
	for _, s := range led.Signals {
		order = append(order, s.Ticker)
	}
	// Active newest open first, then closed newest close first.
	assert.Equal(t, []string{"BBB", "AAA", "NEW", "OLD"}, order)
}

func TestLedgerPrune(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	led := NewLedger()

	stale := closedSignal(t, "STALE", asOf.AddDate(0, 0, -90), asOf.AddDate(0, 0, -61), 0.01)
	edge := closedSignal(t, "EDGE", asOf.AddDate(0, 0, -90), asOf.AddDate(0, 0, -60), 0.01)
	activeOld := openSignal(t, "HELD", asOf.AddDate(0, 0, -90))
	led.Add(stale)
	led.Add(edge)
	led.Add(activeOld)

	dropped := led.Prune(asOf, 60)

	assert.Equal(t, 1, dropped)
	require.Len(t, led.Signals, 2)
	assert.Equal(t, "EDGE", led.Signals[0].Ticker, "exactly at retention is kept")
	assert.Equal(t, "HELD", led.Signals[1].Ticker, "active signals never pruned")
}

func TestLedgerStats(t *testing.T) {
	d := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	led := NewLedger()
	led.Add(openSignal(t, "A", d))
	led.Add(closedSignal(t, "B", d, d.AddDate(0, 0, 5), 0.02))
	led.Add(closedSignal(t, "C", d, d.AddDate(0, 0, 5), -0.01))
	led.Add(closedSignal(t, "D", d, d.AddDate(0, 0, 5), 0.03))

	st := led.Stats()
	assert.Equal(t, 1, st.Active)
	assert.Equal(t, 3, st.Closed)
	assert.Equal(t, 2, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.InDelta(t, 2.0/3.0, st.WinRate, 1e-9)
}

func TestLedgerActive(t *testing.T) {
	d := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	led := NewLedger()
	led.Add(closedSignal(t, "A", d, d.AddDate(0, 0, 3), 0.01))
	led.Add(openSignal(t, "A", d.AddDate(0, 0, 10)))

	sig := led.Active("A")
	require.NotNil(t, sig)
	assert.True(t, sig.IsActive())
	assert.Nil(t, led.Active("ZZZ"))
}

func TestNeedsReplay(t *testing.T) {
	d := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("nil and empty", func(t *testing.T) {
		var nilLed *Ledger
		assert.True(t, nilLed.NeedsReplay())
		assert.True(t, NewLedger().NeedsReplay())
	})

	t.Run("all active with zero days held", func(t *testing.T) {
		led := NewLedger()
		led.Add(openSignal(t, "A", d))
		led.Add(openSignal(t, "B", d))
		assert.True(t, led.NeedsReplay())
	})

	t.Run("marked ledger is healthy", func(t *testing.T) {
		led := NewLedger()
		sig := openSignal(t, "A", d)
		sig.DaysActive = 4
		led.Add(sig)
		assert.False(t, led.NeedsReplay())
	})

	t.Run("closed history is healthy", func(t *testing.T) {
		led := NewLedger()
		led.Add(closedSignal(t, "A", d, d.AddDate(0, 0, 5), 0.01))
		led.Add(openSignal(t, "B", d.AddDate(0, 0, 10)))
		assert.False(t, led.NeedsReplay())
	})

	t.Run("corrupt entries force replay", func(t *testing.T) {
		led := NewLedger()
		led.Add(&contracts.Signal{Ticker: "", OpenPrice: 100})
		assert.True(t, led.NeedsReplay())
	})
}
