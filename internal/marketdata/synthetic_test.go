package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticDeterministic(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	symbols := []string{"SPY", "XLK", "XLE"}

	a, err := NewSyntheticSource(42, asOf).Fetch(context.Background(), symbols, 120)
	require.NoError(t, err)
	b, err := NewSyntheticSource(42, asOf).Fetch(context.Background(), symbols, 120)
	require.NoError(t, err)

	for _, sym := range symbols {
		sa, ok := a.Get(sym)
		require.True(t, ok)
		sb, ok := b.Get(sym)
		require.True(t, ok)
		assert.Equal(t, sa.Bars, sb.Bars, "same seed reproduces %s exactly", sym)
	}

	c, err := NewSyntheticSource(43, asOf).Fetch(context.Background(), symbols, 120)
	require.NoError(t, err)
	sa, _ := a.Get("SPY")
	sc, _ := c.Get("SPY")
	assert.NotEqual(t, sa.Closes(), sc.Closes(), "different seed diverges")
}

func TestSyntheticSymbolOrderIndependent(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	fwd, err := NewSyntheticSource(7, asOf).Fetch(context.Background(), []string{"SPY", "XLK", "XLU"}, 60)
	require.NoError(t, err)
	rev, err := NewSyntheticSource(7, asOf).Fetch(context.Background(), []string{"XLU", "XLK", "SPY"}, 60)
	require.NoError(t, err)

	for _, sym := range []string{"SPY", "XLK", "XLU"} {
		a, ok := fwd.Get(sym)
		require.True(t, ok)
		b, ok := rev.Get(sym)
		require.True(t, ok)
		assert.Equal(t, a.Bars, b.Bars, "%s unaffected by request order", sym)
	}
}

func TestSyntheticSeriesValid(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	frame, err := NewSyntheticSource(1, asOf).Fetch(context.Background(), []string{"XLK"}, 252)
	require.NoError(t, err)

	s, ok := frame.Get("XLK")
	require.True(t, ok)
	assert.Equal(t, 252, s.Len())
	for _, b := range s.Bars {
		assert.Greater(t, b.Close, 0.0)
		assert.GreaterOrEqual(t, b.High, b.Low)
		assert.GreaterOrEqual(t, b.Volume, 0.0)
	}
	// Ordering invariant holds so NewPriceSeries would accept the bars.
	_, err = NewPriceSeries("XLK", s.Bars)
	assert.NoError(t, err)
}

func TestTradingDays(t *testing.T) {
	// 2026-08-28 is a Friday.
	asOf := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	days := TradingDays(asOf, 10)

	require.Len(t, days, 10)
	for i, d := range days {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
		if i > 0 {
			assert.True(t, d.After(days[i-1]), "chronological order")
		}
	}
	last := days[len(days)-1]
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), last, "ends at asOf, normalized to midnight")
	// Ten weekdays back from Friday lands on the prior-fortnight Monday.
	assert.Equal(t, time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC), days[0])
}

func TestTradingDaysSkipsWeekendAnchor(t *testing.T) {
	// 2026-08-30 is a Sunday; the window must end on the preceding Friday.
	asOf := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	days := TradingDays(asOf, 3)
	require.Len(t, days, 3)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), days[2])
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), days[0])
}
