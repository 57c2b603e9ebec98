package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeriesRejectsUnsortedDates(t *testing.T) {
	bars := []Bar{
		{Date: day(3), Close: 100},
		{Date: day(2), Close: 101},
	}
	_, err := NewPriceSeries("SPY", bars)
	require.Error(t, err)

	dup := []Bar{
		{Date: day(3), Close: 100},
		{Date: day(3), Close: 101},
	}
	_, err = NewPriceSeries("SPY", dup)
	require.Error(t, err, "duplicate dates rejected")
}

func TestAlignPair(t *testing.T) {
	a, err := NewPriceSeries("XLK", []Bar{
		{Date: day(1), Close: 10},
		{Date: day(2), Close: 11},
		{Date: day(4), Close: 12},
	})
	require.NoError(t, err)
	b, err := NewPriceSeries("SPY", []Bar{
		{Date: day(2), Close: 400},
		{Date: day(3), Close: 401},
		{Date: day(4), Close: 402},
	})
	require.NoError(t, err)

	alignedA, alignedB := AlignPair(a, b)
	assert.Equal(t, []float64{11, 12}, alignedA.Closes())
	assert.Equal(t, []float64{400, 402}, alignedB.Closes())
	assert.Equal(t, alignedA.Dates(), alignedB.Dates())
}

func TestReturns(t *testing.T) {
	s, err := NewPriceSeries("SPY", []Bar{
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 110},
		{Date: day(3), Close: 99},
	})
	require.NoError(t, err)

	rets := s.Returns()
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)
}

func TestHeadDropsTrailingBars(t *testing.T) {
	s, err := NewPriceSeries("SPY", []Bar{
		{Date: day(1), Close: 100},
		{Date: day(2), Close: 101},
		{Date: day(3), Close: 102},
	})
	require.NoError(t, err)

	trimmed := s.Head(1)
	assert.Equal(t, 2, trimmed.Len())
	last, ok := trimmed.Last()
	require.True(t, ok)
	assert.Equal(t, 101.0, last.Close)

	assert.Equal(t, 0, s.Head(5).Len(), "dropping more than exists empties")
	assert.Equal(t, 3, s.Head(0).Len(), "dropping nothing keeps every bar")
	assert.Equal(t, 3, s.Head(-1).Len())
}

func TestTrimPartialDay(t *testing.T) {
	build := func(lastVolA, lastVolB float64) *Frame {
		f := NewFrame()
		a, err := NewPriceSeries("XLK", []Bar{
			{Date: day(1), Close: 100, Volume: 1000},
			{Date: day(2), Close: 101, Volume: lastVolA},
		})
		require.NoError(t, err)
		b, err := NewPriceSeries("SPY", []Bar{
			{Date: day(1), Close: 400, Volume: 3000},
			{Date: day(2), Close: 401, Volume: lastVolB},
		})
		require.NoError(t, err)
		f.Series["XLK"] = a
		f.Series["SPY"] = b
		return f
	}

	// Average last-day volume 400 vs prior 2000: partial session.
	f := build(200, 600)
	dropped, trimmed := f.TrimPartialDay()
	require.True(t, trimmed)
	assert.Equal(t, day(2), dropped)
	for _, sym := range []string{"XLK", "SPY"} {
		s, ok := f.Get(sym)
		require.True(t, ok)
		assert.Equal(t, 1, s.Len())
		last, _ := s.Last()
		assert.Equal(t, day(1), last.Date)
	}

	// At exactly half the prior session the bar is kept.
	f = build(500, 1500)
	_, trimmed = f.TrimPartialDay()
	assert.False(t, trimmed)

	// Normal volume untouched.
	f = build(900, 3100)
	_, trimmed = f.TrimPartialDay()
	assert.False(t, trimmed)
	s, _ := f.Get("XLK")
	assert.Equal(t, 2, s.Len())
}

func TestTrimPartialDayTooShort(t *testing.T) {
	f := NewFrame()
	s, err := NewPriceSeries("SPY", []Bar{{Date: day(1), Close: 400, Volume: 10}})
	require.NoError(t, err)
	f.Series["SPY"] = s

	_, trimmed := f.TrimPartialDay()
	assert.False(t, trimmed, "single-bar series has no prior session to compare")
}

func TestFrameGet(t *testing.T) {
	f := NewFrame()
	_, ok := f.Get("SPY")
	assert.False(t, ok)
	assert.True(t, f.Empty())

	f.Series["SPY"] = &PriceSeries{Symbol: "SPY"}
	_, ok = f.Get("SPY")
	assert.False(t, ok, "a series without bars is unusable")

	s, err := NewPriceSeries("SPY", []Bar{{Date: day(1), Close: 100}})
	require.NoError(t, err)
	f.Series["SPY"] = s
	got, ok := f.Get("SPY")
	require.True(t, ok)
	assert.Equal(t, "SPY", got.Symbol)
	assert.False(t, f.Empty())
}
