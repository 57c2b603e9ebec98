package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotationlab/backend/internal/marketdata"
)

func bar(high, low, close, volume float64) marketdata.Bar {
	return marketdata.Bar{Date: time.Now(), High: high, Low: low, Close: close, Volume: volume}
}

func TestMFI(t *testing.T) {
	t.Run("short history is neutral", func(t *testing.T) {
		bars := []marketdata.Bar{bar(10, 9, 10, 100)}
		assert.Equal(t, NeutralMFI, MFI(bars, 14))
	})

	t.Run("zero negative flow is neutral", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(10, 10, 10, 100),
			bar(11, 11, 11, 100),
			bar(12, 12, 12, 100),
		}
		assert.Equal(t, NeutralMFI, MFI(bars, 2))
	})

	t.Run("mixed flow", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(10, 10, 10, 100),
			bar(20, 20, 20, 100),
			bar(10, 10, 10, 100),
		}
		// posFlow 2000, negFlow 1000, ratio 2 -> 100 - 100/3
		assert.InDelta(t, 66.6667, MFI(bars, 2), 1e-3)
	})
}

func TestCMF(t *testing.T) {
	t.Run("flat bar in window is neutral", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(10, 10, 10, 100),
			bar(11, 9, 10, 100),
		}
		assert.Equal(t, NeutralCMF, CMF(bars, 2))
	})

	t.Run("accumulation", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(10, 0, 10, 100), // close at the high: mfm +1
			bar(10, 0, 5, 100),  // mid close: mfm 0
		}
		assert.InDelta(t, 0.5, CMF(bars, 2), 1e-9)
	})

	t.Run("short history is neutral", func(t *testing.T) {
		assert.Equal(t, NeutralCMF, CMF(nil, 21))
	})
}

func TestRSI(t *testing.T) {
	t.Run("short history is neutral", func(t *testing.T) {
		assert.Equal(t, NeutralRSI, RSI([]float64{100, 101}, 14))
	})

	t.Run("all gains saturate", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		assert.Equal(t, 100.0, RSI(closes, 14))
	})

	t.Run("all losses hit zero", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}
		assert.InDelta(t, 0.0, RSI(closes, 14), 1e-9)
	})
}

func TestTrendStrength(t *testing.T) {
	t.Run("perfect uptrend", func(t *testing.T) {
		closes := []float64{1, 2, 3, 4, 5, 6}
		assert.InDelta(t, 1.0, TrendStrength(closes, 20), 1e-9)
	})

	t.Run("perfect downtrend", func(t *testing.T) {
		closes := []float64{6, 5, 4, 3, 2, 1}
		assert.InDelta(t, -1.0, TrendStrength(closes, 20), 1e-9)
	})

	t.Run("flat series", func(t *testing.T) {
		closes := []float64{5, 5, 5, 5, 5, 5}
		assert.Equal(t, 0.0, TrendStrength(closes, 20))
	})

	t.Run("too few points", func(t *testing.T) {
		assert.Equal(t, 0.0, TrendStrength([]float64{1, 2, 3, 4}, 20))
	})
}

func TestVolumeRatio(t *testing.T) {
	t.Run("steady volume", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(1, 1, 1, 100), bar(1, 1, 1, 100),
			bar(1, 1, 1, 100), bar(1, 1, 1, 100),
		}
		assert.InDelta(t, 1.0, VolumeRatio(bars, 4), 1e-9)
	})

	t.Run("volume spike", func(t *testing.T) {
		bars := []marketdata.Bar{
			bar(1, 1, 1, 100), bar(1, 1, 1, 100),
			bar(1, 1, 1, 100), bar(1, 1, 1, 300),
		}
		assert.InDelta(t, 2.0, VolumeRatio(bars, 4), 1e-9)
	})

	t.Run("short history is neutral", func(t *testing.T) {
		assert.Equal(t, NeutralVolumeRatio, VolumeRatio(nil, 20))
	})
}

func TestReturnOver(t *testing.T) {
	closes := []float64{100, 105, 110}

	assert.InDelta(t, 0.10, ReturnOver(closes, 3), 1e-9)
	assert.InDelta(t, 110.0/105.0-1, ReturnOver(closes, 2), 1e-9)
	assert.Equal(t, 0.0, ReturnOver(closes, 4), "short history")
	assert.Equal(t, 0.0, ReturnOver(closes, 1))
}

func TestRSSeries(t *testing.T) {
	t.Run("parity series centers on 100", func(t *testing.T) {
		n := 12
		closes := make([]float64, n)
		ref := make([]float64, n)
		for i := range closes {
			closes[i] = 100
			ref[i] = 50
		}
		ratio, momentum := RSSeries(closes, ref, 5)
		require.Len(t, ratio, n)

		assert.True(t, math.IsNaN(ratio[3]), "ratio needs a full window")
		assert.InDelta(t, 100.0, ratio[4], 1e-9)
		assert.True(t, math.IsNaN(momentum[8]), "momentum needs a shifted ratio")
		assert.InDelta(t, 100.0, momentum[9], 1e-9)
	})

	t.Run("outperformer reads above 100", func(t *testing.T) {
		n := 30
		closes := make([]float64, n)
		ref := make([]float64, n)
		for i := range closes {
			closes[i] = 100 * math.Pow(1.01, float64(i))
			ref[i] = 100
		}
		ratio, momentum := RSSeries(closes, ref, 5)
		assert.Greater(t, ratio[n-1], 100.0)
		assert.Greater(t, momentum[n-1], 100.0)
	})
}

func TestRSLatest(t *testing.T) {
	t.Run("empty falls back to neutral", func(t *testing.T) {
		p := RSLatest(nil, nil, 5)
		assert.Equal(t, NeutralRS, p.Ratio)
		assert.Equal(t, NeutralRS, p.Momentum)
		assert.Equal(t, p.Ratio, p.RatioPrev)
	})

	t.Run("prev values come from five days back", func(t *testing.T) {
		n := 40
		closes := make([]float64, n)
		ref := make([]float64, n)
		for i := range closes {
			closes[i] = 100 * math.Pow(1.01, float64(i))
			ref[i] = 100
		}
		p := RSLatest(closes, ref, 5)
		ratio, _ := RSSeries(closes, ref, 5)
		assert.InDelta(t, ratio[n-6], p.RatioPrev, 1e-9)
		assert.NotEqual(t, p.Ratio, p.RatioPrev)
	})
}

func TestBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, -0.005, 0.02, -0.01}
	doubled := make([]float64, len(bench))
	for i, v := range bench {
		doubled[i] = 2 * v
	}

	assert.InDelta(t, 2.0, Beta(doubled, bench, 60), 1e-9)
	assert.Equal(t, 1.0, Beta([]float64{0.01}, []float64{0.01}, 60), "short history falls back")
	assert.Equal(t, 1.0, Beta(bench, []float64{0, 0, 0, 0, 0, 0}, 60), "flat benchmark falls back")
}

func TestResidualSeries(t *testing.T) {
	resid := ResidualSeries([]float64{0.02, 0.03}, []float64{0.01, 0.01}, 2.0)
	require.Len(t, resid, 2)
	assert.InDelta(t, 0.0, resid[0], 1e-9)
	assert.InDelta(t, 0.01, resid[1], 1e-9)
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	inv := []float64{5, 4, 3, 2, 1}

	assert.InDelta(t, 1.0, Correlation(a, b, 20), 1e-9)
	assert.InDelta(t, -1.0, Correlation(a, inv, 20), 1e-9)
	assert.Equal(t, 0.0, Correlation(a, []float64{3, 3, 3, 3, 3}, 20), "flat series undefined")
	assert.Equal(t, 0.0, Correlation([]float64{1}, []float64{1}, 20), "short series undefined")
}
