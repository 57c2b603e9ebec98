// Package indicators holds the stateless rolling-window computations behind
// phase classification and rotation scoring. Every function degrades to a
// documented neutral default on short or degenerate history; classification
// downstream must never stall on a data gap.
package indicators

import (
	"math"

	"github.com/rotationlab/backend/internal/marketdata"
)

// Neutral defaults returned when a value is undefined.
const (
	NeutralMFI         = 50.0
	NeutralCMF         = 0.0
	NeutralRSI         = 50.0
	NeutralVolumeRatio = 1.0
)

// MFI computes the latest Money Flow Index over the trailing period.
// Undefined values (short history, zero negative flow) map to 50.
func MFI(bars []marketdata.Bar, period int) float64 {
	if len(bars) < period+1 {
		return NeutralMFI
	}

	// Typical price and raw money flow per bar; the first bar has no delta.
	window := bars[len(bars)-period-1:]
	var posFlow, negFlow float64
	prevTP := (window[0].High + window[0].Low + window[0].Close) / 3

	for _, b := range window[1:] {
		tp := (b.High + b.Low + b.Close) / 3
		rmf := tp * b.Volume
		if tp > prevTP {
			posFlow += rmf
		} else if tp < prevTP {
			negFlow += rmf
		}
		prevTP = tp
	}

	if negFlow == 0 {
		return NeutralMFI
	}

	ratio := posFlow / negFlow
	return 100 - 100/(1+ratio)
}

// CMF computes the latest Chaikin Money Flow over the trailing period.
// A flat bar (high == low) has no close-location value; a window containing
// one is undefined and maps to 0.
func CMF(bars []marketdata.Bar, period int) float64 {
	if len(bars) < period {
		return NeutralCMF
	}

	window := bars[len(bars)-period:]
	var mfvSum, volSum float64
	for _, b := range window {
		hlRange := b.High - b.Low
		if hlRange == 0 {
			return NeutralCMF
		}
		mfm := ((b.Close - b.Low) - (b.High - b.Close)) / hlRange
		mfvSum += mfm * b.Volume
		volSum += b.Volume
	}

	if volSum == 0 {
		return NeutralCMF
	}
	return mfvSum / volSum
}

// RSI computes the latest Wilder relative strength index over the trailing
// period. Short history maps to 50, all-gain history to 100.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return NeutralRSI
	}

	// Seed with the simple average of the first period changes, then apply
	// Wilder smoothing across the rest of the history.
	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// TrendStrength fits an OLS line through the trailing period of closes and
// returns R² signed by the slope. Fewer than 5 points, a vertical-degenerate
// x spread or a flat series all yield 0.
func TrendStrength(closes []float64, period int) float64 {
	if len(closes) > period {
		closes = closes[len(closes)-period:]
	}
	n := len(closes)
	if n < 5 {
		return 0.0
	}

	var xMean, yMean float64
	for i, y := range closes {
		xMean += float64(i)
		yMean += y
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var ssXY, ssXX float64
	for i, y := range closes {
		dx := float64(i) - xMean
		ssXY += dx * (y - yMean)
		ssXX += dx * dx
	}
	if ssXX == 0 {
		return 0.0
	}
	slope := ssXY / ssXX
	intercept := yMean - slope*xMean

	var ssRes, ssTot float64
	for i, y := range closes {
		pred := slope*float64(i) + intercept
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - yMean) * (y - yMean)
	}
	if ssTot == 0 {
		return 0.0
	}

	r2 := math.Max(0, 1-ssRes/ssTot)
	if slope < 0 {
		return -r2
	}
	return r2
}

// VolumeRatio compares the latest volume against its trailing-period mean.
// Undefined ratios map to 1.
func VolumeRatio(bars []marketdata.Bar, period int) float64 {
	if len(bars) < period {
		return NeutralVolumeRatio
	}

	window := bars[len(bars)-period:]
	var sum float64
	for _, b := range window {
		sum += b.Volume
	}
	avg := sum / float64(period)
	if avg == 0 {
		return NeutralVolumeRatio
	}

	ratio := bars[len(bars)-1].Volume / avg
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return NeutralVolumeRatio
	}
	return ratio
}

// ReturnOver computes the simple return between the latest close and the
// close n-1 trading days earlier (the pandas iloc[-n] convention the rest of
// the pipeline is calibrated against). Short history yields 0.
func ReturnOver(closes []float64, n int) float64 {
	if n < 2 || len(closes) < n {
		return 0.0
	}
	base := closes[len(closes)-n]
	if base == 0 {
		return 0.0
	}
	return closes[len(closes)-1]/base - 1
}
