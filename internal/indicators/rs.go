package indicators

import "math"

// NeutralRS is the undefined-value fallback for both RS axes; 100 is the
// benchmark-parity centerline.
const NeutralRS = 100.0

// RSPoint carries the latest RS pair plus the values from 5 trading days
// earlier, used for trend display. With fewer than 6 observations the
// previous values fall back to the current ones.
type RSPoint struct {
	Ratio        float64
	Momentum     float64
	RatioPrev    float64
	MomentumPrev float64
}

// RSSeries computes the full RS-Ratio and RS-Momentum series of an
// instrument against a reference, both centered on 100:
//
//	rs        = close / reference
//	rs_sma    = rolling_mean(rs, period)
//	rs_ratio  = rs / rs_sma * 100
//	rs_mom    = rs_ratio / shift(rs_ratio, period) * 100
//
// Inputs must already be aligned to common trading days. Entries without
// enough warmup are NaN: rs_ratio needs period observations, rs_momentum
// twice that.
func RSSeries(closes, reference []float64, period int) (ratio, momentum []float64) {
	n := len(closes)
	if len(reference) < n {
		n = len(reference)
	}

	ratio = nanSlice(n)
	momentum = nanSlice(n)
	if n == 0 || period <= 0 {
		return ratio, momentum
	}

	rs := make([]float64, n)
	for i := 0; i < n; i++ {
		if reference[i] == 0 {
			rs[i] = math.NaN()
			continue
		}
		rs[i] = closes[i] / reference[i]
	}

	// Rolling mean of rs over period; a NaN in the window poisons it.
	for i := period - 1; i < n; i++ {
		var sum float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(rs[j]) {
				ok = false
				break
			}
			sum += rs[j]
		}
		if !ok || sum == 0 {
			continue
		}
		sma := sum / float64(period)
		ratio[i] = rs[i] / sma * 100
	}

	for i := period; i < n; i++ {
		prev := ratio[i-period]
		if math.IsNaN(ratio[i]) || math.IsNaN(prev) || prev == 0 {
			continue
		}
		momentum[i] = ratio[i] / prev * 100
	}

	return ratio, momentum
}

// RSLatest reduces RSSeries output to the latest point with neutral
// fallbacks.
func RSLatest(closes, reference []float64, period int) RSPoint {
	ratio, momentum := RSSeries(closes, reference, period)

	p := RSPoint{
		Ratio:    lastOr(ratio, NeutralRS),
		Momentum: lastOr(momentum, NeutralRS),
	}

	p.RatioPrev = p.Ratio
	p.MomentumPrev = p.Momentum
	if len(ratio) >= 6 {
		if v := ratio[len(ratio)-6]; !math.IsNaN(v) {
			p.RatioPrev = v
		}
		if v := momentum[len(momentum)-6]; !math.IsNaN(v) {
			p.MomentumPrev = v
		}
	}

	return p
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func lastOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	v := values[len(values)-1]
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
