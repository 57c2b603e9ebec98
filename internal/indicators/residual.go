package indicators

import "math"

// Beta estimates the rolling beta of an instrument's daily returns against
// benchmark returns over the trailing window (sample covariance over sample
// variance). Undefined estimates fall back to 1.
func Beta(returns, benchReturns []float64, window int) float64 {
	n := len(returns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n > window {
		returns = returns[len(returns)-window:]
		benchReturns = benchReturns[len(benchReturns)-window:]
		n = window
	}
	if n < 2 {
		return 1.0
	}

	var rMean, bMean float64
	for i := 0; i < n; i++ {
		rMean += returns[i]
		bMean += benchReturns[i]
	}
	rMean /= float64(n)
	bMean /= float64(n)

	var cov, bVar float64
	for i := 0; i < n; i++ {
		cov += (returns[i] - rMean) * (benchReturns[i] - bMean)
		bVar += (benchReturns[i] - bMean) * (benchReturns[i] - bMean)
	}
	cov /= float64(n - 1)
	bVar /= float64(n - 1)

	if bVar == 0 || math.IsNaN(bVar) {
		return 1.0
	}
	beta := cov / bVar
	if math.IsNaN(beta) {
		return 1.0
	}
	return beta
}

// ResidualSeries strips the beta-scaled benchmark component from a return
// series: resid[i] = returns[i] - beta*benchReturns[i].
func ResidualSeries(returns, benchReturns []float64, beta float64) []float64 {
	n := len(returns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = returns[i] - beta*benchReturns[i]
	}
	return out
}

// Correlation computes the Pearson correlation of the trailing window of two
// series. Undefined correlations (short or flat series) yield 0.
func Correlation(a, b []float64, window int) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n > window {
		a = a[len(a)-window:]
		b = b[len(b)-window:]
		n = window
	}
	if n < 2 {
		return 0.0
	}

	var aMean, bMean float64
	for i := 0; i < n; i++ {
		aMean += a[i]
		bMean += b[i]
	}
	aMean /= float64(n)
	bMean /= float64(n)

	var cov, aVar, bVar float64
	for i := 0; i < n; i++ {
		da := a[i] - aMean
		db := b[i] - bMean
		cov += da * db
		aVar += da * da
		bVar += db * db
	}
	if aVar == 0 || bVar == 0 {
		return 0.0
	}

	corr := cov / math.Sqrt(aVar*bVar)
	if math.IsNaN(corr) {
		return 0.0
	}
	return corr
}
