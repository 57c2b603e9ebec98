package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/indicators"
	"github.com/rotationlab/backend/internal/marketdata"
	"github.com/rotationlab/backend/internal/phase"
	"github.com/rotationlab/backend/internal/rotation"
	"github.com/rotationlab/backend/internal/signals"
)

// Sector-detail correlation lists keep only strong pairs, capped per sector.
const (
	minReportedCorrelation  = 0.4
	maxReportedCorrelations = 20
)

// buildSectorSnapshots classifies every sector ETF against the benchmark and
// assembles the display nodes plus the rotation-scoring inputs. A sector
// that cannot be classified is skipped with a warning, never fatal: one bad
// feed symbol must not take down the run.
func (p *Pipeline) buildSectorSnapshots(frame *marketdata.Frame, bench *marketdata.PriceSeries) ([]contracts.SectorSnapshot, []rotation.Candidate, map[string]contracts.PhaseKind, int) {
	var nodes []contracts.SectorSnapshot
	var candidates []rotation.Candidate
	phases := make(map[string]contracts.PhaseKind)
	skipped := 0

	asOf := lastDate(bench)
	for _, sector := range p.uni.Sectors() {
		ps, ok := frame.Get(sector.ETF)
		if !ok {
			p.log.WithField("symbol", sector.ETF).Warn("sector missing from fetched data")
			skipped++
			continue
		}
		ps = truncateAfter(ps, asOf)

		series, err := p.builder.Build(ps, bench)
		if err != nil {
			p.log.WithError(err).WithField("symbol", sector.ETF).Warn("sector skipped")
			skipped++
			continue
		}

		instr, ref := marketdata.AlignPair(ps, bench)
		closes := instr.Closes()
		refCloses := ref.Closes()
		returns := instr.Returns()
		benchReturns := ref.Returns()

		beta := indicators.Beta(returns, benchReturns, betaWindow)
		residuals := indicators.ResidualSeries(returns, benchReturns, beta)

		ret5 := indicators.ReturnOver(closes, 5)
		residual5 := ret5 - beta*indicators.ReturnOver(refCloses, 5)

		rp := indicators.RSLatest(closes, refCloses, p.builder.Window())
		confirmed := series.Confirmed[series.Len()-1]
		strength := p.classifier.GuardedStrength(rp.Ratio, rp.Momentum, ret5)
		prevStrength := phase.Strength(rp.RatioPrev, rp.MomentumPrev)

		bars := lastBars(instr, 30)
		mfi := indicators.MFI(bars, 14)
		cmf := indicators.CMF(bars, 21)
		volRatio := indicators.VolumeRatio(bars, 20)

		nodes = append(nodes, contracts.SectorSnapshot{
			ID:             sector.ETF,
			Name:           sector.Name,
			Color:          sector.Color,
			Weight:         sector.Weight,
			DailyReturn:    round5(dailyReturn(instr)),
			Return5D:       round5(ret5),
			Return20D:      round5(indicators.ReturnOver(closes, 20)),
			ResidualReturn: round5(residual5),
			VolumeRatio:    round3(volRatio),
			MFI:            round1(mfi),
			CMF:            round3(cmf),
			Trend:          round3(indicators.TrendStrength(closes, 20)),
			Phase:          confirmed,
			PhaseStrength:  round1(strength),
			PhaseDelta:     round1(strength - prevStrength),
			RSRatio:        round1(rp.Ratio),
			RSMomentum:     round1(rp.Momentum),
		})
		candidates = append(candidates, rotation.Candidate{
			Symbol:           sector.ETF,
			Name:             sector.Name,
			ResidualReturn5D: residual5,
			ResidualReturns:  residuals,
			CMF:              cmf,
			MFI:              mfi,
			VolumeRatio:      volRatio,
			Phase:            confirmed,
		})
		phases[sector.ETF] = confirmed
	}

	return nodes, candidates, phases, skipped
}

// stockState bundles what the ledger needs per constituent: the confirmed
// phase series and the instrument/benchmark closes aligned to its dates.
type stockState struct {
	inst        signals.Instrument
	series      *phase.Series
	prices      []float64
	benchPrices []float64
}

// buildStockSnapshots classifies every sector constituent, producing the
// per-sector detail reports, the fresh-entry feed, and the state the signal
// tracker consumes.
func (p *Pipeline) buildStockSnapshots(frame *marketdata.Frame, bench *marketdata.PriceSeries, runDate time.Time) ([]stockState, []contracts.FreshSignal, []*contracts.SectorDetail, int) {
	var states []stockState
	var fresh []contracts.FreshSignal
	var details []*contracts.SectorDetail
	skipped := 0

	benchByDate := closesByDate(bench)

	for _, sector := range p.uni.Sectors() {
		holdings := p.uni.Holdings(sector.ETF)
		if len(holdings) == 0 {
			continue
		}

		sectorRet5 := 0.0
		if sps, ok := frame.Get(sector.ETF); ok {
			sectorRet5 = indicators.ReturnOver(truncateAfter(sps, runDate).Closes(), 5)
		}

		detail := &contracts.SectorDetail{
			ETF:         sector.ETF,
			SectorName:  sector.Name,
			SectorColor: sector.Color,
			Date:        runDate.Format("2006-01-02"),
		}

		type stockCalc struct {
			snap      contracts.StockSnapshot
			dollarVol float64
			returns   []float64
		}
		var calcs []stockCalc

		for _, ticker := range holdings {
			ps, ok := frame.Get(ticker)
			if !ok {
				skipped++
				continue
			}
			ps = truncateAfter(ps, runDate)

			series, err := p.builder.Build(ps, bench)
			if err != nil {
				p.log.WithError(err).WithField("symbol", ticker).Debug("stock skipped")
				skipped++
				continue
			}

			instr, ref := marketdata.AlignPair(ps, bench)
			closes := instr.Closes()
			refCloses := ref.Closes()

			ret5 := indicators.ReturnOver(closes, 5)
			rp := indicators.RSLatest(closes, refCloses, p.builder.Window())
			confirmed := series.Confirmed[series.Len()-1]
			strength := p.classifier.GuardedStrength(rp.Ratio, rp.Momentum, ret5)
			prevStrength := phase.Strength(rp.RatioPrev, rp.MomentumPrev)

			relative := "laggard"
			if ret5 > sectorRet5 {
				relative = "leader"
			}

			daysInPhase := phase.DaysInCurrent(series.Confirmed)
			prevPhase := phase.Previous(series.Confirmed)

			snap := contracts.StockSnapshot{
				ID:             ticker,
				Name:           ticker,
				Return5D:       round5(ret5),
				Return20D:      round5(indicators.ReturnOver(closes, 20)),
				VolumeRatio:    round3(indicators.VolumeRatio(lastBars(instr, 30), 20)),
				Phase:          confirmed,
				PhaseStrength:  round1(strength),
				PhaseDelta:     round1(strength - prevStrength),
				RSRatio:        round1(rp.Ratio),
				RSMomentum:     round1(rp.Momentum),
				SectorRelative: relative,
				DaysInPhase:    daysInPhase,
				PreviousPhase:  prevPhase,
			}
			calcs = append(calcs, stockCalc{
				snap:      snap,
				dollarVol: avgDollarVolume(instr, 20),
				returns:   instr.Returns(),
			})

			// Recently advancing stocks feed the display and give operators
			// a preview of what the ledger may open next.
			advancing := confirmed.IsAcceleration() || confirmed.IsTerminal()
			if advancing && daysInPhase <= p.cfg.Signals.FreshMaxDaysInPhase {
				fresh = append(fresh, contracts.FreshSignal{
					Ticker:        ticker,
					Sector:        sector.ETF,
					SectorName:    sector.Name,
					Phase:         confirmed,
					PreviousPhase: prevPhase,
					DaysInPhase:   daysInPhase,
					Return5D:      round5(ret5),
					PhaseStrength: round1(strength),
					RSMomentum:    round1(rp.Momentum),
				})
			}

			prices, benchPrices, ok := alignToSeries(series, closesByDate(instr), benchByDate)
			if !ok {
				skipped++
				continue
			}
			states = append(states, stockState{
				inst: signals.Instrument{
					Ticker:     ticker,
					Sector:     sector.ETF,
					SectorName: sector.Name,
				},
				series:      series,
				prices:      prices,
				benchPrices: benchPrices,
			})
		}

		// Normalize the dollar-volume proxy to a 0..100 weight within the
		// sector so the display can size nodes without absolute volumes.
		maxVol := 0.0
		for _, c := range calcs {
			if c.dollarVol > maxVol {
				maxVol = c.dollarVol
			}
		}
		for i := range calcs {
			if maxVol > 0 {
				calcs[i].snap.Weight = round1(calcs[i].dollarVol / maxVol * 100)
			}
			detail.Stocks = append(detail.Stocks, calcs[i].snap)
		}

		// Only meaningful pairs make the report: weak correlations are noise
		// at display scale, and the list is capped at the strongest 20.
		var pairs []contracts.StockCorrelation
		for i := range calcs {
			for j := i + 1; j < len(calcs); j++ {
				corr := round3(indicators.Correlation(calcs[i].returns, calcs[j].returns, 20))
				if math.Abs(corr) <= minReportedCorrelation {
					continue
				}
				pairs = append(pairs, contracts.StockCorrelation{
					Source:      calcs[i].snap.ID,
					Target:      calcs[j].snap.ID,
					Correlation: corr,
				})
			}
		}
		sort.SliceStable(pairs, func(a, b int) bool {
			return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
		})
		if len(pairs) > maxReportedCorrelations {
			pairs = pairs[:maxReportedCorrelations]
		}
		detail.Correlations = pairs

		details = append(details, detail)
	}

	return states, fresh, details, skipped
}

func closesByDate(s *marketdata.PriceSeries) map[time.Time]float64 {
	dates := s.Dates()
	closes := s.Closes()
	m := make(map[time.Time]float64, len(dates))
	for i, d := range dates {
		m[d] = closes[i]
	}
	return m
}

// alignToSeries projects instrument and benchmark closes onto the phase
// series dates. Every classified day came from an aligned close, so a miss
// means the inputs drifted and the instrument cannot be tracked.
func alignToSeries(series *phase.Series, instrByDate, benchByDate map[time.Time]float64) ([]float64, []float64, bool) {
	prices := make([]float64, series.Len())
	benchPrices := make([]float64, series.Len())
	for i, d := range series.Dates {
		p, ok1 := instrByDate[d]
		b, ok2 := benchByDate[d]
		if !ok1 || !ok2 {
			return nil, nil, false
		}
		prices[i] = p
		benchPrices[i] = b
	}
	return prices, benchPrices, true
}

func lastBars(s *marketdata.PriceSeries, n int) []marketdata.Bar {
	bars := s.Bars
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars
}

func avgDollarVolume(s *marketdata.PriceSeries, n int) float64 {
	bars := lastBars(s, n)
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Close * b.Volume
	}
	return sum / float64(len(bars))
}
