// Package rotation scores pairwise capital flow between sectors. A rotation
// edge says money is leaving the source sector for the target: the target's
// beta-adjusted 5-day return leads the source's by a material gap, ideally
// with money-flow and volume confirmation.
package rotation

import (
	"math"
	"sort"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/internal/indicators"
	"github.com/rotationlab/backend/internal/preset"
)

// Composite score weights. Return divergence dominates; flow and volume
// confirmations add conviction rather than drive the ranking.
const (
	weightReturn = 0.35
	weightCMF    = 0.30
	weightMFI    = 0.20
	weightVolume = 0.15
)

// Candidate is one sector's inputs to pairwise scoring.
type Candidate struct {
	Symbol string
	Name   string

	// ResidualReturn5D is the trailing 5-day return with the beta-scaled
	// benchmark move removed.
	ResidualReturn5D float64

	// ResidualReturns is the daily residual return series, newest last,
	// used for pairwise correlation.
	ResidualReturns []float64

	CMF         float64
	MFI         float64
	VolumeRatio float64

	Phase contracts.PhaseKind
}

// Scorer ranks sector pairs by rotation evidence.
type Scorer struct {
	cfg preset.Rotation
}

// NewScorer builds a scorer from preset tuning.
func NewScorer(cfg preset.Rotation) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates every ordered sector pair and returns the strongest edges,
// at most TopK, sorted by score descending then source symbol for
// deterministic output.
func (s *Scorer) Score(candidates []Candidate) []contracts.RotationEdge {
	var edges []contracts.RotationEdge
	for _, src := range candidates {
		for _, tgt := range candidates {
			if src.Symbol == tgt.Symbol {
				continue
			}
			if edge, ok := s.scorePair(src, tgt); ok {
				edges = append(edges, edge)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	if len(edges) > s.cfg.TopK {
		edges = edges[:s.cfg.TopK]
	}
	return edges
}

// scorePair scores capital flowing from src into tgt. The pair qualifies
// when the target's residual return leads the source's by at least the
// divergence floor and at least one confirmation backs it.
func (s *Scorer) scorePair(src, tgt Candidate) (contracts.RotationEdge, bool) {
	retDiv := tgt.ResidualReturn5D - src.ResidualReturn5D
	if retDiv < s.cfg.MinDivergence {
		return contracts.RotationEdge{}, false
	}

	cmfDiv := tgt.CMF - src.CMF
	mfiDiv := (tgt.MFI - src.MFI) / 100
	cmfConfirmed := tgt.CMF > 0 && cmfDiv > 0
	volConfirmed := math.Max(tgt.VolumeRatio, src.VolumeRatio) >= 1.0
	// Divergence alone is not evidence of rotation; at least one flow or
	// volume confirmation has to back it.
	if !cmfConfirmed && !volConfirmed {
		return contracts.RotationEdge{}, false
	}

	score := retDiv * 100 * weightReturn
	if cmfConfirmed {
		score += math.Max(0, cmfDiv) * weightCMF
	}
	score += math.Max(0, mfiDiv) * weightMFI
	if volConfirmed {
		score += (tgt.VolumeRatio + src.VolumeRatio) / 2 * weightVolume
	}
	if score <= s.cfg.ScoreFloor {
		return contracts.RotationEdge{}, false
	}

	return contracts.RotationEdge{
		Source:           src.Symbol,
		Target:           tgt.Symbol,
		SourceName:       src.Name,
		TargetName:       tgt.Name,
		Score:            round3(score),
		ReturnDivergence: round3(retDiv * 100),
		VolumeConfirmed:  volConfirmed,
		CMFConfirmed:     cmfConfirmed,
		Correlation:      round3(indicators.Correlation(src.ResidualReturns, tgt.ResidualReturns, s.cfg.CorrelationWindow)),
	}, true
}

// MarketState classifies the tape by average pairwise residual correlation.
// When sectors move in lockstep, pairwise divergence stops meaning rotation
// and starts meaning noise.
func (s *Scorer) MarketState(candidates []Candidate) (contracts.MarketState, float64) {
	var sum float64
	var n int
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			sum += indicators.Correlation(candidates[i].ResidualReturns, candidates[j].ResidualReturns, s.cfg.CorrelationWindow)
			n++
		}
	}
	if n == 0 {
		return contracts.MarketNormal, 0
	}
	avg := sum / float64(n)
	if avg > s.cfg.HighCorrelation {
		return contracts.MarketHighCorrelation, round3(avg)
	}
	return contracts.MarketNormal, round3(avg)
}

func round3(v float64) float64 { return math.Round(v*1e3) / 1e3 }
