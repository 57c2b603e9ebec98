// Package regime infers the prevailing market regime from which sectors
// lead and which lag. Each candidate regime has a fingerprint of expected
// leaders and laggards; the observed phase map votes for or against each
// fingerprint and the best-supported regime wins, unless support is too
// thin to call anything but mixed.
package regime

import (
	"math"
	"sort"

	"github.com/rotationlab/backend/internal/contracts"
)

// profile is one regime's expected sector behavior.
type profile struct {
	regime   contracts.RegimeKind
	label    string
	leaders  []string
	laggards []string
}

// Sector fingerprints per regime. Leaders are sectors expected in strong
// phases, laggards expected weak.
var profiles = []profile{
	{
		regime:   contracts.RegimeRiskOn,
		label:    "Risk-on: growth and cyclicals leading defensives",
		leaders:  []string{"XLK", "XLY", "XLC"},
		laggards: []string{"XLP", "XLU", "XLV"},
	},
	{
		regime:   contracts.RegimeRiskOff,
		label:    "Risk-off: defensives leading growth",
		leaders:  []string{"XLP", "XLU", "XLV"},
		laggards: []string{"XLK", "XLY", "XLC"},
	},
	{
		regime:   contracts.RegimeReflation,
		label:    "Reflation: energy, financials and materials leading",
		leaders:  []string{"XLE", "XLF", "XLI", "XLB"},
		laggards: []string{"XLK", "XLU"},
	},
	{
		regime:   contracts.RegimeLateCycle,
		label:    "Late cycle: energy and defensives leading cyclicals",
		leaders:  []string{"XLE", "XLP", "XLU"},
		laggards: []string{"XLY", "XLF", "XLI"},
	},
}

// Detector scores regime profiles against observed sector phases.
type Detector struct {
	confidenceFloor float64
}

// NewDetector builds a detector. Calls scoring below the floor degrade to
// mixed.
func NewDetector(confidenceFloor float64) *Detector {
	return &Detector{confidenceFloor: confidenceFloor}
}

// Infer picks the regime best supported by the confirmed sector phases.
//
// A leader in a non-weak phase is a match, a leader gone weak is a
// contradiction, and symmetrically for laggards. Contradictions cost half a
// match: a regime can survive one sector out of character but not a split
// tape. Confidence is the normalized net score of the winner.
func (d *Detector) Infer(phases map[string]contracts.PhaseKind) contracts.RegimeCall {
	best := contracts.RegimeCall{Regime: contracts.RegimeMixed, Label: "Mixed: no dominant rotation pattern"}
	if len(phases) == 0 {
		return best
	}

	type scored struct {
		p     profile
		score float64
	}
	results := make([]scored, 0, len(profiles))
	for _, p := range profiles {
		results = append(results, scored{p: p, score: d.score(p, phases)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	top := results[0]
	if top.score < d.confidenceFloor {
		return best
	}
	return contracts.RegimeCall{
		Regime:     top.p.regime,
		Label:      top.p.label,
		Confidence: math.Round(top.score*1e3) / 1e3,
	}
}

func (d *Detector) score(p profile, phases map[string]contracts.PhaseKind) float64 {
	var matches, contradictions, observed float64
	for _, sym := range p.leaders {
		ph, ok := phases[sym]
		if !ok {
			continue
		}
		observed++
		if ph.IsWeak() {
			contradictions++
		} else {
			matches++
		}
	}
	for _, sym := range p.laggards {
		ph, ok := phases[sym]
		if !ok {
			continue
		}
		observed++
		if ph.IsWeak() {
			matches++
		} else {
			contradictions++
		}
	}
	if observed == 0 {
		return 0
	}
	score := (matches - 0.5*contradictions) / observed
	if score < 0 {
		return 0
	}
	return score
}
