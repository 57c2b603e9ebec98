// Package phase turns relative-strength coordinates into momentum phases and
// runs the confirmation filter that makes the signal lifecycle stable.
package phase

import (
	"github.com/rotationlab/backend/internal/contracts"
)

// ClassifyQuadrant maps an RS pair to its quadrant. Both axes treat exactly
// 100 as the strong side.
func ClassifyQuadrant(rsRatio, rsMomentum float64) contracts.PhaseKind {
	switch {
	case rsRatio >= 100 && rsMomentum >= 100:
		return contracts.PhaseLeading
	case rsRatio < 100 && rsMomentum >= 100:
		return contracts.PhaseImproving
	case rsRatio >= 100 && rsMomentum < 100:
		return contracts.PhaseWeakening
	default:
		return contracts.PhaseLagging
	}
}

// Classifier applies the configured scheme, including the three-bucket
// downgrade guard on trailing 5-day return.
type Classifier struct {
	scheme contracts.PhaseScheme

	// returnGuard is the 5-day return below which an advancing
	// classification is downgraded (three-bucket scheme only).
	returnGuard float64

	// strengthCap limits the 0-100 phase strength of a guarded instrument.
	strengthCap float64
}

// NewClassifier builds a classifier for the given scheme. guard is the
// materially-negative 5-day return threshold, cap the guarded strength limit;
// both are ignored by the quadrant scheme.
func NewClassifier(scheme contracts.PhaseScheme, guard, cap float64) *Classifier {
	return &Classifier{
		scheme:      scheme,
		returnGuard: guard,
		strengthCap: cap,
	}
}

// Classify maps one day's RS pair to a phase.
func (c *Classifier) Classify(rsRatio, rsMomentum, return5D float64) contracts.PhaseKind {
	quadrant := ClassifyQuadrant(rsRatio, rsMomentum)
	if c.scheme != contracts.SchemeThreeBucket {
		return quadrant
	}

	switch quadrant {
	case contracts.PhaseLeading, contracts.PhaseImproving:
		if return5D < c.returnGuard {
			// An instrument losing ground outright cannot be positive.
			return contracts.PhaseFading
		}
		return contracts.PhasePositive
	case contracts.PhaseWeakening:
		return contracts.PhaseFading
	default:
		return contracts.PhaseNegative
	}
}

// Strength computes the 0-100 phase strength composite of the two RS axes.
func Strength(rsRatio, rsMomentum float64) float64 {
	v := ((rsRatio - 95) + (rsMomentum - 95)) / 20 * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// GuardedStrength applies the three-bucket strength cap when the return
// guard fires.
func (c *Classifier) GuardedStrength(rsRatio, rsMomentum, return5D float64) float64 {
	s := Strength(rsRatio, rsMomentum)
	if c.scheme == contracts.SchemeThreeBucket && return5D < c.returnGuard && s > c.strengthCap {
		return c.strengthCap
	}
	return s
}
