package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotationlab/backend/internal/contracts"
)

func TestInferRiskOn(t *testing.T) {
	d := NewDetector(0.3)
	phases := map[string]contracts.PhaseKind{
		"XLK": contracts.PhaseLeading,
		"XLY": contracts.PhaseImproving,
		"XLC": contracts.PhaseLeading,
		"XLP": contracts.PhaseLagging,
		"XLU": contracts.PhaseLagging,
		"XLV": contracts.PhaseWeakening,
	}

	call := d.Infer(phases)
	assert.Equal(t, contracts.RegimeRiskOn, call.Regime)
	assert.InDelta(t, 1.0, call.Confidence, 1e-9, "perfect fingerprint match")
	assert.NotEmpty(t, call.Label)
}

func TestInferRiskOff(t *testing.T) {
	d := NewDetector(0.3)
	phases := map[string]contracts.PhaseKind{
		"XLK": contracts.PhaseLagging,
		"XLY": contracts.PhaseLagging,
		"XLC": contracts.PhaseWeakening,
		"XLP": contracts.PhaseLeading,
		"XLU": contracts.PhaseLeading,
		"XLV": contracts.PhaseImproving,
	}
	assert.Equal(t, contracts.RegimeRiskOff, d.Infer(phases).Regime)
}

func TestInferMixedOnSplitTape(t *testing.T) {
	d := NewDetector(0.3)
	// Alternating leadership matches no fingerprint well.
	phases := map[string]contracts.PhaseKind{
		"XLK": contracts.PhaseLeading,
		"XLY": contracts.PhaseLagging,
		"XLC": contracts.PhaseLeading,
		"XLP": contracts.PhaseLeading,
		"XLU": contracts.PhaseLagging,
		"XLV": contracts.PhaseLeading,
		"XLE": contracts.PhaseLagging,
		"XLF": contracts.PhaseLeading,
		"XLI": contracts.PhaseLagging,
	}
	call := d.Infer(phases)
	if call.Regime != contracts.RegimeMixed {
		// Whatever wins a split tape cannot be a confident call.
		assert.Less(t, call.Confidence, 0.6)
	}
}

func TestInferEmptyPhases(t *testing.T) {
	d := NewDetector(0.3)
	call := d.Infer(nil)
	assert.Equal(t, contracts.RegimeMixed, call.Regime)
	assert.Zero(t, call.Confidence)
}

func TestInferConfidenceFloor(t *testing.T) {
	// With a high floor even a perfect risk-on tape degrades to mixed.
	d := NewDetector(1.1)
	phases := map[string]contracts.PhaseKind{
		"XLK": contracts.PhaseLeading,
		"XLP": contracts.PhaseLagging,
	}
	assert.Equal(t, contracts.RegimeMixed, d.Infer(phases).Regime)
}

func TestInferThreeBucketPhases(t *testing.T) {
	d := NewDetector(0.3)
	phases := map[string]contracts.PhaseKind{
		"XLE": contracts.PhasePositive,
		"XLF": contracts.PhasePositive,
		"XLI": contracts.PhasePositive,
		"XLB": contracts.PhasePositive,
		"XLK": contracts.PhaseNegative,
		"XLU": contracts.PhaseFading,
	}
	assert.Equal(t, contracts.RegimeReflation, d.Infer(phases).Regime)
}
