package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotationlab/backend/internal/contracts"
)

func TestClassifyQuadrant(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		momentum float64
		want     contracts.PhaseKind
	}{
		{"both strong", 102, 103, contracts.PhaseLeading},
		{"momentum only", 98, 103, contracts.PhaseImproving},
		{"ratio only", 102, 97, contracts.PhaseWeakening},
		{"both weak", 98, 97, contracts.PhaseLagging},
		{"exact centerline is strong", 100, 100, contracts.PhaseLeading},
		{"ratio at boundary", 100, 99.999, contracts.PhaseWeakening},
		{"momentum at boundary", 99.999, 100, contracts.PhaseImproving},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyQuadrant(tt.ratio, tt.momentum))
		})
	}
}

func TestClassifyQuadrantTotal(t *testing.T) {
	// Every finite RS pair maps to a valid phase.
	for _, r := range []float64{80, 99.99, 100, 100.01, 120} {
		for _, m := range []float64{80, 99.99, 100, 100.01, 120} {
			assert.True(t, ClassifyQuadrant(r, m).Valid())
		}
	}
}

func TestClassifierThreeBucket(t *testing.T) {
	c := NewClassifier(contracts.SchemeThreeBucket, -0.02, 50)

	t.Run("advancing maps to positive", func(t *testing.T) {
		assert.Equal(t, contracts.PhasePositive, c.Classify(102, 103, 0.01))
		assert.Equal(t, contracts.PhasePositive, c.Classify(98, 103, 0.0))
	})

	t.Run("return guard downgrades an advancer", func(t *testing.T) {
		assert.Equal(t, contracts.PhaseFading, c.Classify(102, 103, -0.03))
	})

	t.Run("guard boundary is exclusive", func(t *testing.T) {
		assert.Equal(t, contracts.PhasePositive, c.Classify(102, 103, -0.02))
	})

	t.Run("weakening maps to fading", func(t *testing.T) {
		assert.Equal(t, contracts.PhaseFading, c.Classify(102, 97, 0.01))
	})

	t.Run("lagging maps to negative", func(t *testing.T) {
		assert.Equal(t, contracts.PhaseNegative, c.Classify(98, 97, 0.01))
	})
}

func TestClassifierQuadrantIgnoresGuard(t *testing.T) {
	c := NewClassifier(contracts.SchemeQuadrant, -0.02, 50)
	assert.Equal(t, contracts.PhaseLeading, c.Classify(102, 103, -0.10))
}

func TestStrength(t *testing.T) {
	assert.InDelta(t, 50.0, Strength(100, 100), 1e-9)
	assert.Equal(t, 100.0, Strength(110, 110), "clipped high")
	assert.Equal(t, 0.0, Strength(90, 90), "clipped low")
}

func TestGuardedStrength(t *testing.T) {
	c := NewClassifier(contracts.SchemeThreeBucket, -0.02, 50)

	assert.Equal(t, 50.0, c.GuardedStrength(110, 110, -0.05), "capped when guard fires")
	assert.Equal(t, 100.0, c.GuardedStrength(110, 110, 0.01), "uncapped otherwise")

	q := NewClassifier(contracts.SchemeQuadrant, -0.02, 50)
	assert.Equal(t, 100.0, q.GuardedStrength(110, 110, -0.05), "quadrant never caps")
}
