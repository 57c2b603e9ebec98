package contracts

// PhaseKind is a relative-strength momentum phase.
//
// The quadrant scheme uses Leading/Improving/Weakening/Lagging; the
// three-bucket scheme uses Positive/Fading/Negative. A preset selects one
// scheme, never both in the same run.
type PhaseKind string

const (
	// Quadrant scheme (RS-Ratio x RS-Momentum around 100)
	PhaseLeading   PhaseKind = "leading"
	PhaseImproving PhaseKind = "improving"
	PhaseWeakening PhaseKind = "weakening"
	PhaseLagging   PhaseKind = "lagging"

	// Three-bucket scheme
	PhasePositive PhaseKind = "positive"
	PhaseFading   PhaseKind = "fading"
	PhaseNegative PhaseKind = "negative"
)

// IsAcceleration reports whether the phase is the signal-entry phase.
func (p PhaseKind) IsAcceleration() bool {
	return p == PhaseImproving || p == PhasePositive
}

// IsTerminal reports whether the phase confirms a completed rotation.
func (p PhaseKind) IsTerminal() bool {
	return p == PhaseLeading
}

// IsWeak reports whether the phase invalidates an open signal.
func (p PhaseKind) IsWeak() bool {
	switch p {
	case PhaseWeakening, PhaseLagging, PhaseFading, PhaseNegative:
		return true
	}
	return false
}

// Valid reports whether the value is one of the defined phases.
func (p PhaseKind) Valid() bool {
	switch p {
	case PhaseLeading, PhaseImproving, PhaseWeakening, PhaseLagging,
		PhasePositive, PhaseFading, PhaseNegative:
		return true
	}
	return false
}

// PhaseScheme selects the classification scheme.
type PhaseScheme string

const (
	SchemeQuadrant    PhaseScheme = "quadrant"
	SchemeThreeBucket PhaseScheme = "three_bucket"
)
