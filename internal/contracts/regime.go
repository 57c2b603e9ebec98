package contracts

// RegimeKind names an aggregate sector-leadership pattern.
type RegimeKind string

const (
	RegimeRiskOn    RegimeKind = "risk_on"
	RegimeRiskOff   RegimeKind = "risk_off"
	RegimeReflation RegimeKind = "reflation"
	RegimeLateCycle RegimeKind = "late_cycle"
	// RegimeMixed is reported when no profile clears the confidence floor.
	RegimeMixed RegimeKind = "mixed"
)

// RegimeCall is the classified market regime for one run.
type RegimeCall struct {
	Regime     RegimeKind `json:"regime"`
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"` // 0..1
}
