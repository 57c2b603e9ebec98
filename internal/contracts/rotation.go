package contracts

// RotationEdge is a scored, directed rotation pair: capital appears to be
// leaving Source (underperformer) for Target (outperformer). Transient; it is
// recomputed on every run and never persisted as lifecycle state.
type RotationEdge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceName string `json:"source_name"`
	TargetName string `json:"target_name"`

	// Score is the weighted composite; edges at or below the score floor
	// are dropped before ranking.
	Score float64 `json:"score"`

	// ReturnDivergence is the 5-day residual-return gap, in percent.
	ReturnDivergence float64 `json:"return_divergence"`

	VolumeConfirmed bool `json:"volume_confirmed"`
	CMFConfirmed    bool `json:"cmf_confirmed"`

	// Correlation of 20-day residual returns between the pair, for display.
	Correlation float64 `json:"correlation"`
}

// MarketState summarizes cross-sector co-movement.
type MarketState string

const (
	MarketNormal          MarketState = "normal"
	MarketHighCorrelation MarketState = "high_correlation"
)
