package contracts

import "time"

// SectorSnapshot is the per-sector indicator/phase record produced on each
// run, consumed by the display and narrative layers.
type SectorSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"` // index weight, percent

	DailyReturn    float64 `json:"daily_return"`
	Return5D       float64 `json:"return_5d"`
	Return20D      float64 `json:"return_20d"`
	ResidualReturn float64 `json:"residual_return"` // 5d, beta-adjusted

	VolumeRatio float64 `json:"volume_ratio"`
	MFI         float64 `json:"mfi"`
	CMF         float64 `json:"cmf"`
	Trend       float64 `json:"trend"` // signed R² of 20d OLS fit

	Phase         PhaseKind `json:"momentum_phase"`
	PhaseStrength float64   `json:"phase_value"` // 0..100
	PhaseDelta    float64   `json:"phase_delta"` // strength change vs 5 days ago

	RSRatio    float64 `json:"rs_ratio"`
	RSMomentum float64 `json:"rs_momentum"`
}

// StockSnapshot is one constituent row of a sector detail report.
type StockSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Return5D    float64 `json:"return_5d"`
	Return20D   float64 `json:"return_20d"`
	VolumeRatio float64 `json:"volume_ratio"`

	Phase         PhaseKind `json:"momentum_phase"`
	PhaseStrength float64   `json:"phase_value"`
	PhaseDelta    float64   `json:"phase_delta"`
	RSRatio       float64   `json:"rs_ratio"`
	RSMomentum    float64   `json:"rs_momentum"`

	// SectorRelative marks the stock as leader or laggard vs its own
	// sector ETF over 5 days.
	SectorRelative string `json:"sector_relative"`

	DaysInPhase   int       `json:"days_in_phase"`
	PreviousPhase PhaseKind `json:"previous_phase,omitempty"`

	// Weight is a dollar-volume proxy normalized to 0..100 within the sector.
	Weight float64 `json:"weight"`
}

// StockCorrelation is one pairwise 20-day return correlation inside a sector.
type StockCorrelation struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Correlation float64 `json:"correlation"`
}

// SectorDetail is the full constituent report for one sector ETF.
type SectorDetail struct {
	ETF          string             `json:"etf"`
	SectorName   string             `json:"sector_name"`
	SectorColor  string             `json:"sector_color"`
	Date         string             `json:"date"`
	Stocks       []StockSnapshot    `json:"stocks"`
	Correlations []StockCorrelation `json:"correlations"`
}

// FreshSignal is today's classification feed entry: a stock recently entered
// an advancing phase. The incremental ledger update scans these for openings.
type FreshSignal struct {
	Ticker        string    `json:"ticker"`
	Sector        string    `json:"sector"`
	SectorName    string    `json:"sector_name"`
	Phase         PhaseKind `json:"phase"`
	PreviousPhase PhaseKind `json:"previous_phase,omitempty"`
	DaysInPhase   int       `json:"days_in_phase"`
	Return5D      float64   `json:"return_5d"`
	PhaseStrength float64   `json:"phase_value"`
	RSMomentum    float64   `json:"rs_momentum"`
}

// RunMetadata describes one completed pipeline run.
type RunMetadata struct {
	Date                 string      `json:"date"`
	MarketState          MarketState `json:"market_state"`
	AvgCorrelation       float64     `json:"avg_correlation"`
	TotalSectors         int         `json:"total_sectors"`
	SkippedInstruments   int         `json:"skipped_instruments"`
	SignificantRotations int         `json:"significant_rotations"`
	BenchmarkReturn      float64     `json:"benchmark_return"`
	Narrative            string      `json:"narrative"`
	PresetID             string      `json:"preset_id"`
	PresetHash           string      `json:"preset_hash"`
	GeneratedAt          time.Time   `json:"generated_at"`
}

// RunReport is the top-level artifact of one run.
type RunReport struct {
	Metadata       RunMetadata      `json:"metadata"`
	Nodes          []SectorSnapshot `json:"nodes"`
	Rotations      []RotationEdge   `json:"rotations"`
	Regime         RegimeCall       `json:"regime"`
	Signals        []FreshSignal    `json:"signals"`
	SignalsHistory []*Signal        `json:"signals_history"`
}
