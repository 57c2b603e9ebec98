// Package preset defines the named tuning configurations of the phase
// engine. The engine's parameters (RS window, phase scheme, thresholds) are
// product tuning, not architecture: each combination ships as a preset and
// runs select one by name or YAML path.
package preset

import (
	"github.com/rotationlab/backend/internal/contracts"
)

// Preset is one complete engine configuration. Immutable after load.
type Preset struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Phase    Phase    `yaml:"phase" json:"phase"`
	Signals  Signals  `yaml:"signals" json:"signals"`
	Rotation Rotation `yaml:"rotation" json:"rotation"`
	Regime   Regime   `yaml:"regime" json:"regime"`
}

// Meta identifies a preset.
type Meta struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// Phase configures classification and confirmation.
type Phase struct {
	// Scheme: "quadrant" or "three_bucket".
	Scheme string `yaml:"scheme" json:"scheme"`

	// RSWindow is the rolling window of the RS ratio mean and momentum
	// shift, in trading days.
	RSWindow int `yaml:"rs_window" json:"rs_window"`

	// ConfirmDays is how long a raw phase change must persist before the
	// smoother accepts it.
	ConfirmDays int `yaml:"confirm_days" json:"confirm_days"`

	// ReturnGuard is the materially-negative trailing 5-day return below
	// which the three-bucket scheme downgrades an advancing phase.
	ReturnGuard float64 `yaml:"return_guard" json:"return_guard"`

	// StrengthCap limits phase strength for guarded instruments.
	StrengthCap float64 `yaml:"strength_cap" json:"strength_cap"`
}

// Signals configures the lifecycle tracker.
type Signals struct {
	// OpenMomentumMin is the RS-Momentum floor for opening a signal on
	// acceleration-phase entry.
	OpenMomentumMin float64 `yaml:"open_momentum_min" json:"open_momentum_min"`

	// MaxHoldDays is the expiry horizon in calendar days.
	MaxHoldDays int `yaml:"max_hold_days" json:"max_hold_days"`

	// RetentionDays prunes closed signals older than this many calendar
	// days during incremental updates.
	RetentionDays int `yaml:"retention_days" json:"retention_days"`

	// WarmupDays is the number of leading trading days skipped by replay.
	WarmupDays int `yaml:"warmup_days" json:"warmup_days"`

	// FreshMaxDaysInPhase bounds the classification feed to recent
	// phase entries.
	FreshMaxDaysInPhase int `yaml:"fresh_max_days_in_phase" json:"fresh_max_days_in_phase"`
}

// Rotation configures pairwise scoring.
type Rotation struct {
	// MinDivergence is the 5-day residual-return gap floor (fraction).
	MinDivergence float64 `yaml:"min_divergence" json:"min_divergence"`

	// ScoreFloor drops edges scoring at or below it.
	ScoreFloor float64 `yaml:"score_floor" json:"score_floor"`

	// TopK bounds the retained edge list.
	TopK int `yaml:"top_k" json:"top_k"`

	// CorrelationWindow is the residual-correlation lookback.
	CorrelationWindow int `yaml:"correlation_window" json:"correlation_window"`

	// HighCorrelation is the average pairwise correlation above which the
	// market state is high_correlation.
	HighCorrelation float64 `yaml:"high_correlation" json:"high_correlation"`
}

// Regime configures regime inference.
type Regime struct {
	// ConfidenceFloor below which the call degrades to mixed.
	ConfidenceFloor float64 `yaml:"confidence_floor" json:"confidence_floor"`
}

// Scheme returns the typed phase scheme.
func (p *Preset) Scheme() contracts.PhaseScheme {
	if p.Phase.Scheme == string(contracts.SchemeThreeBucket) {
		return contracts.SchemeThreeBucket
	}
	return contracts.SchemeQuadrant
}

// Classic is the production configuration: 20-day RS window, quadrant
// phases, momentum floor 101, 5-day confirmation.
func Classic() *Preset {
	return &Preset{
		Meta: Meta{
			ID:          "classic",
			Description: "20-day RS window, quadrant phases, momentum floor 101",
		},
		Phase: Phase{
			Scheme:      string(contracts.SchemeQuadrant),
			RSWindow:    20,
			ConfirmDays: 5,
			ReturnGuard: -0.02,
			StrengthCap: 50,
		},
		Signals: Signals{
			OpenMomentumMin:     101,
			MaxHoldDays:         30,
			RetentionDays:       60,
			WarmupDays:          50,
			FreshMaxDaysInPhase: 5,
		},
		Rotation: Rotation{
			MinDivergence:     0.01,
			ScoreFloor:        0.5,
			TopK:              8,
			CorrelationWindow: 20,
			HighCorrelation:   0.7,
		},
		Regime: Regime{
			ConfidenceFloor: 0.3,
		},
	}
}

// Aggressive is the fast variant: 10-day RS window, three-bucket phases with
// the return guard, momentum floor 103.
func Aggressive() *Preset {
	p := Classic()
	p.Meta = Meta{
		ID:          "aggressive",
		Description: "10-day RS window, three-bucket phases with return guard, momentum floor 103",
	}
	p.Phase.Scheme = string(contracts.SchemeThreeBucket)
	p.Phase.RSWindow = 10
	p.Phase.ConfirmDays = 3
	p.Signals.OpenMomentumMin = 103
	p.Signals.WarmupDays = 30
	return p
}

// ByID returns a built-in preset.
func ByID(id string) (*Preset, bool) {
	switch id {
	case "classic", "":
		return Classic(), true
	case "aggressive":
		return Aggressive(), true
	}
	return nil, false
}
