package preset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rotationlab/backend/internal/contracts"
)

// Load reads a preset from a YAML file. Unknown keys are rejected so a typo
// in a tuning file fails loudly instead of silently keeping a default.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a validated preset.
func Parse(data []byte) (*Preset, error) {
	p := Classic()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("preset: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks parameter sanity.
func (p *Preset) Validate() error {
	if p.Meta.ID == "" {
		return fmt.Errorf("preset: meta.id is required")
	}
	switch contracts.PhaseScheme(p.Phase.Scheme) {
	case contracts.SchemeQuadrant, contracts.SchemeThreeBucket:
	default:
		return fmt.Errorf("preset %s: unknown phase scheme %q", p.Meta.ID, p.Phase.Scheme)
	}
	if p.Phase.RSWindow < 2 {
		return fmt.Errorf("preset %s: phase.rs_window must be at least 2, got %d", p.Meta.ID, p.Phase.RSWindow)
	}
	if p.Phase.ConfirmDays < 1 {
		return fmt.Errorf("preset %s: phase.confirm_days must be at least 1, got %d", p.Meta.ID, p.Phase.ConfirmDays)
	}
	if p.Signals.OpenMomentumMin < 100 {
		return fmt.Errorf("preset %s: signals.open_momentum_min below neutral: %v", p.Meta.ID, p.Signals.OpenMomentumMin)
	}
	if p.Signals.MaxHoldDays < 1 {
		return fmt.Errorf("preset %s: signals.max_hold_days must be positive, got %d", p.Meta.ID, p.Signals.MaxHoldDays)
	}
	if p.Signals.RetentionDays < p.Signals.MaxHoldDays {
		return fmt.Errorf("preset %s: signals.retention_days %d shorter than max_hold_days %d",
			p.Meta.ID, p.Signals.RetentionDays, p.Signals.MaxHoldDays)
	}
	if p.Signals.WarmupDays < p.Phase.RSWindow*2 {
		return fmt.Errorf("preset %s: signals.warmup_days %d too short for rs_window %d",
			p.Meta.ID, p.Signals.WarmupDays, p.Phase.RSWindow)
	}
	if p.Rotation.MinDivergence <= 0 {
		return fmt.Errorf("preset %s: rotation.min_divergence must be positive", p.Meta.ID)
	}
	if p.Rotation.TopK < 1 {
		return fmt.Errorf("preset %s: rotation.top_k must be positive, got %d", p.Meta.ID, p.Rotation.TopK)
	}
	if p.Rotation.CorrelationWindow < 2 {
		return fmt.Errorf("preset %s: rotation.correlation_window must be at least 2", p.Meta.ID)
	}
	if p.Rotation.HighCorrelation <= 0 || p.Rotation.HighCorrelation > 1 {
		return fmt.Errorf("preset %s: rotation.high_correlation out of (0,1]: %v", p.Meta.ID, p.Rotation.HighCorrelation)
	}
	if p.Regime.ConfidenceFloor < 0 || p.Regime.ConfidenceFloor > 1 {
		return fmt.Errorf("preset %s: regime.confidence_floor out of [0,1]: %v", p.Meta.ID, p.Regime.ConfidenceFloor)
	}
	return nil
}

// Hash returns a short sha256 fingerprint of the preset's canonical JSON
// form. Run artifacts carry it so consumers can tell which tuning produced a
// report without diffing parameters.
func (p *Preset) Hash() string {
	data, err := json.Marshal(p)
	if err != nil {
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}
