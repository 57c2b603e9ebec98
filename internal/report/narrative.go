// Package report turns a pipeline run into its published artifacts: the
// narrative summary, the top-level JSON report, and the per-sector detail
// files the display layer reads.
package report

import (
	"fmt"
	"strings"

	"github.com/rotationlab/backend/internal/contracts"
)

// Narrative renders a short English summary of the run. Sentences are
// ordered market state first, then rotation, then the weekly extremes, then
// regime, then benchmark, so the most actionable caveat leads.
func Narrative(meta contracts.RunMetadata, nodes []contracts.SectorSnapshot, rotations []contracts.RotationEdge, regime contracts.RegimeCall) string {
	var parts []string

	if meta.MarketState == contracts.MarketHighCorrelation {
		parts = append(parts, fmt.Sprintf(
			"Sectors are moving in lockstep (avg correlation %.2f); rotation signals are less reliable today.",
			meta.AvgCorrelation))
	}

	if len(rotations) > 0 {
		top := rotations[0]
		sentence := fmt.Sprintf("Strongest rotation: %s into %s (score %.2f", top.SourceName, top.TargetName, top.Score)
		if top.CMFConfirmed {
			sentence += ", money flow confirms"
		}
		sentence += ")."
		parts = append(parts, sentence)
		if len(rotations) > 1 {
			parts = append(parts, fmt.Sprintf("%d sector rotations are in play.", len(rotations)))
		}
	} else {
		parts = append(parts, "No significant sector rotations detected.")
	}

	if best, worst, ok := weeklyExtremes(nodes); ok {
		parts = append(parts, fmt.Sprintf("%s led the week (%+.2f%%); %s lagged (%+.2f%%).",
			best.Name, best.Return5D*100, worst.Name, worst.Return5D*100))
	}

	if regime.Regime != contracts.RegimeMixed {
		parts = append(parts, fmt.Sprintf("%s (confidence %.0f%%).", regime.Label, regime.Confidence*100))
	} else {
		parts = append(parts, "Sector leadership is mixed.")
	}

	sign := "+"
	if meta.BenchmarkReturn < 0 {
		sign = ""
	}
	parts = append(parts, fmt.Sprintf("Benchmark returned %s%.2f%% on the day.", sign, meta.BenchmarkReturn*100))

	return strings.Join(parts, " ")
}

// weeklyExtremes returns the best and worst sectors by 5-day return. Needs
// at least two sectors to say anything meaningful.
func weeklyExtremes(nodes []contracts.SectorSnapshot) (best, worst contracts.SectorSnapshot, ok bool) {
	if len(nodes) < 2 {
		return best, worst, false
	}
	best, worst = nodes[0], nodes[0]
	for _, n := range nodes[1:] {
		if n.Return5D > best.Return5D {
			best = n
		}
		if n.Return5D < worst.Return5D {
			worst = n
		}
	}
	return best, worst, true
}
