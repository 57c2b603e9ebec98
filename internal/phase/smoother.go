package phase

import "github.com/rotationlab/backend/internal/contracts"

// Smooth converts a raw per-day phase sequence into a confirmed sequence of
// the same length. A transition must persist for confirmDays consecutive
// days before it is accepted; single-day blips never surface. The pass is
// strictly forward: each output depends on the prior confirmed state.
func Smooth(raw []contracts.PhaseKind, confirmDays int) []contracts.PhaseKind {
	if len(raw) == 0 {
		return nil
	}
	if confirmDays < 1 {
		confirmDays = 1
	}

	confirmed := raw[0]
	var pending contracts.PhaseKind
	streak := 0

	out := make([]contracts.PhaseKind, len(raw))
	for i, r := range raw {
		switch {
		case r == confirmed:
			// Back on the accepted phase; abandon any candidate.
			pending = ""
			streak = 0
		case pending != "" && r == pending:
			streak++
		default:
			pending = r
			streak = 1
		}

		if pending != "" && streak >= confirmDays {
			confirmed = pending
			pending = ""
			streak = 0
		}

		out[i] = confirmed
	}

	return out
}

// DaysInCurrent counts how long the final confirmed phase has held, scanning
// backward until the value changes.
func DaysInCurrent(confirmed []contracts.PhaseKind) int {
	n := len(confirmed)
	if n == 0 {
		return 0
	}
	current := confirmed[n-1]
	count := 0
	for i := n - 1; i >= 0; i-- {
		if confirmed[i] != current {
			break
		}
		count++
	}
	return count
}

// Previous returns the confirmed phase held before the current streak, or ""
// when the sequence never changed.
func Previous(confirmed []contracts.PhaseKind) contracts.PhaseKind {
	n := len(confirmed)
	if n == 0 {
		return ""
	}
	current := confirmed[n-1]
	for i := n - 1; i >= 0; i-- {
		if confirmed[i] != current {
			return confirmed[i]
		}
	}
	return ""
}
