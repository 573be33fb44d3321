package analytics

import "github.com/shopspring/decimal"

// NoDelta rendered in place of a missing delta
const NoDelta = "—"

// Delta directional change from previous to current: "↑10", "↓2.5" or "→0".
// Returns nil when there is no previous reading.
func Delta(current float64, previous *float64) *string {
	if previous == nil {
		return nil
	}

	d := decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(*previous))
	var s string
	switch d.Sign() {
	case 1:
		s = "↑" + d.String()
	case -1:
		s = "↓" + d.Abs().String()
	default:
		s = "→0"
	}
	return &s
}

// DeltaLabel renders a Delta result, NoDelta for nil
func DeltaLabel(delta *string) string {
	if delta == nil {
		return NoDelta
	}
	return *delta
}
