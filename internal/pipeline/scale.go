package pipeline

import "math"

// Metric values are clipped into [ClipFloor, ClipCeiling] before display
const (
	ClipFloor   = 1e-300
	ClipCeiling = 1.0
)

// ClipValue bounds v so -log10 stays finite
func ClipValue(v float64) float64 {
	if math.IsNaN(v) {
		return ClipCeiling
	}
	return math.Min(math.Max(v, ClipFloor), ClipCeiling)
}

// ScaleValue clips v and optionally applies -log10
func ScaleValue(v float64, useLog bool) float64 {
	v = ClipValue(v)
	if !useLog {
		return v
	}
	y := -math.Log10(v)
	if y == 0 {
		return 0 // drop the sign of -0
	}
	return y
}

// ThresholdLine returns where a significance threshold sits on the y axis
func ThresholdLine(threshold float64, useLog bool) float64 {
	if useLog {
		return -math.Log10(threshold)
	}
	return threshold
}

// ApplyScale returns a copy of frame with Vals clipped and Y set to the
// display value
func ApplyScale(frame PlotFrame, useLog bool) PlotFrame {
	out := PlotFrame{Metric: frame.Metric, UseLog: useLog, Rows: make([]PlotRow, len(frame.Rows))}
	for i, r := range frame.Rows {
		r.Vals = ClipValue(r.Vals)
		r.Y = ScaleValue(r.Vals, useLog)
		out.Rows[i] = r
	}
	return out
}
