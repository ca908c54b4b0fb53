package pipeline

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Jitter defaults keep scatter plots reproducible across renders
const (
	JitterSeed uint64 = 0
	JitterSD          = 0.045
)

// AddJitter returns a copy of frame with XJ = X + N(0, sd) noise drawn in row
// order from a generator seeded with seed. The same seed and frame always
// give the same XJ values.
func AddJitter(frame PlotFrame, seed uint64, sd float64) PlotFrame {
	out := PlotFrame{Metric: frame.Metric, UseLog: frame.UseLog, Rows: make([]PlotRow, len(frame.Rows))}
	if sd <= 0 {
		for i, r := range frame.Rows {
			r.XJ = float64(r.X)
			out.Rows[i] = r
		}
		return out
	}

	noise := distuv.Normal{Mu: 0, Sigma: sd, Src: rand.NewPCG(seed, seed)}
	for i, r := range frame.Rows {
		r.XJ = float64(r.X) + noise.Rand()
		out.Rows[i] = r
	}
	return out
}

// Prepare runs ApplyScale and AddJitter with the default seed and spread
func Prepare(frame PlotFrame, useLog bool) PlotFrame {
	return AddJitter(ApplyScale(frame, useLog), JitterSeed, JitterSD)
}
