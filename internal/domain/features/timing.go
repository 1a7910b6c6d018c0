package features

import (
	"math"

	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
)

// minTimedMoves is the smallest sample that yields meaningful timing stats.
const minTimedMoves = 5

// timingFeatures fills the telemetry-dependent block of the vector.
// Returns false when the series is absent or too sparse.
func (e *Extractor) timingFeatures(fv *model.FeatureVector, game *pgn.Game, side Side, series *telemetry.Series, evals []*Eval) bool {
	if series == nil {
		return false
	}

	var times []float64
	var complexities []float64 // aligned with times; NaN when unknown
	var fastComplex, timed int

	for _, p := range game.Plies {
		if sideOfPly(p.Index) != side {
			continue
		}
		elapsed, ok := series.Elapsed(p.Index)
		if !ok {
			continue
		}
		timed++
		times = append(times, elapsed)

		c := complexityAt(evals, p.Index)
		complexities = append(complexities, c)
		if !math.IsNaN(c) && c > 0.5 && elapsed < e.fastMoveSecs {
			fastComplex++
		}
	}

	if timed < minTimedMoves {
		return false
	}

	sub, err := telemetry.NewSeries(samplesFrom(times))
	if err != nil {
		return false
	}
	st := sub.Stats()

	fv.TimeMean = model.Float(st.Mean)
	if !math.IsNaN(st.CV) {
		fv.TimeCV = model.Float(st.CV)
	}
	if !math.IsNaN(st.Entropy) {
		fv.TimeEntropy = model.Float(st.Entropy)
	}

	corr := pearson(times, complexities)
	if !math.IsNaN(corr) {
		fv.ComplexityCorrelation = model.Float(corr)
	}

	if hasComplexity(complexities) {
		fv.Burstiness = model.Float(float64(fastComplex) / float64(timed))
	}

	fv.TimingSuspicion = model.Float(timingSuspicion(st, fv.ComplexityCorrelation, fv.Burstiness))
	return true
}

// timingSuspicion composes the 0-1 suspicion score from additive buckets.
// Uniform timing, low entropy, negative time-complexity correlation and
// fast play in sharp positions each push the score up.
func timingSuspicion(st telemetry.Stats, corr, burstiness *float64) float64 {
	var suspicion float64

	// Humans vary their pace. CV below 0.5 is increasingly robotic.
	uniformity := 0.0
	if !math.IsNaN(st.CV) {
		uniformity = math.Min(1, math.Max(0, 1-st.CV))
	}
	switch {
	case uniformity > 0.7:
		suspicion += 0.3
	case uniformity > 0.5:
		suspicion += 0.15
	}

	if !math.IsNaN(st.Entropy) {
		switch {
		case st.Entropy < 0.3:
			suspicion += 0.25
		case st.Entropy < 0.5:
			suspicion += 0.1
		}
	}

	// Thinking less on harder positions inverts the human pattern.
	if corr != nil {
		switch {
		case *corr < -0.2:
			suspicion += 0.3
		case *corr < 0:
			suspicion += 0.1
		}
	}

	if burstiness != nil {
		switch {
		case *burstiness > 0.5:
			suspicion += 0.35
		case *burstiness > 0.25:
			suspicion += 0.15
		}
	}

	return math.Min(1, suspicion)
}

// complexityAt grades how sharp the position before a ply was, from the
// top-2 engine gap: a narrow gap means many candidate moves. NaN without
// evaluation data.
func complexityAt(evals []*Eval, plyIndex int) float64 {
	if len(evals) == 0 || plyIndex-1 >= len(evals) {
		return math.NaN()
	}
	ev := evals[plyIndex-1]
	if ev == nil || !ev.HasGap {
		return math.NaN()
	}
	gap := math.Abs(float64(ev.Gap))
	return math.Max(0, 1-gap/300)
}

func hasComplexity(cs []float64) bool {
	for _, c := range cs {
		if !math.IsNaN(c) {
			return true
		}
	}
	return false
}

// pearson computes the correlation of paired samples, skipping pairs where
// y is NaN. NaN when fewer than three pairs remain or either side is
// constant.
func pearson(xs, ys []float64) float64 {
	var px, py []float64
	for i := range xs {
		if !math.IsNaN(ys[i]) {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	n := float64(len(px))
	if n < 3 {
		return math.NaN()
	}

	mx, my := mean(px), mean(py)
	var sxy, sxx, syy float64
	for i := range px {
		dx, dy := px[i]-mx, py[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

func samplesFrom(times []float64) []telemetry.Sample {
	samples := make([]telemetry.Sample, len(times))
	for i, t := range times {
		samples[i] = telemetry.Sample{Ply: i + 1, Elapsed: t}
	}
	return samples
}
