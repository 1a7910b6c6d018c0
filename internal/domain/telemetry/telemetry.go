// Package telemetry models per-move timing data and its summary statistics.
//
// A Series maps plies to elapsed think time. It can be loaded from JSON or
// CSV exports, or derived from the clock annotations of a parsed game.
// Sparse coverage is allowed; consumers check Len before relying on stats.
package telemetry

import (
	"fmt"
	"math"
	"sort"

	"github.com/chessguard/chessguard/internal/domain/pgn"
)

// Sample is the think time spent on a single ply.
type Sample struct {
	Ply     int     `json:"ply"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// Series is an ordered set of timing samples for one game. Plies are
// strictly increasing and elapsed times non-negative.
type Series struct {
	samples []Sample
}

// NewSeries validates and orders samples into a Series.
func NewSeries(samples []Sample) (*Series, error) {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ply < sorted[j].Ply })

	for i, s := range sorted {
		if s.Ply < 1 {
			return nil, fmt.Errorf("%w: ply %d out of range", ErrFormat, s.Ply)
		}
		if s.Elapsed < 0 {
			return nil, fmt.Errorf("%w: negative elapsed time at ply %d", ErrFormat, s.Ply)
		}
		if i > 0 && sorted[i-1].Ply == s.Ply {
			return nil, fmt.Errorf("%w: duplicate ply %d", ErrFormat, s.Ply)
		}
	}
	return &Series{samples: sorted}, nil
}

// FromClocks derives per-move think times from clock annotations for one
// side of a game. side is 0 for white, 1 for black. The first annotated ply
// seeds the baseline; each later annotation yields elapsed = previous
// remaining - current remaining, clamped at zero to absorb increments.
func FromClocks(g *pgn.Game, side int) (*Series, error) {
	prev := math.NaN()
	var samples []Sample
	for _, p := range g.Plies {
		if (p.Index-1)%2 != side || p.Clock == pgn.NoClock {
			continue
		}
		if !math.IsNaN(prev) {
			samples = append(samples, Sample{Ply: p.Index, Elapsed: math.Max(0, prev-p.Clock)})
		}
		prev = p.Clock
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no usable clock annotations", ErrFormat)
	}
	return NewSeries(samples)
}

// Len returns the number of samples in the series.
func (s *Series) Len() int { return len(s.samples) }

// Samples returns the ordered samples. The slice must not be mutated.
func (s *Series) Samples() []Sample { return s.samples }

// Elapsed returns the think time recorded for ply, or false when the series
// has no sample for it.
func (s *Series) Elapsed(ply int) (float64, bool) {
	i := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].Ply >= ply })
	if i < len(s.samples) && s.samples[i].Ply == ply {
		return s.samples[i].Elapsed, true
	}
	return 0, false
}

// Stats are summary statistics over a Series. Measures that are undefined
// for the sample count at hand come back as NaN.
type Stats struct {
	Count    int
	Mean     float64
	Variance float64
	StdDev   float64
	CV       float64 // coefficient of variation, StdDev/Mean
	Entropy  float64 // Shannon entropy over 10 bins, normalized to [0,1]
}

const entropyBins = 10

// Stats computes summary statistics over the series.
func (s *Series) Stats() Stats {
	st := Stats{
		Count:    len(s.samples),
		Mean:     math.NaN(),
		Variance: math.NaN(),
		StdDev:   math.NaN(),
		CV:       math.NaN(),
		Entropy:  math.NaN(),
	}
	if st.Count == 0 {
		return st
	}

	var sum float64
	for _, x := range s.samples {
		sum += x.Elapsed
	}
	st.Mean = sum / float64(st.Count)

	if st.Count < 2 {
		return st
	}
	var ss float64
	for _, x := range s.samples {
		d := x.Elapsed - st.Mean
		ss += d * d
	}
	st.Variance = ss / float64(st.Count-1)
	st.StdDev = math.Sqrt(st.Variance)
	if st.Mean > 0 {
		st.CV = st.StdDev / st.Mean
	}
	st.Entropy = s.entropy()
	return st
}

// entropy bins elapsed times over their observed range and computes Shannon
// entropy normalized by the maximum log2(bins). Degenerate series where all
// samples coincide have zero entropy.
func (s *Series) entropy() float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range s.samples {
		lo = math.Min(lo, x.Elapsed)
		hi = math.Max(hi, x.Elapsed)
	}
	if hi <= lo {
		return 0
	}

	var counts [entropyBins]int
	width := (hi - lo) / entropyBins
	for _, x := range s.samples {
		b := int((x.Elapsed - lo) / width)
		if b >= entropyBins {
			b = entropyBins - 1
		}
		counts[b]++
	}

	total := float64(len(s.samples))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h / math.Log2(entropyBins)
}
