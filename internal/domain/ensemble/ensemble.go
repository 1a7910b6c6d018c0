// Package ensemble combines model verdicts and per-signal evidence into a
// single scored, tiered result.
package ensemble

import (
	"math"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// Thresholds are the lower bounds of the non-LOW risk tiers.
type Thresholds struct {
	Critical float64
	High     float64
	Moderate float64
}

// DefaultThresholds match the shipped configuration.
var DefaultThresholds = Thresholds{Critical: 0.85, High: 0.70, Moderate: 0.50}

// Scorer combines verdicts. Model weights are per verdict name; models not
// listed get the default weight.
type Scorer struct {
	thresholds    Thresholds
	modelWeights  map[string]float64
	defaultWeight float64
}

// NewScorer builds a scorer with equal model weights and default tiers.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		thresholds:    DefaultThresholds,
		modelWeights:  map[string]float64{},
		defaultWeight: 1.0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Combine averages the model verdicts by weight, grades the per-signal
// components from the vector, and classifies the result. Verdicts must be
// non-empty.
func (s *Scorer) Combine(verdicts []model.Verdict, fv *model.FeatureVector) model.EnsembleResult {
	var sum, weightSum float64
	for _, v := range verdicts {
		w := s.defaultWeight
		if mw, ok := s.modelWeights[v.Model]; ok {
			w = mw
		}
		sum += w * v.Score
		weightSum += w
	}

	score := 0.0
	if weightSum > 0 {
		score = sum / weightSum
	}
	score = math.Max(0, math.Min(1, score))

	return model.EnsembleResult{
		OverallScore:    score,
		RiskLevel:       s.classify(score),
		ComponentScores: componentScores(fv),
		Confidence:      confidence(fv),
	}
}

func (s *Scorer) classify(score float64) model.RiskLevel {
	switch {
	case score >= s.thresholds.Critical:
		return model.RiskCritical
	case score >= s.thresholds.High:
		return model.RiskHigh
	case score >= s.thresholds.Moderate:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}

// componentScores grades each available signal to a 0-1 suspicion value.
// Absent signals are omitted so the explanation layer never speaks to
// evidence that was not gathered.
func componentScores(fv *model.FeatureVector) map[string]float64 {
	components := make(map[string]float64)

	agreement := fv.AdjustedEngineAgreement
	if agreement == nil {
		agreement = fv.EngineAgreement
	}
	if agreement != nil {
		components[model.SignalEngineAgreement] = gradeAgreement(*agreement)
	}
	if fv.MeanCentipawnLoss != nil {
		components[model.SignalCentipawnLoss] = gradeCentipawnLoss(*fv.MeanCentipawnLoss)
	}
	if fv.TimingSuspicion != nil {
		components[model.SignalTimingSuspicion] = *fv.TimingSuspicion
	}
	if fv.StreakImprobability != nil {
		components[model.SignalStreak] = *fv.StreakImprobability
	}
	if fv.SniperGap != nil {
		components[model.SignalSniperGap] = gradeSniperGap(*fv.SniperGap)
	}
	if fv.ComplexityCorrelation != nil {
		components[model.SignalComplexityCorr] = gradeComplexityCorr(*fv.ComplexityCorrelation)
	}
	return components
}

// gradeAgreement converts raw agreement into suspicion. Strong club players
// sit near 0.75; sustained agreement beyond 0.85 is rare without help.
func gradeAgreement(v float64) float64 {
	switch {
	case v > 0.95:
		return 1.0
	case v > 0.90:
		return 0.8
	case v > 0.85:
		return 0.5
	case v > 0.75:
		return 0.2
	default:
		return 0.0
	}
}

func gradeCentipawnLoss(v float64) float64 {
	switch {
	case v < 5:
		return 1.0
	case v < 10:
		return 0.7
	case v < 20:
		return 0.4
	case v < 35:
		return 0.15
	default:
		return 0.0
	}
}

// gradeSniperGap grades outperformance in sharp positions. Thresholds are
// calibrated high: elite speed players legitimately reach +0.3 gaps.
func gradeSniperGap(v float64) float64 {
	switch {
	case v > 0.5:
		return 1.0
	case v > 0.35:
		return 0.8
	case v > 0.20:
		return 0.5
	default:
		return 0.0
	}
}

func gradeComplexityCorr(v float64) float64 {
	switch {
	case v < -0.3:
		return 0.8
	case v < -0.1:
		return 0.4
	case v < 0.1:
		return 0.2
	default:
		return 0.0
	}
}

// confidence reflects how much data backed the result: game volume plus
// the presence of the timing and engine feature families.
func confidence(fv *model.FeatureVector) float64 {
	games := fv.GamesAnalyzed
	if games == 0 {
		games = 1
	}

	var volume float64
	switch {
	case games >= 50:
		volume = 1.0
	case games >= 20:
		volume = 0.8
	case games >= 10:
		volume = 0.6
	default:
		volume = 0.3
	}

	timing := 0.5
	if fv.HasTimingData() {
		timing = 0.9
	}
	engine := 0.5
	if fv.HasEngineData() {
		engine = 0.9
	}

	return (volume + timing + engine) / 3
}
