// Package model contains domain types passed between pipeline layers.
package model

// Signal names used across feature extraction, ensemble components and
// explanation templates.
const (
	SignalEngineAgreement = "engine_agreement"
	SignalCentipawnLoss   = "centipawn_loss"
	SignalTimingSuspicion = "timing_suspicion"
	SignalStreak          = "streak_improbability"
	SignalSniperGap       = "sniper_gap"
	SignalComplexityCorr  = "complexity_correlation"
)

// FeatureVector aggregates per-game move, timing and sequence metrics into
// fixed-width numeric features. Optional features are pointers: nil means the
// underlying data source (engine evaluations, telemetry, game history) was
// unavailable, and consumers must renormalize over what remains.
type FeatureVector struct {
	GameID    string `json:"game_id"`
	PlyCount  int    `json:"ply_count"`
	MoveCount int    `json:"move_count"`

	// Engine-dependent features. All nil when no evaluations exist.
	EngineAgreement         *float64 `json:"engine_agreement,omitempty"`          // fraction of plies matching engine best move
	AdjustedEngineAgreement *float64 `json:"adjusted_engine_agreement,omitempty"` // discounting book and forced plies
	MeanCentipawnLoss       *float64 `json:"mean_centipawn_loss,omitempty"`
	MedianCentipawnLoss     *float64 `json:"median_centipawn_loss,omitempty"`
	CriticalAccuracy        *float64 `json:"critical_accuracy,omitempty"` // best-move rate in tactically sharp plies
	OrdinaryAccuracy        *float64 `json:"ordinary_accuracy,omitempty"`
	SniperGap               *float64 `json:"sniper_gap,omitempty"`             // CriticalAccuracy - OrdinaryAccuracy
	ComplexityCorrelation   *float64 `json:"complexity_correlation,omitempty"` // Pearson corr of complexity vs think time

	EvaluatedPlies int `json:"evaluated_plies"`
	BookPlies      int `json:"book_plies"`
	ForcedPlies    int `json:"forced_plies"`
	CriticalPlies  int `json:"critical_plies"`
	CriticalFound  int `json:"critical_found"`
	OrdinaryPlies  int `json:"ordinary_plies"`
	OrdinaryFound  int `json:"ordinary_found"`

	// Telemetry-dependent features. All nil when no timing data exists.
	TimingSuspicion *float64 `json:"timing_suspicion,omitempty"` // 0-1 composite
	TimeMean        *float64 `json:"time_mean,omitempty"`
	TimeCV          *float64 `json:"time_cv,omitempty"`      // coefficient of variation
	TimeEntropy     *float64 `json:"time_entropy,omitempty"` // normalized Shannon entropy
	Burstiness      *float64 `json:"burstiness,omitempty"`   // fast moves in complex positions / total

	// Sequence-level features, set only by opponent/multi-game aggregation.
	StreakImprobability *float64 `json:"streak_improbability,omitempty"` // 0-1 log-scaled score
	ImprobabilityRatio  *float64 `json:"improbability_ratio,omitempty"`  // 1 / P(observed-or-more-extreme streak)
	LongestWinStreak    int      `json:"longest_win_streak,omitempty"`
	GamesAnalyzed       int      `json:"games_analyzed,omitempty"`
}

// HasEngineData reports whether engine-dependent features are populated.
func (f *FeatureVector) HasEngineData() bool { return f.EngineAgreement != nil }

// HasTimingData reports whether telemetry-dependent features are populated.
func (f *FeatureVector) HasTimingData() bool { return f.TimingSuspicion != nil }

// Named returns the feature value behind a generic name. Models that weight
// features by name (the logistic model) use this instead of reflection.
// The second return is false when the feature is unavailable.
func (f *FeatureVector) Named(name string) (float64, bool) {
	ptr := map[string]*float64{
		"engine_agreement":          f.EngineAgreement,
		"adjusted_engine_agreement": f.AdjustedEngineAgreement,
		"mean_centipawn_loss":       f.MeanCentipawnLoss,
		"median_centipawn_loss":     f.MedianCentipawnLoss,
		"critical_accuracy":         f.CriticalAccuracy,
		"ordinary_accuracy":         f.OrdinaryAccuracy,
		"sniper_gap":                f.SniperGap,
		"complexity_correlation":    f.ComplexityCorrelation,
		"timing_suspicion":          f.TimingSuspicion,
		"time_mean":                 f.TimeMean,
		"time_cv":                   f.TimeCV,
		"time_entropy":              f.TimeEntropy,
		"burstiness":                f.Burstiness,
		"streak_improbability":      f.StreakImprobability,
	}[name]
	if ptr == nil {
		return 0, false
	}
	return *ptr, true
}

// Float is a convenience constructor for optional feature values.
func Float(v float64) *float64 { return &v }

// Verdict is the output of a single detection model.
type Verdict struct {
	Model     string   `json:"model"`
	Score     float64  `json:"score"` // in [0,1]
	Rationale []string `json:"rationale"`
}

// RiskLevel classifies an ensemble score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// EnsembleResult is the combined output of all detection models.
type EnsembleResult struct {
	OverallScore    float64            `json:"overall_score"` // in [0,1]
	RiskLevel       RiskLevel          `json:"risk_level"`
	ComponentScores map[string]float64 `json:"components"` // signal name -> contribution
	Confidence      float64            `json:"confidence"` // in [0,1]
}

// GameStatus records how far a game's analysis got.
type GameStatus string

const (
	StatusOK      GameStatus = "ok"      // all feature families computed
	StatusPartial GameStatus = "partial" // some data sources missing
	StatusFailed  GameStatus = "failed"  // no report produced
)

// DetectionReport is the top-level artifact bound to one analyzed game
// (or one aggregated opponent). It is the unit persisted and exported.
type DetectionReport struct {
	GameID      string         `json:"game_id"`
	Status      GameStatus     `json:"status"`
	StatusNote  string         `json:"status_note,omitempty"`
	Features    *FeatureVector `json:"feature_vector"`
	Verdicts    []Verdict      `json:"verdicts"`
	Ensemble    EnsembleResult `json:"ensemble"`
	Explanation string         `json:"explanation"`
}
