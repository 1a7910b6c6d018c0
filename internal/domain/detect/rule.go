package detect

import (
	"math"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// Rule is one interpretable trigger over a single named feature. Rules on
// unavailable features never fire, in either direction.
type Rule struct {
	Feature     string
	Trigger     func(v float64) bool
	Weight      float64
	Description string
}

// RuleModel is the baseline detector: a fixed base score plus additive
// rule weights, with mitigation rules pulling the score back down when the
// vector shows distinctly human patterns.
type RuleModel struct {
	baseScore   float64
	rules       []Rule
	mitigations []Rule
}

// NewRuleModel builds the baseline model with its default rule table.
func NewRuleModel() *RuleModel {
	return &RuleModel{
		baseScore: 0.15,
		rules: []Rule{
			{
				Feature:     "adjusted_engine_agreement",
				Trigger:     func(v float64) bool { return v > 0.90 },
				Weight:      0.25,
				Description: "near-perfect engine agreement outside book and forced moves",
			},
			{
				Feature:     "engine_agreement",
				Trigger:     func(v float64) bool { return v > 0.95 },
				Weight:      0.15,
				Description: "engine best move played almost every ply",
			},
			{
				Feature:     "mean_centipawn_loss",
				Trigger:     func(v float64) bool { return v < 10 },
				Weight:      0.15,
				Description: "near-lossless play across the whole game",
			},
			{
				Feature:     "timing_suspicion",
				Trigger:     func(v float64) bool { return v > 0.6 },
				Weight:      0.20,
				Description: "robotic timing profile",
			},
			{
				Feature:     "time_cv",
				Trigger:     func(v float64) bool { return v < 0.3 },
				Weight:      0.10,
				Description: "uniform think times regardless of position",
			},
			{
				Feature:     "sniper_gap",
				Trigger:     func(v float64) bool { return v > 0.20 },
				Weight:      0.15,
				Description: "accuracy spikes exactly in tactically sharp positions",
			},
			{
				Feature:     "streak_improbability",
				Trigger:     func(v float64) bool { return v > 0.6 },
				Weight:      0.15,
				Description: "statistically improbable win streak",
			},
			{
				Feature:     "complexity_correlation",
				Trigger:     func(v float64) bool { return v < -0.2 },
				Weight:      0.10,
				Description: "thinks less on harder positions",
			},
		},
		mitigations: []Rule{
			{
				Feature:     "time_entropy",
				Trigger:     func(v float64) bool { return v > 0.7 },
				Weight:      -0.10,
				Description: "varied, human-like time distribution",
			},
			{
				Feature:     "mean_centipawn_loss",
				Trigger:     func(v float64) bool { return v > 50 },
				Weight:      -0.15,
				Description: "error rate typical of unassisted play",
			},
			{
				Feature:     "engine_agreement",
				Trigger:     func(v float64) bool { return v < 0.5 },
				Weight:      -0.10,
				Description: "frequently diverges from the engine's choice",
			},
		},
	}
}

func (m *RuleModel) Name() string { return "rule_based" }

// Predict applies every rule whose feature is present and clips the
// accumulated score to [0,1].
func (m *RuleModel) Predict(fv *model.FeatureVector) model.Verdict {
	score := m.baseScore
	var rationale []string

	apply := func(rules []Rule) {
		for _, r := range rules {
			v, ok := fv.Named(r.Feature)
			if !ok || !r.Trigger(v) {
				continue
			}
			score += r.Weight
			rationale = append(rationale, r.Description)
		}
	}
	apply(m.rules)
	apply(m.mitigations)

	if len(rationale) == 0 {
		rationale = append(rationale, "no rule triggered; baseline risk applied")
	}
	return model.Verdict{
		Model:     m.Name(),
		Score:     math.Max(0, math.Min(1, score)),
		Rationale: rationale,
	}
}
