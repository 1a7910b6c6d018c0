// Package explain renders a deterministic plain-language explanation of an
// ensemble result from its strongest evidence signals.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// template renders one signal's sentence. render is only called when every
// feature it reads is present; required lists those features by name.
type template struct {
	required []string
	render   func(fv *model.FeatureVector) string
}

// templates maps signal names to their sentence renderers. Signals without
// a template are silently skipped.
var templates = map[string]template{
	model.SignalEngineAgreement: {
		required: []string{"engine_agreement"},
		render: func(fv *model.FeatureVector) string {
			agreement := *fv.EngineAgreement
			if fv.AdjustedEngineAgreement != nil {
				agreement = *fv.AdjustedEngineAgreement
			}
			return fmt.Sprintf(
				"The player matched the engine's first choice on %.0f%% of non-trivial moves, a rate rarely sustained without assistance.",
				agreement*100)
		},
	},
	model.SignalCentipawnLoss: {
		required: []string{"mean_centipawn_loss"},
		render: func(fv *model.FeatureVector) string {
			return fmt.Sprintf(
				"Average centipawn loss was %.1f, indicating near-lossless play throughout.",
				*fv.MeanCentipawnLoss)
		},
	},
	model.SignalTimingSuspicion: {
		required: []string{"timing_suspicion"},
		render: func(fv *model.FeatureVector) string {
			parts := []string{fmt.Sprintf(
				"Move timing shows a suspicion score of %.2f", *fv.TimingSuspicion)}
			if fv.TimeCV != nil {
				parts = append(parts, fmt.Sprintf("with a variation coefficient of %.2f", *fv.TimeCV))
			}
			return strings.Join(parts, " ") + "; think times barely respond to position difficulty."
		},
	},
	model.SignalStreak: {
		required: []string{"streak_improbability"},
		render: func(fv *model.FeatureVector) string {
			if fv.ImprobabilityRatio != nil && fv.LongestWinStreak > 0 {
				return fmt.Sprintf(
					"A %d-game win streak against this opposition has odds of about 1 in %.0f.",
					fv.LongestWinStreak, *fv.ImprobabilityRatio)
			}
			return fmt.Sprintf(
				"The observed win streak scores %.2f on the improbability scale.",
				*fv.StreakImprobability)
		},
	},
	model.SignalSniperGap: {
		required: []string{"sniper_gap", "critical_accuracy"},
		render: func(fv *model.FeatureVector) string {
			return fmt.Sprintf(
				"Accuracy in tactically sharp positions (%.0f%%) exceeds ordinary positions by %.0f points, the inverse of human pressure response.",
				*fv.CriticalAccuracy*100, *fv.SniperGap*100)
		},
	},
	model.SignalComplexityCorr: {
		required: []string{"complexity_correlation"},
		render: func(fv *model.FeatureVector) string {
			return fmt.Sprintf(
				"Think time correlates at %.2f with position complexity; humans slow down on hard positions, this player did not.",
				*fv.ComplexityCorrelation)
		},
	},
}

// topSignals is how many components an explanation cites.
const topSignals = 3

// Render produces the explanation text: a verdict sentence followed by the
// strongest citable components in descending order. Output is fully
// deterministic for a given input.
func Render(res model.EnsembleResult, fv *model.FeatureVector) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level %s with an overall score of %.2f (confidence %.2f).",
		res.RiskLevel, res.OverallScore, res.Confidence)

	cited := 0
	for _, name := range rankedSignals(res.ComponentScores) {
		if cited == topSignals {
			break
		}
		tpl, ok := templates[name]
		if !ok || !available(fv, tpl.required) {
			continue
		}
		b.WriteString("\n")
		b.WriteString(tpl.render(fv))
		cited++
	}
	return b.String()
}

// rankedSignals orders component names by descending score, breaking ties
// alphabetically so rendering stays deterministic.
func rankedSignals(components map[string]float64) []string {
	names := make([]string, 0, len(components))
	for name, score := range components {
		if score > 0 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if components[names[i]] != components[names[j]] {
			return components[names[i]] > components[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func available(fv *model.FeatureVector, required []string) bool {
	for _, name := range required {
		if _, ok := fv.Named(name); !ok {
			return false
		}
	}
	return true
}
