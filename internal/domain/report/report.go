// Package report serializes detection reports for export: indented JSON
// for machine consumers and a plain-text rendering for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *model.DetectionReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// MarshalJSON returns the report document as bytes.
func MarshalJSON(r *model.DetectionReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// RenderText formats the report for terminal output.
func RenderText(r *model.DetectionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game:       %s\n", r.GameID)
	fmt.Fprintf(&b, "Status:     %s", r.Status)
	if r.StatusNote != "" {
		fmt.Fprintf(&b, " (%s)", r.StatusNote)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Risk:       %s\n", r.Ensemble.RiskLevel)
	fmt.Fprintf(&b, "Score:      %.2f\n", r.Ensemble.OverallScore)
	fmt.Fprintf(&b, "Confidence: %.2f\n", r.Ensemble.Confidence)

	if fv := r.Features; fv != nil {
		b.WriteString("\nFeatures:\n")
		writeFeature(&b, "engine agreement", fv.EngineAgreement)
		writeFeature(&b, "adjusted agreement", fv.AdjustedEngineAgreement)
		writeFeature(&b, "mean centipawn loss", fv.MeanCentipawnLoss)
		writeFeature(&b, "critical accuracy", fv.CriticalAccuracy)
		writeFeature(&b, "sniper gap", fv.SniperGap)
		writeFeature(&b, "timing suspicion", fv.TimingSuspicion)
		writeFeature(&b, "streak improbability", fv.StreakImprobability)
		if fv.GamesAnalyzed > 1 {
			fmt.Fprintf(&b, "  %-22s %d\n", "games analyzed", fv.GamesAnalyzed)
		}
	}

	if len(r.Verdicts) > 0 {
		b.WriteString("\nModel verdicts:\n")
		for _, v := range r.Verdicts {
			fmt.Fprintf(&b, "  %-12s %.2f\n", v.Model, v.Score)
			for _, reason := range v.Rationale {
				fmt.Fprintf(&b, "    - %s\n", reason)
			}
		}
	}

	if r.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(r.Explanation)
		b.WriteString("\n")
	}
	return b.String()
}

func writeFeature(b *strings.Builder, label string, v *float64) {
	if v == nil {
		return
	}
	fmt.Fprintf(b, "  %-22s %.3f\n", label, *v)
}
