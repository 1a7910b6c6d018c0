package explain

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/domain/model"
)

func TestRender(t *testing.T) {
	Convey("Given a critical result backed by engine and timing evidence", t, func() {
		fv := &model.FeatureVector{
			EngineAgreement:         model.Float(1.0),
			AdjustedEngineAgreement: model.Float(1.0),
			MeanCentipawnLoss:       model.Float(2),
			TimingSuspicion:         model.Float(0.9),
			TimeCV:                  model.Float(0.05),
		}
		res := model.EnsembleResult{
			OverallScore: 0.92,
			RiskLevel:    model.RiskCritical,
			Confidence:   0.77,
			ComponentScores: map[string]float64{
				model.SignalEngineAgreement: 1.0,
				model.SignalCentipawnLoss:   1.0,
				model.SignalTimingSuspicion: 0.9,
			},
		}

		Convey("When the explanation is rendered", func() {
			text := Render(res, fv)

			Convey("Then it opens with the verdict and cites both families", func() {
				So(text, ShouldStartWith, "Risk level CRITICAL")
				So(text, ShouldContainSubstring, "matched the engine's first choice on 100%")
				So(text, ShouldContainSubstring, "suspicion score of 0.90")
			})

			Convey("Then rendering is deterministic", func() {
				So(Render(res, fv), ShouldEqual, text)
			})
		})
	})

	Convey("Given more signals than the citation budget", t, func() {
		fv := &model.FeatureVector{
			EngineAgreement:       model.Float(0.96),
			MeanCentipawnLoss:     model.Float(3),
			TimingSuspicion:       model.Float(0.8),
			ComplexityCorrelation: model.Float(-0.4),
		}
		res := model.EnsembleResult{
			RiskLevel: model.RiskHigh,
			ComponentScores: map[string]float64{
				model.SignalEngineAgreement: 1.0,
				model.SignalCentipawnLoss:   0.9,
				model.SignalTimingSuspicion: 0.8,
				model.SignalComplexityCorr:  0.4,
			},
		}

		Convey("When the explanation is rendered", func() {
			text := Render(res, fv)

			Convey("Then only the top three signals are cited", func() {
				So(strings.Count(text, "\n"), ShouldEqual, 3)
				So(text, ShouldNotContainSubstring, "correlates")
			})
		})
	})

	Convey("Given components whose features went missing", t, func() {
		res := model.EnsembleResult{
			RiskLevel: model.RiskModerate,
			ComponentScores: map[string]float64{
				model.SignalSniperGap:       0.8,
				model.SignalTimingSuspicion: 0.6,
			},
		}
		fv := &model.FeatureVector{TimingSuspicion: model.Float(0.6)}

		Convey("When the explanation is rendered", func() {
			text := Render(res, fv)

			Convey("Then unavailable signals are never templated", func() {
				So(text, ShouldNotContainSubstring, "sharp positions")
				So(text, ShouldContainSubstring, "suspicion score of 0.60")
			})
		})
	})

	Convey("Given no components at all", t, func() {
		res := model.EnsembleResult{RiskLevel: model.RiskLow, OverallScore: 0.1, Confidence: 0.3}

		Convey("When the explanation is rendered", func() {
			text := Render(res, &model.FeatureVector{})

			Convey("Then only the verdict sentence remains", func() {
				So(text, ShouldEqual, "Risk level LOW with an overall score of 0.10 (confidence 0.30).")
			})
		})
	})
}
