package ensemble

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/domain/model"
)

func verdictsScoring(score float64) []model.Verdict {
	return []model.Verdict{
		{Model: "rule_based", Score: score},
		{Model: "logistic", Score: score},
	}
}

func TestClassify(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		s := NewScorer()
		fv := &model.FeatureVector{}

		Convey("When scores straddle the tier bounds", func() {
			Convey("Then each tier starts exactly at its threshold", func() {
				So(s.Combine(verdictsScoring(0.49), fv).RiskLevel, ShouldEqual, model.RiskLow)
				So(s.Combine(verdictsScoring(0.50), fv).RiskLevel, ShouldEqual, model.RiskModerate)
				So(s.Combine(verdictsScoring(0.69), fv).RiskLevel, ShouldEqual, model.RiskModerate)
				So(s.Combine(verdictsScoring(0.70), fv).RiskLevel, ShouldEqual, model.RiskHigh)
				So(s.Combine(verdictsScoring(0.84), fv).RiskLevel, ShouldEqual, model.RiskHigh)
				So(s.Combine(verdictsScoring(0.85), fv).RiskLevel, ShouldEqual, model.RiskCritical)
			})
		})
	})

	Convey("Given custom model weights", t, func() {
		s := NewScorer(WithModelWeight("rule_based", 1), WithModelWeight("logistic", 3))

		Convey("When the models disagree", func() {
			res := s.Combine([]model.Verdict{
				{Model: "rule_based", Score: 0.2},
				{Model: "logistic", Score: 0.8},
			}, &model.FeatureVector{})

			Convey("Then the heavier model dominates", func() {
				So(res.OverallScore, ShouldAlmostEqual, 0.65, 1e-9)
			})
		})
	})
}

func TestComponentScores(t *testing.T) {
	Convey("Given a vector with every signal populated", t, func() {
		fv := &model.FeatureVector{
			AdjustedEngineAgreement: model.Float(0.96),
			MeanCentipawnLoss:       model.Float(3),
			TimingSuspicion:         model.Float(0.7),
			StreakImprobability:     model.Float(0.6),
			SniperGap:               model.Float(0.4),
			ComplexityCorrelation:   model.Float(-0.35),
		}

		Convey("When components are graded", func() {
			res := NewScorer().Combine(verdictsScoring(0.9), fv)

			Convey("Then every signal appears with its graded value", func() {
				So(res.ComponentScores[model.SignalEngineAgreement], ShouldEqual, 1.0)
				So(res.ComponentScores[model.SignalCentipawnLoss], ShouldEqual, 1.0)
				So(res.ComponentScores[model.SignalTimingSuspicion], ShouldEqual, 0.7)
				So(res.ComponentScores[model.SignalStreak], ShouldEqual, 0.6)
				So(res.ComponentScores[model.SignalSniperGap], ShouldEqual, 0.8)
				So(res.ComponentScores[model.SignalComplexityCorr], ShouldEqual, 0.8)
			})
		})
	})

	Convey("Given a vector without engine data", t, func() {
		fv := &model.FeatureVector{TimingSuspicion: model.Float(0.8)}

		Convey("When components are graded", func() {
			res := NewScorer().Combine(verdictsScoring(0.6), fv)

			Convey("Then engine signals are absent, not zero", func() {
				_, hasEngine := res.ComponentScores[model.SignalEngineAgreement]
				So(hasEngine, ShouldBeFalse)
				So(res.ComponentScores[model.SignalTimingSuspicion], ShouldEqual, 0.8)
			})

			Convey("Then confidence reflects the missing family", func() {
				So(res.Confidence, ShouldAlmostEqual, (0.3+0.9+0.5)/3, 1e-9)
			})
		})
	})
}

func TestAggregateGames(t *testing.T) {
	Convey("Given five per-game vectors with uneven coverage", t, func() {
		fvs := []*model.FeatureVector{
			{EngineAgreement: model.Float(0.9), TimingSuspicion: model.Float(0.6), PlyCount: 40, MoveCount: 20},
			{EngineAgreement: model.Float(0.8), PlyCount: 60, MoveCount: 30},
			{EngineAgreement: model.Float(1.0), TimingSuspicion: model.Float(0.8), PlyCount: 20, MoveCount: 10},
			{PlyCount: 30, MoveCount: 15},
			{EngineAgreement: model.Float(0.7), PlyCount: 50, MoveCount: 25},
		}

		Convey("When the vectors are aggregated", func() {
			merged := AggregateGames(fvs)

			Convey("Then features average over the games that have them", func() {
				So(merged.GamesAnalyzed, ShouldEqual, 5)
				So(*merged.EngineAgreement, ShouldAlmostEqual, 0.85, 1e-9)
				So(*merged.TimingSuspicion, ShouldAlmostEqual, 0.7, 1e-9)
				So(merged.PlyCount, ShouldEqual, 200)
				So(merged.MoveCount, ShouldEqual, 100)
			})

			Convey("Then streak features stay unset for the streak pass", func() {
				So(merged.StreakImprobability, ShouldBeNil)
				So(merged.LongestWinStreak, ShouldEqual, 0)
			})
		})
	})

	Convey("Given no vectors", t, func() {
		merged := AggregateGames(nil)
		So(merged.GamesAnalyzed, ShouldEqual, 0)
		So(merged.EngineAgreement, ShouldBeNil)
	})
}
