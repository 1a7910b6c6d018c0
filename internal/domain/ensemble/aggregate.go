package ensemble

import "github.com/chessguard/chessguard/internal/domain/model"

// AggregateGames merges per-game vectors into one opponent-level vector.
// Per-game features are averaged over the games where they exist; counts
// are summed. Sequence-level streak features are NOT set here: they are a
// property of the ordered game sequence and must be computed once over the
// whole history, never averaged per game.
func AggregateGames(fvs []*model.FeatureVector) *model.FeatureVector {
	merged := &model.FeatureVector{GamesAnalyzed: len(fvs)}
	if len(fvs) == 0 {
		return merged
	}

	for _, fv := range fvs {
		merged.PlyCount += fv.PlyCount
		merged.MoveCount += fv.MoveCount
		merged.EvaluatedPlies += fv.EvaluatedPlies
		merged.BookPlies += fv.BookPlies
		merged.ForcedPlies += fv.ForcedPlies
		merged.CriticalPlies += fv.CriticalPlies
		merged.CriticalFound += fv.CriticalFound
		merged.OrdinaryPlies += fv.OrdinaryPlies
		merged.OrdinaryFound += fv.OrdinaryFound
	}

	merged.EngineAgreement = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.EngineAgreement })
	merged.AdjustedEngineAgreement = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.AdjustedEngineAgreement })
	merged.MeanCentipawnLoss = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.MeanCentipawnLoss })
	merged.MedianCentipawnLoss = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.MedianCentipawnLoss })
	merged.CriticalAccuracy = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.CriticalAccuracy })
	merged.OrdinaryAccuracy = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.OrdinaryAccuracy })
	merged.SniperGap = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.SniperGap })
	merged.ComplexityCorrelation = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.ComplexityCorrelation })
	merged.TimingSuspicion = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.TimingSuspicion })
	merged.TimeMean = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.TimeMean })
	merged.TimeCV = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.TimeCV })
	merged.TimeEntropy = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.TimeEntropy })
	merged.Burstiness = meanOf(fvs, func(fv *model.FeatureVector) *float64 { return fv.Burstiness })

	return merged
}

// meanOf averages a pointer feature over the vectors where it is present.
func meanOf(fvs []*model.FeatureVector, get func(*model.FeatureVector) *float64) *float64 {
	var sum float64
	var n int
	for _, fv := range fvs {
		if v := get(fv); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return model.Float(sum / float64(n))
}
