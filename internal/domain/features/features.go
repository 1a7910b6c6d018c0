// Package features turns parsed games, timing series and engine
// evaluations into the fixed-width numeric vector the detection models
// consume.
//
// Every feature family is optional: a game without telemetry yields nil
// timing features, a game without engine evaluations yields nil engine
// features. Only a game with neither is rejected.
package features

import (
	"math"
	"sort"
	"strings"

	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
)

// Side selects whose moves are analyzed.
type Side int

const (
	White Side = 0
	Black Side = 1
)

// SideOf resolves a player name against a game's headers. ok is false when
// the name matches neither side.
func SideOf(g *pgn.Game, player string) (Side, bool) {
	switch {
	case strings.EqualFold(g.White(), player):
		return White, true
	case strings.EqualFold(g.Black(), player):
		return Black, true
	}
	return White, false
}

// Eval is the slice of an engine evaluation the extractor needs: the best
// move and, when MultiPV gave us one, the top-2 score gap.
type Eval struct {
	BestMove string
	ScoreCP  int // best line, side-to-move perspective
	Gap      int // best minus second-best, centipawns
	HasGap   bool
}

// Extractor computes feature vectors. Thresholds are fixed at construction.
type Extractor struct {
	bookPlies       int
	criticalSwingCP int
	forcedGapCP     int
	fastMoveSecs    float64
}

// NewExtractor builds an extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		bookPlies:       10,
		criticalSwingCP: 150,
		forcedGapCP:     200,
		fastMoveSecs:    2.0,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes the feature vector for one side of one game.
//
// evals holds one entry per position: evals[0] is the position before the
// first ply and evals[i] the position after ply i, so the view before ply i
// is evals[i-1]. Entries may be nil for unevaluated positions; evals itself
// may be nil when no engine ran. ErrInsufficientData is returned when both
// engine and timing data are absent, alongside the structural counts that
// could still be computed.
func (e *Extractor) Extract(game *pgn.Game, side Side, series *telemetry.Series, evals []*Eval) (*model.FeatureVector, error) {
	fv := &model.FeatureVector{
		GameID:   game.ID(),
		PlyCount: len(game.Plies),
	}
	for _, p := range game.Plies {
		if sideOfPly(p.Index) == side {
			fv.MoveCount++
		}
	}

	hasEngine := e.engineFeatures(fv, game, side, evals)
	hasTiming := e.timingFeatures(fv, game, side, series, evals)

	if !hasEngine && !hasTiming {
		return fv, ErrInsufficientData
	}
	return fv, nil
}

// engineFeatures fills agreement, centipawn loss and critical-position
// metrics. Returns false when no ply of the side had an evaluation.
func (e *Extractor) engineFeatures(fv *model.FeatureVector, game *pgn.Game, side Side, evals []*Eval) bool {
	if len(evals) != len(game.Plies)+1 {
		return false
	}

	var (
		matches, adjMatches, adjPlies int
		losses                        []float64
	)

	for _, p := range game.Plies {
		if sideOfPly(p.Index) != side {
			continue
		}
		before := evals[p.Index-1]
		if before == nil {
			continue
		}
		fv.EvaluatedPlies++

		match := p.UCI == before.BestMove
		if match {
			matches++
		}

		book := p.Index <= e.bookPlies
		forced := before.HasGap && before.Gap > e.forcedGapCP
		critical := !book && !forced && before.HasGap && before.Gap > e.criticalSwingCP

		switch {
		case book:
			fv.BookPlies++
		case forced:
			fv.ForcedPlies++
		default:
			adjPlies++
			if match {
				adjMatches++
			}
			if critical {
				fv.CriticalPlies++
				if match {
					fv.CriticalFound++
				}
			} else {
				fv.OrdinaryPlies++
				if match {
					fv.OrdinaryFound++
				}
			}
		}

		// Centipawn loss needs the position after the move too. The
		// opponent's best score there is the mover's resulting score.
		if after := evals[p.Index]; after != nil {
			loss := float64(before.ScoreCP) + float64(after.ScoreCP)
			losses = append(losses, math.Max(0, loss))
		}
	}

	if fv.EvaluatedPlies == 0 {
		return false
	}

	fv.EngineAgreement = model.Float(float64(matches) / float64(fv.EvaluatedPlies))
	if adjPlies > 0 {
		fv.AdjustedEngineAgreement = model.Float(float64(adjMatches) / float64(adjPlies))
	}
	if len(losses) > 0 {
		fv.MeanCentipawnLoss = model.Float(mean(losses))
		fv.MedianCentipawnLoss = model.Float(median(losses))
	}
	if fv.CriticalPlies > 0 {
		fv.CriticalAccuracy = model.Float(float64(fv.CriticalFound) / float64(fv.CriticalPlies))
	}
	if fv.OrdinaryPlies > 0 {
		fv.OrdinaryAccuracy = model.Float(float64(fv.OrdinaryFound) / float64(fv.OrdinaryPlies))
	}
	if fv.CriticalAccuracy != nil && fv.OrdinaryAccuracy != nil {
		fv.SniperGap = model.Float(*fv.CriticalAccuracy - *fv.OrdinaryAccuracy)
	}
	return true
}

func sideOfPly(index int) Side {
	if index%2 == 1 {
		return White
	}
	return Black
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
