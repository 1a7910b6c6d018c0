package app

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/explain"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
	"github.com/chessguard/chessguard/pkg/logger"
	"github.com/chessguard/chessguard/pkg/metrics"
)

// Analyze runs the full pipeline for one game: telemetry resolution, engine
// evaluation, feature extraction, model verdicts, ensemble scoring and
// explanation. Missing data sources degrade the report to partial; a game
// with neither engine nor timing data produces no report and an error.
// Workers call this for every dequeued job.
func (s *Service) Analyze(ctx context.Context, job queue.Job) (*model.DetectionReport, error) {
	start := time.Now()

	if job.Game == nil {
		metrics.RecordGameAnalyzed(string(model.StatusFailed))
		return nil, fmt.Errorf("%w: job %s", ErrNoGame, job.ID)
	}

	side := features.White
	if job.Player != "" {
		var ok bool
		if side, ok = features.SideOf(job.Game, job.Player); !ok {
			metrics.RecordGameAnalyzed(string(model.StatusFailed))
			return nil, fmt.Errorf("%w: %q in game %s", ErrUnknownPlayer, job.Player, job.ID)
		}
	}

	series := job.Telemetry
	if series == nil && job.Game.HasClocks() {
		derived, err := telemetry.FromClocks(job.Game, int(side))
		if err != nil {
			s.log.Warn(ctx, "clock annotations unusable as telemetry",
				logger.String("game_id", job.ID),
				logger.Error(err))
		} else {
			series = derived
		}
	}

	evals, unevaluated := s.evaluatePositions(ctx, job.Game)

	fv, err := s.extractor.Extract(job.Game, side, series, evals)
	if err != nil {
		metrics.RecordGameAnalyzed(string(model.StatusFailed))
		return nil, fmt.Errorf("game %s: %w", job.ID, err)
	}
	fv.GameID = job.ID

	verdicts := make([]model.Verdict, 0, len(s.models))
	for _, m := range s.models {
		verdicts = append(verdicts, m.Predict(fv))
	}
	result := s.scorer.Combine(verdicts, fv)

	status, note := statusOf(fv, unevaluated)
	report := &model.DetectionReport{
		GameID:      job.ID,
		Status:      status,
		StatusNote:  note,
		Features:    fv,
		Verdicts:    verdicts,
		Ensemble:    result,
		Explanation: explain.Render(result, fv),
	}

	metrics.RecordGameAnalyzed(string(status))
	metrics.RecordAnalysisLatency(time.Since(start).Seconds())
	metrics.RecordRiskLevel(string(result.RiskLevel))
	metrics.RecordEnsembleScore(result.OverallScore)

	s.log.Info(ctx, "game analyzed",
		logger.String("game_id", job.ID),
		logger.String("status", string(status)),
		logger.String("risk", string(result.RiskLevel)),
		logger.Float64("score", result.OverallScore),
		logger.Duration("took", time.Since(start)))
	return report, nil
}

// evaluatePositions evaluates the start position and the position after
// every ply, fanned out under a concurrency bound. Entries stay nil for
// positions the engine could not score within its retry budget; the
// extractor treats those as unevaluated rather than failing the game.
func (s *Service) evaluatePositions(ctx context.Context, g *pgn.Game) ([]*features.Eval, int) {
	if s.evaluator == nil {
		return nil, 0
	}

	fens := make([]string, len(g.Plies)+1)
	fens[0] = g.StartFEN
	for i, p := range g.Plies {
		fens[i+1] = p.FEN
	}

	evals := make([]*features.Eval, len(fens))
	var failed atomic.Int64

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(s.evalParallel)
	for i, fen := range fens {
		i, fen := i, fen
		grp.Go(func() error {
			ev, err := s.evaluator.Evaluate(gctx, fen)
			if err != nil {
				failed.Add(1)
				return nil
			}
			best := ev.Best()
			fe := &features.Eval{BestMove: best.Move, ScoreCP: best.ScoreCP}
			if gap, ok := ev.Gap(); ok {
				fe.Gap, fe.HasGap = gap, true
			}
			evals[i] = fe
			return nil
		})
	}
	_ = grp.Wait()
	return evals, int(failed.Load())
}

// statusOf grades how complete a game's analysis was.
func statusOf(fv *model.FeatureVector, unevaluated int) (model.GameStatus, string) {
	var notes []string
	if !fv.HasEngineData() {
		notes = append(notes, "engine evaluations unavailable")
	} else if unevaluated > 0 {
		notes = append(notes, fmt.Sprintf("%d positions unevaluated", unevaluated))
	}
	if !fv.HasTimingData() {
		notes = append(notes, "no move timing data")
	}
	if len(notes) == 0 {
		return model.StatusOK, ""
	}
	return model.StatusPartial, strings.Join(notes, "; ")
}
