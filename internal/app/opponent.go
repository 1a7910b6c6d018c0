package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/ensemble"
	"github.com/chessguard/chessguard/internal/domain/explain"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/pkg/logger"
	"github.com/chessguard/chessguard/pkg/metrics"
)

// AnalyzeOpponent runs every game of one player through the pipeline, merges
// the per-game feature vectors, and scores the merged vector once. Win
// streaks are computed over the full ordered game sequence, never per game:
// averaging per-game ensemble scores would double-discount sequence-level
// signals like streak improbability and sniper gap.
func (s *Service) AnalyzeOpponent(ctx context.Context, player string, jobs []queue.Job) (*model.DetectionReport, error) {
	if !s.Started() {
		return nil, ErrNotStarted
	}
	if player == "" {
		return nil, fmt.Errorf("%w: empty player name", ErrUnknownPlayer)
	}
	for i := range jobs {
		jobs[i].Player = player
	}

	results := s.AnalyzeBatch(ctx, jobs)

	var (
		fvs     []*model.FeatureVector
		history []features.Outcome
		failed  int
	)
	for i, res := range results {
		if res.Report == nil || res.Report.Features == nil {
			failed++
			s.log.Warn(ctx, "game excluded from aggregation",
				logger.String("player", player),
				logger.String("game_id", res.ID),
				logger.Error(res.Err))
			continue
		}
		fvs = append(fvs, res.Report.Features)
		if o, ok := outcomeOf(jobs[i].Game, player); ok {
			history = append(history, o)
		}
	}
	if len(fvs) == 0 {
		return nil, fmt.Errorf("%w: none of %d games produced features",
			features.ErrInsufficientData, len(jobs))
	}

	agg := ensemble.AggregateGames(fvs)
	agg.GameID = "opponent:" + player
	streaks := features.AnalyzeStreaks(history)
	features.ApplyStreaks(agg, streaks)

	verdicts := make([]model.Verdict, 0, len(s.models))
	for _, m := range s.models {
		verdicts = append(verdicts, m.Predict(agg))
	}
	result := s.scorer.Combine(verdicts, agg)

	status := model.StatusOK
	var notes []string
	if failed > 0 {
		status = model.StatusPartial
		notes = append(notes, fmt.Sprintf("%d of %d games failed", failed, len(jobs)))
	}
	if streaks.Marathon {
		notes = append(notes, fmt.Sprintf("marathon session: %.1f games/hour during the flagged streak",
			streaks.GamesPerHour))
	}

	report := &model.DetectionReport{
		GameID:      agg.GameID,
		Status:      status,
		StatusNote:  strings.Join(notes, "; "),
		Features:    agg,
		Verdicts:    verdicts,
		Ensemble:    result,
		Explanation: explain.Render(result, agg),
	}
	if err := s.store.Put(ctx, report); err != nil {
		return nil, err
	}

	metrics.RecordRiskLevel(string(result.RiskLevel))
	metrics.RecordEnsembleScore(result.OverallScore)

	s.log.Info(ctx, "opponent analyzed",
		logger.String("player", player),
		logger.Int("games", len(fvs)),
		logger.Int("longest_streak", streaks.LongestStreak),
		logger.String("risk", string(result.RiskLevel)),
		logger.Float64("score", result.OverallScore))
	return report, nil
}

// outcomeOf builds a streak observation from a game's headers. Both Elo tags
// must be present and numeric; timestamps are optional.
func outcomeOf(g *pgn.Game, player string) (features.Outcome, bool) {
	if g == nil {
		return features.Outcome{}, false
	}
	side, ok := features.SideOf(g, player)
	if !ok {
		return features.Outcome{}, false
	}

	playerTag, opponentTag, winResult := "WhiteElo", "BlackElo", "1-0"
	if side == features.Black {
		playerTag, opponentTag, winResult = "BlackElo", "WhiteElo", "0-1"
	}

	var o features.Outcome
	var err error
	if o.PlayerRating, err = strconv.ParseFloat(g.Header(playerTag), 64); err != nil {
		return features.Outcome{}, false
	}
	if o.OpponentRating, err = strconv.ParseFloat(g.Header(opponentTag), 64); err != nil {
		return features.Outcome{}, false
	}
	o.Won = g.Result == winResult

	stamp := g.Header("UTCDate") + " " + g.Header("UTCTime")
	if ts, err := time.Parse("2006.01.02 15:04:05", stamp); err == nil {
		o.Played = ts
	}
	return o, true
}
