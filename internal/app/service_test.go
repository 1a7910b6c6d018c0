package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/adapters/engine"
	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
	"github.com/chessguard/chessguard/pkg/logger"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

// ruyLopez is a legal 20-ply mainline reused across the pipeline tests.
const ruyLopez = `1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7
6. Re1 b5 7. Bb3 d6 8. c3 O-O 9. h3 Nb8 10. d4 Nbd7 1-0`

// ratedGame renders one game of a rated session, five minutes apart.
func ratedGame(n int) string {
	return fmt.Sprintf(`[Event "Rated blitz"]
[Site "https://example.org/game/%d"]
[White "suspect"]
[Black "opponent-%d"]
[WhiteElo "1500"]
[BlackElo "1600"]
[Result "1-0"]
[UTCDate "2026.03.14"]
[UTCTime "20:%02d:00"]

%s
`, n, n, n*5, ruyLopez)
}

// fakeEvaluator hands back a taught best move per position with a fixed
// top-2 gap. The score flips sign with the side to move so a played best
// move costs zero centipawns.
type fakeEvaluator struct {
	mu    sync.Mutex
	calls int
	best  map[string]string
	gap   int
}

func newFakeEvaluator(gap int) *fakeEvaluator {
	return &fakeEvaluator{best: map[string]string{}, gap: gap}
}

func (f *fakeEvaluator) learn(g *pgn.Game) {
	prev := g.StartFEN
	for _, p := range g.Plies {
		f.best[engine.CanonicalFEN(prev)] = p.UCI
		prev = p.FEN
	}
}

func (f *fakeEvaluator) Evaluate(_ context.Context, fen string) (*engine.Evaluation, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	score := 30
	if fields := strings.Fields(fen); len(fields) > 1 && fields[1] == "b" {
		score = -30
	}
	move := f.best[engine.CanonicalFEN(fen)]
	if move == "" {
		move = "e2e4"
	}
	return &engine.Evaluation{FEN: fen, Depth: 16, Lines: []engine.Line{
		{Rank: 1, Move: move, ScoreCP: score, Depth: 16},
		{Rank: 2, Move: "h2h4", ScoreCP: score - f.gap, Depth: 16},
	}}, nil
}

func (f *fakeEvaluator) Close() error { return nil }

func (f *fakeEvaluator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fastWhiteTimes is sub-second uniform pacing for white's ten moves.
func fastWhiteTimes() *telemetry.Series {
	var samples []telemetry.Sample
	for ply := 1; ply <= 19; ply += 2 {
		samples = append(samples, telemetry.Sample{Ply: ply, Elapsed: 0.8})
	}
	s, err := telemetry.NewSeries(samples)
	if err != nil {
		panic(err)
	}
	return s
}

func TestServicePipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service with a taught evaluator", t, func() {
		game, err := pgn.Parse(ratedGame(1))
		So(err, ShouldBeNil)

		fake := newFakeEvaluator(120)
		fake.learn(game)

		svc := New(WithEvaluator(fake), WithWorkerCount(2), WithQueueSize(32))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When a perfectly played, uniformly fast game is submitted", func() {
			report, err := svc.Submit(ctx, queue.Job{
				Game:      game,
				Player:    "suspect",
				Telemetry: fastWhiteTimes(),
			})
			So(err, ShouldBeNil)

			Convey("Then the report is complete and critical", func() {
				So(report.Status, ShouldEqual, model.StatusOK)
				So(report.Ensemble.RiskLevel, ShouldEqual, model.RiskCritical)
				So(*report.Features.EngineAgreement, ShouldEqual, 1.0)
				So(*report.Features.TimingSuspicion, ShouldBeGreaterThanOrEqualTo, 0.85)
			})

			Convey("Then the explanation cites engine agreement and timing", func() {
				So(report.Explanation, ShouldContainSubstring, "matched the engine's first choice")
				So(report.Explanation, ShouldContainSubstring, "Move timing")
			})

			Convey("Then the report is stored and retrievable", func() {
				stored, err := svc.Store().Get(ctx, report.GameID)
				So(err, ShouldBeNil)
				So(stored.Ensemble.OverallScore, ShouldEqual, report.Ensemble.OverallScore)
			})

			Convey("Then re-submitting returns the stored report without re-analysis", func() {
				before := fake.callCount()
				again, err := svc.Submit(ctx, queue.Job{Game: game, Player: "suspect"})
				So(err, ShouldBeNil)
				So(again.GameID, ShouldEqual, report.GameID)
				So(fake.callCount(), ShouldEqual, before)
			})
		})

		Convey("When the batch context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			results := svc.AnalyzeBatch(canceled, []queue.Job{{Game: game, Player: "suspect"}})

			Convey("Then no game is launched", func() {
				So(results, ShouldHaveLength, 1)
				So(errors.Is(results[0].Err, ErrBatchCanceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with neither engine nor telemetry source", t, func() {
		game, err := pgn.Parse(ratedGame(1))
		So(err, ShouldBeNil)

		svc := New(WithWorkerCount(1), WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When the game is submitted without timing data", func() {
			report, err := svc.Submit(ctx, queue.Job{Game: game, Player: "suspect"})

			Convey("Then no report is produced and the cause is explicit", func() {
				So(report, ShouldBeNil)
				So(errors.Is(err, features.ErrInsufficientData), ShouldBeTrue)
			})

			Convey("Then the game may be submitted again after fixing its inputs", func() {
				_, err := svc.Submit(ctx, queue.Job{Game: game, Player: "suspect"})
				So(errors.Is(err, ErrDuplicateGame), ShouldBeFalse)
			})
		})
	})
}

func TestStopReleasesPendingBatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a single-worker service with a deep batch", t, func() {
		fake := newFakeEvaluator(120)
		var jobs []queue.Job
		for n := 1; n <= 12; n++ {
			game, err := pgn.Parse(ratedGame(n))
			So(err, ShouldBeNil)
			fake.learn(game)
			jobs = append(jobs, queue.Job{Game: game, Player: "suspect", Telemetry: fastWhiteTimes()})
		}

		svc := New(WithEvaluator(fake), WithWorkerCount(1), WithQueueSize(32))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When the service stops while the batch is in flight", func() {
			resCh := make(chan []GameResult, 1)
			go func() { resCh <- svc.AnalyzeBatch(ctx, jobs) }()
			svc.Stop()

			Convey("Then the batch returns with every slot decided", func() {
				var results []GameResult
				select {
				case results = <-resCh:
				case <-time.After(10 * time.Second):
					t.Fatal("batch blocked past shutdown")
				}
				So(results, ShouldHaveLength, len(jobs))
				for _, r := range results {
					So(r.Report != nil || r.Err != nil, ShouldBeTrue)
				}
			})
		})
	})
}

func TestAnalyzeOpponent(t *testing.T) {
	ctx := context.Background()

	Convey("Given a five-game winning session against stronger opposition", t, func() {
		fake := newFakeEvaluator(120)
		var jobs []queue.Job
		for n := 1; n <= 5; n++ {
			game, err := pgn.Parse(ratedGame(n))
			So(err, ShouldBeNil)
			fake.learn(game)
			jobs = append(jobs, queue.Job{Game: game, Telemetry: fastWhiteTimes()})
		}

		svc := New(WithEvaluator(fake), WithWorkerCount(3), WithQueueSize(32))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When the opponent is analyzed", func() {
			report, err := svc.AnalyzeOpponent(ctx, "suspect", jobs)
			So(err, ShouldBeNil)

			Convey("Then the streak is scored once over the joint sequence", func() {
				So(report.Features.GamesAnalyzed, ShouldEqual, 5)
				So(report.Features.LongestWinStreak, ShouldEqual, 5)
				// Five wins at ~0.34 each: roughly 1 in 200.
				So(*report.Features.ImprobabilityRatio, ShouldBeBetween, 100.0, 400.0)
				So(*report.Features.StreakImprobability, ShouldBeBetween, 0.0, 1.0)
			})

			Convey("Then the rapid session is flagged as a marathon", func() {
				So(report.StatusNote, ShouldContainSubstring, "marathon session")
			})

			Convey("Then the aggregate report is stored under the player", func() {
				So(report.GameID, ShouldEqual, "opponent:suspect")
				stored, err := svc.Store().Get(ctx, "opponent:suspect")
				So(err, ShouldBeNil)
				So(stored.Ensemble.RiskLevel, ShouldEqual, report.Ensemble.RiskLevel)
			})
		})
	})
}
