package features

import (
	"math"
	"time"

	"github.com/chessguard/chessguard/internal/domain/model"
)

// Streak scoring constants. Win probability folds in a baseline draw rate
// and is capped so no single game can zero out or saturate a streak.
const (
	drawRate     = 0.10
	minWinProb   = 0.01
	maxWinProb   = 0.95
	minStreakLen = 3
	// A streak with odds of one in ten million scores 1.0.
	improbabilityLogCeil = 7.0

	// Marathon play: sustained rapid games within one streak.
	marathonGamesPerHour = 8.0
	marathonMinGames     = 5
)

// Outcome is one game in an opponent's ordered history. Played may be the
// zero time when the source carries no timestamps.
type Outcome struct {
	PlayerRating   float64
	OpponentRating float64
	Won            bool
	Played         time.Time
}

// ExpectedScore is the Elo expectation of the player against the opponent.
func ExpectedScore(playerRating, opponentRating float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponentRating-playerRating)/400.0))
}

// WinProbability converts the Elo expectation into a decisive-win
// probability, discounting the draw share and clamping the tails.
func WinProbability(playerRating, opponentRating float64) float64 {
	p := ExpectedScore(playerRating, opponentRating) * (1 - drawRate/2)
	return math.Min(maxWinProb, math.Max(minWinProb, p))
}

// StreakResult summarizes win-streak improbability over a game sequence.
type StreakResult struct {
	LongestStreak      int
	ImprobabilityRatio float64 // 1 / P(most extreme observed streak)
	Score              float64 // log-scaled to [0,1]

	// Session pace of the most improbable run.
	GamesPerHour float64
	Marathon     bool
}

// AnalyzeStreaks walks an ordered game history, finds maximal win runs, and
// scores the least probable one. Runs shorter than minStreakLen are noise
// and ignored. Probability of a run is the product of per-game win
// probabilities, so the score never decreases as a run extends.
func AnalyzeStreaks(history []Outcome) StreakResult {
	var res StreakResult

	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		length := end - runStart
		if length > res.LongestStreak {
			res.LongestStreak = length
		}
		if length >= minStreakLen {
			prob := 1.0
			for _, o := range history[runStart:end] {
				prob *= WinProbability(o.PlayerRating, o.OpponentRating)
			}
			if ratio := 1.0 / prob; ratio > res.ImprobabilityRatio {
				res.ImprobabilityRatio = ratio
				res.GamesPerHour, res.Marathon = sessionRate(history[runStart:end])
			}
		}
		runStart = -1
	}

	for i, o := range history {
		if o.Won {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(history))

	if res.ImprobabilityRatio > 0 {
		res.Score = math.Min(1, math.Log10(res.ImprobabilityRatio)/improbabilityLogCeil)
	}
	return res
}

// sessionRate measures the pace of a run from its first and last
// timestamps. A run is a marathon when it sustains more than eight games
// an hour over at least five games. Missing timestamps disable the check.
func sessionRate(run []Outcome) (float64, bool) {
	first, last := run[0].Played, run[len(run)-1].Played
	if first.IsZero() || last.IsZero() || !last.After(first) {
		return 0, false
	}
	rate := float64(len(run)) / last.Sub(first).Hours()
	return rate, rate > marathonGamesPerHour && len(run) >= marathonMinGames
}

// ApplyStreaks writes a streak analysis into an aggregated feature vector.
func ApplyStreaks(fv *model.FeatureVector, res StreakResult) {
	fv.LongestWinStreak = res.LongestStreak
	if res.ImprobabilityRatio > 0 {
		fv.ImprobabilityRatio = model.Float(res.ImprobabilityRatio)
		fv.StreakImprobability = model.Float(res.Score)
	}
}
