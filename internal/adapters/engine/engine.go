// Package engine runs UCI chess engines as subprocesses and serves
// position evaluations to the detection pipeline.
//
// A Pool owns a fixed set of engine processes. Each process serves one
// request at a time; concurrent callers queue on the pool. Results are
// memoized in a concurrency-safe cache keyed by canonical position and
// search depth, so transpositions and re-analysis are free.
package engine

import (
	"context"
	"fmt"
	"strings"
)

// mateScore folds mate-in-N scores into the centipawn scale. A mate in one
// scores just below mateScore; longer mates score progressively less.
const mateScore = 30_000

// Line is one ranked engine line for a position.
type Line struct {
	Rank    int      `json:"rank"` // 1 is the engine's best
	Move    string   `json:"move"` // coordinate notation
	ScoreCP int      `json:"score_cp"`
	Mate    int      `json:"mate,omitempty"` // signed moves to mate, 0 when none
	Depth   int      `json:"depth"`
	PV      []string `json:"pv,omitempty"`
}

// Evaluation is the engine's view of one position: the deepest reported
// line per rank before bestmove. Lines is never empty.
type Evaluation struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
	Lines []Line `json:"lines"`
}

// Best returns the engine's top line.
func (e *Evaluation) Best() Line { return e.Lines[0] }

// Gap returns the centipawn distance between the top two lines. The second
// return is false when only one line exists (mate, stalemate, or MultiPV 1).
func (e *Evaluation) Gap() (int, bool) {
	if len(e.Lines) < 2 {
		return 0, false
	}
	return e.Lines[0].ScoreCP - e.Lines[1].ScoreCP, true
}

// Evaluator is the surface the pipeline depends on. *Pool implements it;
// tests substitute canned evaluators.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string) (*Evaluation, error)
	Close() error
}

// CanonicalFEN strips the halfmove clock and fullmove number from a FEN,
// keeping side to move, castling and en passant rights. Positions that
// differ only in move counters share engine evaluations.
func CanonicalFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}

// cacheKey is the memoization key for one (position, depth) pair.
func cacheKey(fen string, depth int) string {
	return fmt.Sprintf("%s|%d", CanonicalFEN(fen), depth)
}
