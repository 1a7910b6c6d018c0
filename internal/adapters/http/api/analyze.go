package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/app"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
)

// analyzeRequest is the POST /analyze body. PGN may hold one game or a
// multi-game stream; multi-game submissions aggregate per opponent and
// require a player name. Telemetry applies to single-game submissions only;
// multi-game streams fall back to clock annotations.
type analyzeRequest struct {
	PGN       string             `json:"pgn"`
	Player    string             `json:"player,omitempty"`
	Telemetry []telemetry.Sample `json:"telemetry,omitempty"`
	// GameID overrides the identity derived from the game headers. Useful
	// when the headers carry URLs that are awkward as path segments.
	GameID string `json:"game_id,omitempty"`
}

func (a analyzeRequest) validate() error {
	if strings.TrimSpace(a.PGN) == "" {
		return errors.New("missing pgn")
	}
	return nil
}

// AnalyzeHandler handles analysis submissions.
type AnalyzeHandler struct {
	svc Analyzer
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(svc Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

// HandleAnalyze handles POST /analyze requests. The finished report comes
// back in the response; analysis blocks the request.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	games, err := pgn.ParseAll(req.PGN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed_pgn", err)
		return
	}

	if len(games) == 1 {
		h.analyzeSingle(w, r, games[0], req)
		return
	}

	if req.Player == "" {
		writeError(w, http.StatusBadRequest, "missing_player",
			errors.New("multi-game submissions require a player name"))
		return
	}
	jobs := make([]queue.Job, len(games))
	for i, g := range games {
		jobs[i] = queue.Job{Game: g}
	}
	report, err := h.svc.AnalyzeOpponent(r.Context(), req.Player, jobs)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AnalyzeHandler) analyzeSingle(w http.ResponseWriter, r *http.Request, g *pgn.Game, req analyzeRequest) {
	job := queue.Job{ID: req.GameID, Game: g, Player: req.Player}
	if len(req.Telemetry) > 0 {
		series, err := telemetry.NewSeries(req.Telemetry)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed_telemetry", err)
			return
		}
		job.Telemetry = series
	}

	report, err := h.svc.Submit(r.Context(), job)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeAnalysisError maps pipeline errors onto HTTP statuses, keeping "no
// result" distinguishable from transport problems.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, app.ErrDuplicateGame):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, app.ErrUnknownPlayer):
		writeError(w, http.StatusBadRequest, "unknown_player", err)
	case errors.Is(err, features.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err)
	case errors.Is(err, app.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
