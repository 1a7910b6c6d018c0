package api

import "net/http"

// StatsHandler serves pipeline statistics.
type StatsHandler struct {
	svc Analyzer
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc Analyzer) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Snapshot(r.Context()))
}
