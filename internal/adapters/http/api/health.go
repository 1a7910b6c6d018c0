package api

import "net/http"

// HealthHandler reports service liveness.
type HealthHandler struct {
	svc Analyzer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc Analyzer) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Started() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
