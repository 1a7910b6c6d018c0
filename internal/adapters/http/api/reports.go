package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/chessguard/chessguard/internal/adapters/repository"
)

// ReportsHandler serves stored detection reports.
type ReportsHandler struct {
	reports ReportReader
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports ReportReader) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// HandleList handles GET /reports requests, in insertion order.
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.reports.List(r.Context()))
}

// HandleGet handles GET /reports/{id} requests. IDs derived from game URLs
// contain slashes; clients escape those with url.PathEscape.
func (h *ReportsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/reports/")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing report id"))
		return
	}
	report, err := h.reports.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
