// Package api exposes the detection pipeline over HTTP. It marshals
// detection reports only; no analysis logic lives here.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/app"
	"github.com/chessguard/chessguard/internal/domain/model"
)

// Analyzer is the slice of the application service the handlers need.
type Analyzer interface {
	Submit(ctx context.Context, job queue.Job) (*model.DetectionReport, error)
	AnalyzeOpponent(ctx context.Context, player string, jobs []queue.Job) (*model.DetectionReport, error)
	Started() bool
	Snapshot(ctx context.Context) app.Stats
}

// ReportReader reads stored reports. The repository store satisfies it.
type ReportReader interface {
	Get(ctx context.Context, gameID string) (*model.DetectionReport, error)
	List(ctx context.Context) []*model.DetectionReport
}

// Server wires HTTP routes for the detection API.
type Server struct {
	analyze *AnalyzeHandler
	reports *ReportsHandler
	health  *HealthHandler
	stats   *StatsHandler
}

// NewServer creates an API server over the given service and report store.
func NewServer(svc Analyzer, reports ReportReader) *Server {
	return &Server{
		analyze: NewAnalyzeHandler(svc),
		reports: NewReportsHandler(reports),
		health:  NewHealthHandler(svc),
		stats:   NewStatsHandler(svc),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.stats.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyze.HandleAnalyze, "analyze"))
	mux.HandleFunc("/reports", MetricsMiddleware(s.reports.HandleList, "reports"))
	mux.HandleFunc("/reports/", MetricsMiddleware(s.reports.HandleGet, "report"))
	mux.Handle("/metrics", promhttp.Handler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
