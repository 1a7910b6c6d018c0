package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chessguard/chessguard/pkg/metrics"
)

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(next http.HandlerFunc, route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(route, strconv.Itoa(wrapped.statusCode))
		metrics.RecordHTTPLatency(route, time.Since(start).Seconds())
	}
}

// responseWriter captures the status code for metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
