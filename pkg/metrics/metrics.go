// Package metrics exposes Prometheus metrics for the detection service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chessguard"

var (
	// Pipeline metrics.
	gamesAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "games_analyzed_total",
		Help:      "Games analyzed, labeled by final status (ok, partial, failed).",
	}, []string{"status"})

	analysisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "analysis_duration_seconds",
		Help:      "Wall clock time for a full single-game analysis.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	riskLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "risk_level_total",
		Help:      "Reports produced, labeled by risk level.",
	}, []string{"level"})

	verdictScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "ensemble_score",
		Help:      "Distribution of emitted ensemble scores.",
		Buckets:   []float64{0.1, 0.25, 0.5, 0.7, 0.85, 0.95, 1.0},
	})

	// Engine adapter metrics.
	engineEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Positions evaluated by the UCI engine.",
	})

	engineFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "failures_total",
		Help:      "Engine evaluations that failed after retry.",
	})

	engineRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "retries_total",
		Help:      "Engine evaluations retried after a timeout or crash.",
	})

	engineLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall clock time per engine evaluation.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "cache_hits_total",
		Help:      "Evaluation cache hits.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "cache_misses_total",
		Help:      "Evaluation cache misses.",
	})

	// Queue / worker metrics.
	queueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "size",
		Help:      "Jobs currently queued.",
	})

	queueCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "capacity",
		Help:      "Configured queue capacity.",
	})

	queueRejects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "rejects_total",
		Help:      "Jobs rejected because the queue was full or closed.",
	})

	workerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "count",
		Help:      "Number of running analysis workers.",
	})

	workerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "errors_total",
		Help:      "Analysis jobs that ended in error.",
	})

	// HTTP metrics.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, labeled by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Pipeline helpers.

func RecordGameAnalyzed(status string)      { gamesAnalyzed.WithLabelValues(status).Inc() }
func RecordAnalysisLatency(seconds float64) { analysisLatency.Observe(seconds) }
func RecordRiskLevel(level string)          { riskLevels.WithLabelValues(level).Inc() }
func RecordEnsembleScore(score float64)     { verdictScores.Observe(score) }

// Engine helpers.

func RecordEngineEvaluation()             { engineEvaluations.Inc() }
func RecordEngineFailure()                { engineFailures.Inc() }
func RecordEngineRetry()                  { engineRetries.Inc() }
func RecordEngineLatency(seconds float64) { engineLatency.Observe(seconds) }
func RecordCacheHit()                     { cacheHits.Inc() }
func RecordCacheMiss()                    { cacheMisses.Inc() }

// Queue / worker helpers.

func UpdateQueueSize(n int)     { queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { queueCapacity.Set(float64(n)) }
func RecordQueueReject()        { queueRejects.Inc() }
func UpdateWorkerCount(n int)   { workerCount.Set(float64(n)) }
func RecordWorkerError()        { workerErrors.Inc() }

// HTTP helpers.

func RecordHTTPRequest(route, code string) { httpRequests.WithLabelValues(route, code).Inc() }
func RecordHTTPLatency(route string, seconds float64) {
	httpLatency.WithLabelValues(route).Observe(seconds)
}
