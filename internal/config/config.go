// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults live in New; Load layers file and environment on top.
// - External errors are wrapped via this package's sentinel errors.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// EnginePath is the UCI engine executable. Empty disables
	// engine-dependent features; rule-based analysis still runs.
	EnginePath string `koanf:"engine_path"`

	// EnginePoolSize is the number of engine processes to keep alive.
	// Each process serves one evaluation at a time.
	EnginePoolSize int `koanf:"engine_pool_size"`

	// EngineDepth is the search depth requested per evaluation.
	EngineDepth int `koanf:"engine_depth"`

	// EngineTimeoutMS is the hard wall-clock limit per evaluation call.
	EngineTimeoutMS int `koanf:"engine_timeout_ms"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the submitted-game idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// BookPlies is the number of opening plies discounted from
	// adjusted engine agreement.
	BookPlies int `koanf:"book_plies"`

	// CriticalSwingCP flags a ply as tactically sharp when the gap
	// between the engine's top two moves exceeds this many centipawns.
	CriticalSwingCP int `koanf:"critical_swing_cp"`

	// ForcedGapCP treats a ply as forced (discounted from adjusted
	// agreement) when the top-two gap exceeds this many centipawns.
	ForcedGapCP int `koanf:"forced_gap_cp"`

	// Risk tier thresholds applied to the ensemble score.
	RiskCritical float64 `koanf:"risk_critical"`
	RiskHigh     float64 `koanf:"risk_high"`
	RiskModerate float64 `koanf:"risk_moderate"`

	// ModelWeights maps detection model names to ensemble weights.
	// Unlisted models default to DefaultModelWeight.
	ModelWeights map[string]float64 `koanf:"model_weights"`

	// DefaultModelWeight is used for models absent from ModelWeights.
	DefaultModelWeight float64 `koanf:"default_model_weight"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		EnginePath:         "",
		EnginePoolSize:     2,
		EngineDepth:        16,
		EngineTimeoutMS:    10_000,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1_000,
		DedupeSize:         100_000,
		BookPlies:          10,
		CriticalSwingCP:    150,
		ForcedGapCP:        200,
		RiskCritical:       0.85,
		RiskHigh:           0.70,
		RiskModerate:       0.50,
		ModelWeights:       map[string]float64{},
		DefaultModelWeight: 1.0,
	}
}
