package app

import (
	"time"

	"github.com/chessguard/chessguard/internal/adapters/engine"
	"github.com/chessguard/chessguard/internal/config"
	"github.com/chessguard/chessguard/internal/domain/detect"
	"github.com/chessguard/chessguard/internal/domain/ensemble"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize bounds the analysis job queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the submitted-game idempotency cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithEngine configures a UCI engine pool the service starts and owns.
// An empty path disables engine evaluation.
func WithEngine(path string, poolSize, depth int, timeout time.Duration) Option {
	return func(s *Service) {
		s.enginePath = path
		if poolSize > 0 {
			s.enginePoolSize = poolSize
		}
		if depth > 0 {
			s.engineDepth = depth
		}
		if timeout > 0 {
			s.engineTimeout = timeout
		}
	}
}

// WithEvaluator injects an evaluator. The caller keeps its lifecycle; the
// service never closes it.
func WithEvaluator(e engine.Evaluator) Option {
	return func(s *Service) {
		s.evaluator = e
	}
}

// WithEvalConcurrency bounds concurrent position evaluations per game.
func WithEvalConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.evalParallel = n
		}
	}
}

// WithModels replaces the default detection models.
func WithModels(models ...detect.Model) Option {
	return func(s *Service) {
		if len(models) > 0 {
			s.models = models
		}
	}
}

// WithThresholds sets the risk tier boundaries.
func WithThresholds(t ensemble.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithModelWeights sets per-model ensemble weights and the default for
// unlisted models.
func WithModelWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *Service) {
		if weights != nil {
			s.modelWeights = weights
		}
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// WithExtractorOptions configures the feature extractor thresholds.
func WithExtractorOptions(opts ...features.Option) Option {
	return func(s *Service) {
		s.extractorOpts = opts
	}
}

// FromConfig maps process configuration onto service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithEngine(cfg.EnginePath, cfg.EnginePoolSize, cfg.EngineDepth,
			time.Duration(cfg.EngineTimeoutMS)*time.Millisecond),
		WithThresholds(ensemble.Thresholds{
			Critical: cfg.RiskCritical,
			High:     cfg.RiskHigh,
			Moderate: cfg.RiskModerate,
		}),
		WithModelWeights(cfg.ModelWeights, cfg.DefaultModelWeight),
		WithExtractorOptions(
			features.WithBookPlies(cfg.BookPlies),
			features.WithCriticalSwingCP(cfg.CriticalSwingCP),
			features.WithForcedGapCP(cfg.ForcedGapCP),
		),
	}
}
