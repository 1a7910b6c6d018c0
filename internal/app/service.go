// Package app wires the detection pipeline end to end: games and telemetry
// in, stored detection reports out.
package app

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/chessguard/chessguard/internal/adapters/engine"
	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/adapters/mq/worker"
	"github.com/chessguard/chessguard/internal/adapters/repository"
	"github.com/chessguard/chessguard/internal/domain/dedupe"
	"github.com/chessguard/chessguard/internal/domain/detect"
	"github.com/chessguard/chessguard/internal/domain/ensemble"
	"github.com/chessguard/chessguard/internal/domain/features"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/pkg/logger"
)

const stopTimeout = 15 * time.Second

// Service owns the analysis pipeline components and their lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components, built on Start.
	store     *repository.Store
	jobs      *queue.InMemory
	workers   *worker.Pool
	evaluator engine.Evaluator
	extractor *features.Extractor
	models    []detect.Model
	scorer    *ensemble.Scorer
	deduper   dedupe.Deduper

	// ownsEngine marks an evaluator the service started itself, as opposed
	// to one injected via WithEvaluator whose caller keeps its lifecycle.
	ownsEngine bool

	// Configuration.
	workerCount    int
	queueSize      int
	dedupeSize     int
	enginePath     string
	enginePoolSize int
	engineDepth    int
	engineTimeout  time.Duration
	evalParallel   int
	modelWeights   map[string]float64
	defaultWeight  float64
	thresholds     ensemble.Thresholds
	extractorOpts  []features.Option

	started bool
	stopCh  chan struct{}
	log     logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      1_000,
		dedupeSize:     100_000,
		enginePoolSize: 2,
		engineDepth:    16,
		engineTimeout:  10 * time.Second,
		evalParallel:   4,
		modelWeights:   map[string]float64{},
		defaultWeight:  1.0,
		thresholds:     ensemble.DefaultThresholds,
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline components and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get().Named("app")
	}

	s.store = repository.NewStore()
	s.deduper = dedupe.NewInMemory(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemory(queue.WithCapacity(s.queueSize))

	if s.extractor == nil {
		s.extractor = features.NewExtractor(s.extractorOpts...)
	}
	if len(s.models) == 0 {
		s.models = []detect.Model{detect.NewRuleModel(), detect.NewLogisticModel()}
	}

	scorerOpts := []ensemble.Option{
		ensemble.WithThresholds(s.thresholds),
		ensemble.WithDefaultWeight(s.defaultWeight),
	}
	for name, weight := range s.modelWeights {
		scorerOpts = append(scorerOpts, ensemble.WithModelWeight(name, weight))
	}
	s.scorer = ensemble.NewScorer(scorerOpts...)

	if s.evaluator == nil && s.enginePath != "" {
		pool, err := engine.NewPool(s.enginePath,
			engine.WithPoolSize(s.enginePoolSize),
			engine.WithDepth(s.engineDepth),
			engine.WithTimeout(s.engineTimeout),
		)
		if err != nil {
			// Engine-dependent features degrade; the rest still runs.
			s.log.Warn(ctx, "engine unavailable, analyzing without evaluations",
				logger.String("engine_path", s.enginePath),
				logger.Error(err))
		} else {
			s.evaluator = pool
			s.ownsEngine = true
		}
	}

	s.workers = worker.NewPool(s.jobs, s, s.store, s.workerCount)
	s.workers.Start(ctx)

	s.started = true
	s.log.Info(ctx, "detection service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Bool("engine", s.evaluator != nil),
	)
	return nil
}

// Stop drains the workers and releases the engine processes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	_ = s.jobs.Close()
	if err := s.workers.Shutdown(ctx); err != nil {
		s.log.Warn(ctx, "worker shutdown incomplete", logger.Error(err))
	}
	// Jobs still buffered after the workers stop must complete as failed,
	// or batch submitters blocked on them never return.
	if n := s.jobs.Drain(queue.ErrShutdown); n > 0 {
		s.log.Warn(ctx, "failed queued jobs at shutdown", logger.Int("jobs", n))
	}
	if s.ownsEngine && s.evaluator != nil {
		if err := s.evaluator.Close(); err != nil {
			s.log.Warn(ctx, "engine shutdown failed", logger.Error(err))
		}
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.log.Info(ctx, "detection service stopped")
}

// Started reports whether the pipeline is running.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Store exposes the report repository to read-only consumers.
func (s *Service) Store() *repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Stats is a point-in-time snapshot of pipeline state.
type Stats struct {
	Reports     int                     `json:"reports"`
	ByRisk      map[model.RiskLevel]int `json:"by_risk"`
	QueueDepth  int                     `json:"queue_depth"`
	SeenGames   int                     `json:"seen_games"`
	Workers     int                     `json:"workers"`
	EngineReady bool                    `json:"engine_ready"`
}

// Snapshot gathers current pipeline statistics.
func (s *Service) Snapshot(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Workers: s.workerCount}
	if !s.started {
		return st
	}
	st.Reports, st.ByRisk = s.store.Count(ctx)
	st.QueueDepth = s.jobs.Len()
	st.SeenGames = s.deduper.Size()
	st.EngineReady = s.evaluator != nil
	return st
}
