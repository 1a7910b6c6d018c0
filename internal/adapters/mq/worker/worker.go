// Package worker runs the analysis workers that drain the job queue.
package worker

import (
	"context"
	"fmt"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/pkg/logger"
	"github.com/chessguard/chessguard/pkg/metrics"
)

// Analyzer turns a job into a detection report. Degraded analyses return a
// partial report and nil error; only unrecoverable games return an error.
type Analyzer interface {
	Analyze(ctx context.Context, job queue.Job) (*model.DetectionReport, error)
}

// Sink receives finished reports.
type Sink interface {
	Put(ctx context.Context, r *model.DetectionReport) error
}

// Queue is how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker is one analysis loop.
type Worker struct {
	queue    Queue
	analyzer Analyzer
	sink     Sink
	name     string

	shutdown chan struct{}
	done     chan struct{}
	log      logger.Logger
}

// New builds a worker. Run must be called exactly once.
func New(q Queue, a Analyzer, s Sink, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		analyzer: a,
		sink:     s,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes jobs until the context is canceled, the queue closes, or
// Shutdown is called. The dequeue context is canceled on exit so a job the
// queue has already handed over is failed instead of stranded.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the loop after the in-flight job finishes.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.log.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("worker %s shutdown: %w", w.name, ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	report, err := w.analyzer.Analyze(ctx, job)
	if err != nil {
		metrics.RecordWorkerError()
		w.log.Error(ctx, "analysis failed",
			logger.String("job_id", job.ID),
			logger.Error(err))
	}
	if report != nil {
		if putErr := w.sink.Put(ctx, report); putErr != nil {
			metrics.RecordWorkerError()
			w.log.Error(ctx, "report store failed",
				logger.String("job_id", job.ID),
				logger.Error(putErr))
		}
	}
	if job.Complete != nil {
		job.Complete(report, err)
	}
}
