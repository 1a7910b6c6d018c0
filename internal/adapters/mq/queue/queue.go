// Package queue holds the bounded in-memory job queue between submission
// and the analysis workers.
package queue

import (
	"context"
	"sync"

	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/internal/domain/pgn"
	"github.com/chessguard/chessguard/internal/domain/telemetry"
	"github.com/chessguard/chessguard/pkg/metrics"
)

const defaultCapacity = 1000

// Job is one game analysis request flowing through the queue.
type Job struct {
	ID        string
	Game      *pgn.Game
	Telemetry *telemetry.Series
	// Player names whose moves are analyzed; empty means white.
	Player string
	// Complete, when set, is invoked exactly once with the finished report
	// or the fatal error. Batch submitters use it to block until every
	// constituent game lands. Jobs that never reach a worker are completed
	// with ErrShutdown rather than dropped.
	Complete func(report *model.DetectionReport, err error)
}

// Fail completes the job without a report. Every path that takes a job out
// of circulation without analyzing it must call this, or submitters blocked
// on Complete hang.
func (j Job) Fail(err error) {
	if j.Complete != nil {
		j.Complete(nil, err)
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. Returns false when the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool
	// Dequeue returns the consumer channel. It closes when the queue does.
	Dequeue(ctx context.Context) <-chan Job
	Len() int
	Close() error
	IsClosed() bool
}

// InMemory implements Queue over a buffered channel.
type InMemory struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemory builds a queue with the configured capacity.
func NewInMemory(opts ...Option) *InMemory {
	q := &InMemory{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job without blocking.
func (q *InMemory) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueReject()
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueReject()
		return false
	default:
		metrics.RecordQueueReject()
		return false
	}
}

// Dequeue returns the channel workers consume from. A job already pulled off
// the queue when ctx is canceled is failed with ErrShutdown, never silently
// discarded.
func (q *InMemory) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			select {
			case out <- j:
				metrics.UpdateQueueSize(len(q.jobs))
			case <-ctx.Done():
				j.Fail(ErrShutdown)
				return
			}
		}
	}()
	return out
}

// Len returns the number of queued jobs.
func (q *InMemory) Len() int { return len(q.jobs) }

// Close stops intake and lets consumers drain what remains. Idempotent.
func (q *InMemory) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// Drain fails every job still buffered with err and returns how many there
// were. Callers run it after the consumers have stopped, so no submitter is
// left blocked on a Complete that will never fire.
func (q *InMemory) Drain(err error) int {
	n := 0
	for {
		select {
		case j, ok := <-q.jobs:
			if !ok {
				metrics.UpdateQueueSize(0)
				return n
			}
			j.Fail(err)
			n++
		default:
			metrics.UpdateQueueSize(len(q.jobs))
			return n
		}
	}
}

// IsClosed reports whether Close has been called.
func (q *InMemory) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
