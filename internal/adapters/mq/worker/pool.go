package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chessguard/chessguard/pkg/metrics"
)

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
}

// NewPool builds size workers sharing the queue, analyzer and sink.
func NewPool(q Queue, a Analyzer, s Sink, size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{workers: make([]*Worker, size)}
	for i := range p.workers {
		named := append([]Option{WithName(fmt.Sprintf("worker-%d", i))}, opts...)
		p.workers[i] = New(q, a, s, named...)
	}
	return p
}

// Start launches every worker loop.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerCount(len(p.workers))
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown stops all workers, waiting for in-flight jobs.
func (p *Pool) Shutdown(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		w := w
		g.Go(func() error { return w.Shutdown(ctx) })
	}
	err := g.Wait()
	metrics.UpdateWorkerCount(0)
	return err
}
