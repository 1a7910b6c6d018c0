package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chessguard/chessguard/pkg/logger"
	"github.com/chessguard/chessguard/pkg/metrics"
)

// Pool runs a fixed number of engine processes and serializes evaluation
// requests onto them. Safe for concurrent use.
type Pool struct {
	path    string
	size    int
	depth   int
	multiPV int
	timeout time.Duration
	log     logger.Logger
	cache   *Cache

	procs chan *process

	mu     sync.Mutex
	live   int // processes started and not yet killed
	closed bool
}

// NewPool starts size engine processes from the binary at path. Startup is
// eager: a broken binary fails here, not on the first evaluation.
func NewPool(path string, opts ...Option) (*Pool, error) {
	p := &Pool{
		path:    path,
		size:    2,
		depth:   16,
		multiPV: 2,
		timeout: 10 * time.Second,
		log:     logger.Get().Named("engine"),
		cache:   NewCache(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.procs = make(chan *process, p.size)
	for i := 0; i < p.size; i++ {
		proc, err := startProcess(p.path, p.multiPV)
		if err != nil {
			p.drainAndKill()
			return nil, err
		}
		p.live++
		p.procs <- proc
	}

	p.log.Info(context.Background(), "engine pool started",
		logger.String("path", path),
		logger.Int("size", p.size),
		logger.Int("depth", p.depth))
	return p, nil
}

// Depth returns the configured search depth.
func (p *Pool) Depth() int { return p.depth }

// Cache returns the pool's evaluation cache.
func (p *Pool) Cache() *Cache { return p.cache }

// Evaluate returns the engine's evaluation of fen at the pool's depth.
// Cached positions never touch a process. A failed call is retried once on
// a fresh process; a second failure surfaces ErrUnavailable.
func (p *Pool) Evaluate(ctx context.Context, fen string) (*Evaluation, error) {
	if ev, ok := p.cache.Get(fen, p.depth); ok {
		metrics.RecordCacheHit()
		return ev, nil
	}
	metrics.RecordCacheMiss()

	start := time.Now()
	ev, err := p.evaluateOnce(ctx, fen)
	if err != nil && ctx.Err() == nil {
		metrics.RecordEngineRetry()
		p.log.Warn(ctx, "evaluation failed, retrying",
			logger.String("fen", fen), logger.Error(err))
		ev, err = p.evaluateOnce(ctx, fen)
	}
	metrics.RecordEngineLatency(time.Since(start).Seconds())

	if err != nil {
		metrics.RecordEngineFailure()
		return nil, err
	}
	metrics.RecordEngineEvaluation()
	p.cache.Put(fen, p.depth, ev)
	return ev, nil
}

// evaluateOnce acquires a process, runs one search under the pool timeout,
// and returns the process (or a replacement) to the pool.
func (p *Pool) evaluateOnce(ctx context.Context, fen string) (*Evaluation, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.mu.Unlock()

	var proc *process
	select {
	case proc = <-p.procs:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type result struct {
		ev  *Evaluation
		err error
	}
	done := make(chan result, 1)
	go func() {
		ev, err := proc.evaluate(fen, p.depth)
		done <- result{ev, err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			// The process is in an unknown protocol state. Replace it.
			p.discard(proc)
			p.replace()
			return nil, r.err
		}
		p.procs <- proc
		return r.ev, nil
	case <-timer.C:
		p.discard(proc)
		p.replace()
		return nil, fmt.Errorf("%w: evaluation exceeded %s", ErrUnavailable, p.timeout)
	case <-ctx.Done():
		p.discard(proc)
		p.replace()
		return nil, ctx.Err()
	}
}

func (p *Pool) discard(proc *process) {
	proc.kill()
	p.mu.Lock()
	p.live--
	p.mu.Unlock()
}

// replace restarts one engine process so the pool keeps its size. A failed
// restart leaves the slot empty; remaining processes carry the load.
func (p *Pool) replace() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	proc, err := startProcess(p.path, p.multiPV)
	if err != nil {
		p.log.Error(context.Background(), "engine restart failed", logger.Error(err))
		return
	}
	if !p.adopt(proc) {
		// Close won the race while the process was starting; it is not in
		// the live count, so shut it down here.
		proc.close()
	}
}

// adopt counts a freshly started process live and returns it to the pool.
// It refuses when the pool closed while the process was starting, because
// drainAndKill has already snapshotted the live count and would never
// collect it.
func (p *Pool) adopt(proc *process) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.live++
	p.mu.Unlock()
	p.procs <- proc
	return true
}

// Close shuts every process down, waiting for in-flight evaluations to
// release their process first. Idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.drainAndKill()
	p.log.Info(context.Background(), "engine pool closed")
	return nil
}

// drainAndKill collects every live process, waiting for in-flight
// evaluations to return theirs, and shuts them down.
func (p *Pool) drainAndKill() {
	p.mu.Lock()
	n := p.live
	p.live = 0
	p.mu.Unlock()

	deadline := time.After(10 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case proc := <-p.procs:
			proc.close()
		case <-deadline:
			return
		}
	}
}
