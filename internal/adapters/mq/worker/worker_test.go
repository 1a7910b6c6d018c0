package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/adapters/mq/queue"
	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/pkg/logger"
)

func init() {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]error
	delay time.Duration
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, job queue.Job) (*model.DetectionReport, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.seen = append(f.seen, job.ID)
	f.mu.Unlock()
	if err, ok := f.fail[job.ID]; ok {
		return nil, err
	}
	return &model.DetectionReport{GameID: job.ID, Status: model.StatusOK}, nil
}

type fakeSink struct {
	mu      sync.Mutex
	reports []*model.DetectionReport
}

func (f *fakeSink) Put(ctx context.Context, r *model.DetectionReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

func TestWorkerPool(t *testing.T) {
	Convey("Given a pool draining a queue of jobs", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemory(queue.WithCapacity(100))
		analyzer := &fakeAnalyzer{fail: map[string]error{"bad": errors.New("engine exploded")}}
		sink := &fakeSink{}

		var wg sync.WaitGroup
		var completions sync.Map
		enqueue := func(id string) {
			wg.Add(1)
			ok := q.Enqueue(ctx, queue.Job{
				ID: id,
				Complete: func(r *model.DetectionReport, err error) {
					completions.Store(id, err)
					wg.Done()
				},
			})
			So(ok, ShouldBeTrue)
		}

		pool := NewPool(q, analyzer, sink, 4)
		pool.Start(ctx)

		Convey("When jobs including a failing one are submitted", func() {
			for _, id := range []string{"g1", "g2", "bad", "g3"} {
				enqueue(id)
			}
			wg.Wait()

			Convey("Then successful reports reach the sink", func() {
				So(sink.count(), ShouldEqual, 3)
			})

			Convey("Then every completion fires, the failure with its error", func() {
				v, ok := completions.Load("bad")
				So(ok, ShouldBeTrue)
				So(v, ShouldNotBeNil)

				v, ok = completions.Load("g1")
				So(ok, ShouldBeTrue)
				So(v, ShouldBeNil)
			})

			Convey("Then shutdown completes cleanly", func() {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
				defer stop()
				So(pool.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestShutdownCompletesBacklog(t *testing.T) {
	Convey("Given a pool shut down under a deep backlog", t, func() {
		ctx := context.Background()
		q := queue.NewInMemory(queue.WithCapacity(64))
		analyzer := &fakeAnalyzer{delay: time.Millisecond}
		sink := &fakeSink{}

		const jobs = 50
		var wg sync.WaitGroup
		var analyzed, dropped atomic.Int64
		for i := 0; i < jobs; i++ {
			wg.Add(1)
			ok := q.Enqueue(ctx, queue.Job{
				ID: fmt.Sprintf("g%d", i),
				Complete: func(r *model.DetectionReport, err error) {
					if r != nil {
						analyzed.Add(1)
					} else {
						dropped.Add(1)
					}
					wg.Done()
				},
			})
			So(ok, ShouldBeTrue)
		}

		pool := NewPool(q, analyzer, sink, 2)
		pool.Start(ctx)

		Convey("When the queue closes and the pool stops mid-backlog", func() {
			So(q.Close(), ShouldBeNil)
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			So(pool.Shutdown(shutdownCtx), ShouldBeNil)
			q.Drain(queue.ErrShutdown)
			wg.Wait()

			Convey("Then every job completes exactly once, analyzed or failed", func() {
				So(analyzed.Load()+dropped.Load(), ShouldEqual, jobs)
				So(sink.count(), ShouldEqual, int(analyzed.Load()))
			})
		})
	})
}
