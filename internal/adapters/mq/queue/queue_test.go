package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chessguard/chessguard/internal/domain/model"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with small capacity", t, func() {
		q := NewInMemory(WithCapacity(2))

		Convey("When jobs are enqueued within capacity", func() {
			So(q.Enqueue(ctx, Job{ID: "a"}), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{ID: "b"}), ShouldBeTrue)

			Convey("Then the queue reports its length", func() {
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then a third enqueue is rejected, not blocked", func() {
				So(q.Enqueue(ctx, Job{ID: "c"}), ShouldBeFalse)
			})

			Convey("Then dequeue yields jobs in order", func() {
				jobs := q.Dequeue(ctx)
				first := <-jobs
				second := <-jobs
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, Job{ID: "a"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then new jobs are rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, Job{ID: "late"}), ShouldBeFalse)
			})

			Convey("Then consumers drain the backlog and the channel closes", func() {
				jobs := q.Dequeue(ctx)
				j, ok := <-jobs
				So(ok, ShouldBeTrue)
				So(j.ID, ShouldEqual, "a")

				select {
				case _, ok := <-jobs:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel never closed")
				}
			})

			Convey("Then closing again is harmless", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}

func TestJobsNeverVanish(t *testing.T) {
	ctx := context.Background()

	Convey("Given a buffered job with a completion callback", t, func() {
		q := NewInMemory(WithCapacity(4))
		failed := make(chan error, 4)
		enqueue := func(id string) {
			ok := q.Enqueue(ctx, Job{
				ID: id,
				Complete: func(r *model.DetectionReport, err error) {
					failed <- err
				},
			})
			So(ok, ShouldBeTrue)
		}
		enqueue("g1")

		Convey("When the consumer context is canceled with the job in hand", func() {
			dequeueCtx, cancel := context.WithCancel(ctx)
			jobs := q.Dequeue(dequeueCtx)
			cancel()

			Convey("Then the job completes as failed and the channel closes", func() {
				select {
				case err := <-failed:
					So(errors.Is(err, ErrShutdown), ShouldBeTrue)
				case <-time.After(time.Second):
					t.Fatal("held job was dropped without completing")
				}
				select {
				case _, ok := <-jobs:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel never closed")
				}
			})
		})

		Convey("When the backlog is drained with no consumers left", func() {
			enqueue("g2")
			enqueue("g3")
			So(q.Close(), ShouldBeNil)
			n := q.Drain(ErrShutdown)

			Convey("Then every buffered job completes as failed", func() {
				So(n, ShouldEqual, 3)
				So(q.Len(), ShouldEqual, 0)
				for i := 0; i < 3; i++ {
					So(errors.Is(<-failed, ErrShutdown), ShouldBeTrue)
				}
			})
		})
	})
}
