package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a bounded deduper", t, func() {
		d := NewInMemory(WithMaxSize(3))

		Convey("When an ID is recorded twice", func() {
			So(d.SeenAndRecord(ctx, "g1"), ShouldBeFalse)

			Convey("Then the second submission is a duplicate", func() {
				So(d.SeenAndRecord(ctx, "g1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When more IDs arrive than the bound allows", func() {
			for _, id := range []string{"g1", "g2", "g3", "g4"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest ID is evicted and can be re-recorded", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "g1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "g4"), ShouldBeTrue)
			})
		})

		Convey("When a recorded ID is unrecorded", func() {
			So(d.SeenAndRecord(ctx, "g1"), ShouldBeFalse)
			d.Unrecord(ctx, "g1")

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "g1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given concurrent submitters hammering one deduper", t, func() {
		d := NewInMemory(WithMaxSize(0))

		Convey("When 50 goroutines race over 10 IDs", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					d.SeenAndRecord(ctx, fmt.Sprintf("g%d", n%10))
				}(i)
			}
			wg.Wait()

			Convey("Then exactly the distinct IDs are remembered", func() {
				So(d.Size(), ShouldEqual, 10)
			})
		})
	})
}
