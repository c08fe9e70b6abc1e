package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a replay guard", t, func() {
		ctx := context.Background()
		guard := NewInMemoryGuard()

		Convey("When a game id is recorded", func() {
			first := guard.SeenAndRecord(ctx, "g-1")

			Convey("Then the first record reports unseen", func() {
				So(first, ShouldBeFalse)
				So(guard.Size(), ShouldEqual, 1)
			})

			Convey("Then a replay reports seen", func() {
				So(guard.SeenAndRecord(ctx, "g-1"), ShouldBeTrue)
				So(guard.Size(), ShouldEqual, 1)
			})

			Convey("Then unrecording allows a retry", func() {
				guard.Unrecord(ctx, "g-1")
				So(guard.Size(), ShouldEqual, 0)
				So(guard.SeenAndRecord(ctx, "g-1"), ShouldBeFalse)
			})
		})

		Convey("When the size cap is reached", func() {
			small := NewInMemoryGuard(WithMaxSize(3))
			for i := 0; i < 5; i++ {
				small.SeenAndRecord(ctx, fmt.Sprintf("g-%d", i))
			}

			Convey("Then the guard stays bounded", func() {
				So(small.Size(), ShouldEqual, 3)
			})
		})

		Convey("When recorded concurrently", func() {
			const goroutines = 16
			winners := make(chan bool, goroutines)
			var wg sync.WaitGroup
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					winners <- !guard.SeenAndRecord(ctx, "g-race")
				}()
			}
			wg.Wait()
			close(winners)

			Convey("Then exactly one caller records it", func() {
				count := 0
				for won := range winners {
					if won {
						count++
					}
				}
				So(count, ShouldEqual, 1)
			})
		})
	})
}
