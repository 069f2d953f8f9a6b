package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLoop(t *testing.T) {
	Convey("Given a loop", t, func() {
		l := New()

		Convey("Posted tasks run in order, including tasks they post", func() {
			var order []int
			l.Post(func() {
				order = append(order, 1)
				l.Post(func() { order = append(order, 3) })
			})
			l.Post(func() { order = append(order, 2) })

			So(l.Pending(), ShouldEqual, 2)
			So(l.Drain(), ShouldEqual, 3)
			So(order, ShouldResemble, []int{1, 2, 3})
		})

		Convey("Posting from other goroutines is safe", func() {
			var wg sync.WaitGroup
			count := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					l.Post(func() { count++ })
				}()
			}
			wg.Wait()
			l.Drain()
			So(count, ShouldEqual, 50)
		})

		Convey("Run executes timers until cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			fired := make(chan struct{})
			l.AfterFunc(5*time.Millisecond, func() {
				close(fired)
				cancel()
			})

			err := l.Run(ctx)
			So(err, ShouldEqual, context.Canceled)

			_, open := <-fired
			So(open, ShouldBeFalse)
		})

		Convey("Wait returns false when nothing arrives", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			defer cancel()
			So(l.Wait(ctx), ShouldBeFalse)
		})
	})
}

func TestManual(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		m := NewManual(epoch)
		var fired []string

		m.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "b") })
		m.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
		cancel := m.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "x") })
		cancel()

		Convey("Timers fire in due order and cancelled ones are skipped", func() {
			m.Advance(25 * time.Millisecond)
			So(fired, ShouldResemble, []string{"a"})
			So(m.Now(), ShouldEqual, epoch.Add(25*time.Millisecond))

			m.Advance(10 * time.Millisecond)
			So(fired, ShouldResemble, []string{"a", "b"})
			So(m.PendingTimers(), ShouldEqual, 0)
		})

		Convey("A timer sees the clock at its due time", func() {
			var at time.Time
			m.AfterFunc(5*time.Millisecond, func() { at = m.Now() })
			m.Advance(time.Second)
			So(at, ShouldEqual, epoch.Add(5*time.Millisecond))
		})
	})
}

func TestThrottle(t *testing.T) {
	Convey("Given a throttle of 100ms", t, func() {
		m := NewManual(epoch)
		calls := 0
		var at []time.Duration
		th := NewThrottle(m, 100*time.Millisecond, func() {
			calls++
			at = append(at, m.Now().Sub(epoch))
		})

		Convey("The first trigger runs immediately", func() {
			th.Trigger()
			So(calls, ShouldEqual, 1)
		})

		Convey("A burst collapses into one leading and one trailing call", func() {
			for i := 0; i < 10; i++ {
				th.Trigger()
				m.Advance(5 * time.Millisecond)
			}
			So(calls, ShouldEqual, 1)
			So(th.Pending(), ShouldBeTrue)

			m.Advance(100 * time.Millisecond)
			So(calls, ShouldEqual, 2)
			So(at[1], ShouldBeBetweenOrEqual, 99*time.Millisecond, 100*time.Millisecond)
			So(th.Pending(), ShouldBeFalse)
		})

		Convey("Calls never come closer than the interval", func() {
			for i := 0; i < 100; i++ {
				th.Trigger()
				m.Advance(7 * time.Millisecond)
			}
			m.Advance(time.Second)

			for i := 1; i < len(at); i++ {
				So(at[i]-at[i-1], ShouldBeGreaterThanOrEqualTo, 99*time.Millisecond)
			}
			So(calls, ShouldBeBetweenOrEqual, 7, 9)
		})

		Convey("Stop drops the trailing call", func() {
			th.Trigger()
			th.Trigger()
			th.Stop()
			m.Advance(time.Second)
			So(calls, ShouldEqual, 1)
		})

		Convey("A stopped trailing call does not delay the next trigger", func() {
			th.Trigger()
			m.Advance(10 * time.Millisecond)
			th.Trigger()
			So(th.Pending(), ShouldBeTrue)
			th.Stop()

			m.Advance(100 * time.Millisecond)
			th.Trigger()
			So(calls, ShouldEqual, 2)
			So(at[1], ShouldEqual, 110*time.Millisecond)
			So(th.Pending(), ShouldBeFalse)
		})
	})
}

func TestFrames(t *testing.T) {
	Convey("Requests made during one frame share it", t, func() {
		m := NewManual(epoch)
		f := NewFrames(m, 16*time.Millisecond)

		n := 0
		f.RequestFrame(func() { n++ })
		f.RequestFrame(func() { n++ })
		So(m.PendingTimers(), ShouldEqual, 1)

		m.Advance(16 * time.Millisecond)
		So(n, ShouldEqual, 2)

		f.RequestFrame(func() { n++ })
		m.Advance(16 * time.Millisecond)
		So(n, ShouldEqual, 3)
	})
}
