package loop

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle coalesces bursts of triggers into at most one call per interval. A trigger
// arriving inside the interval schedules a single trailing call; further triggers before
// it fires are absorbed, so the trailing call observes the latest state.
//
// A Throttle belongs to the loop: Trigger and Stop must be called from loop tasks.
type Throttle struct {
	sched   Scheduler
	limiter *rate.Limiter
	fn      func()
	pending bool
	cancel  func()
	// reservation backs the pending trailing call
	reservation *rate.Reservation
}

// NewThrottle wraps fn so that it runs at most once per every.
func NewThrottle(sched Scheduler, every time.Duration, fn func()) *Throttle {
	return &Throttle{
		sched:   sched,
		limiter: rate.NewLimiter(rate.Every(every), 1),
		fn:      fn,
	}
}

// Trigger runs fn now if the interval allows, otherwise makes sure one trailing call is scheduled.
func (t *Throttle) Trigger() {
	if t.pending {
		return
	}

	now := t.sched.Now()
	r := t.limiter.ReserveN(now, 1)
	if !r.OK() {
		return
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		t.fn()
		return
	}

	t.pending = true
	t.reservation = r
	t.cancel = t.sched.AfterFunc(delay, func() {
		t.pending = false
		t.cancel = nil
		t.reservation = nil
		t.fn()
	})
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle) Pending() bool {
	return t.pending
}

// Stop drops a scheduled trailing call and gives its token back to the
// limiter, so the next trigger is not delayed by a call that never ran.
func (t *Throttle) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.reservation != nil {
		t.reservation.CancelAt(t.sched.Now())
		t.reservation = nil
	}
	t.pending = false
}
