package loop

import "time"

// FrameScheduler runs a callback before the next frame is drawn.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Frames emulates animation frames on a Scheduler: every request made during one frame
// interval is served by the same frame.
type Frames struct {
	sched    Scheduler
	interval time.Duration
	waiting  []func()
}

// NewFrames creates a frame source ticking every interval while requests are outstanding.
func NewFrames(sched Scheduler, interval time.Duration) *Frames {
	return &Frames{sched: sched, interval: interval}
}

// RequestFrame queues fn for the next frame.
func (f *Frames) RequestFrame(fn func()) {
	f.waiting = append(f.waiting, fn)
	if len(f.waiting) > 1 {
		return
	}

	f.sched.AfterFunc(f.interval, func() {
		batch := f.waiting
		f.waiting = nil
		for _, cb := range batch {
			cb()
		}
	})
}
