// Package loop provides the single logical thread every coordinator runs on.
//
// Work reaches the loop as posted tasks: platform events, timer expirations and the
// completions of network or player calls running elsewhere. Tasks run one at a time and
// to completion, so coordinator state is never observed half-updated and needs no locks.
package loop

import (
	"context"
	"sync"
	"time"
)

// Poster enqueues work on the loop. Post never blocks and is safe from any goroutine.
type Poster interface {
	Post(fn func())
}

// Scheduler is a Poster that also owns time: a clock and delayed tasks.
type Scheduler interface {
	Poster
	Now() time.Time
	// AfterFunc posts fn once d has elapsed. The returned function cancels it.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Loop is the production Scheduler backed by the wall clock.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	ready chan struct{}
}

// New creates an idle loop. Nothing runs until Run or Drain is called.
func New() *Loop {
	return &Loop{ready: make(chan struct{}, 1)}
}

// Post appends fn to the queue and wakes the runner.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc posts fn to the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	timer := time.AfterFunc(d, func() { l.Post(fn) })
	return func() { timer.Stop() }
}

// Ready is signalled whenever tasks were posted. Hosts with their own event loop
// (the terminal UI) wait on it and call Drain from their own goroutine.
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// Drain runs queued tasks, including tasks they post, until the queue is empty.
// It returns the number of tasks executed.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains the loop whenever work arrives until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ready:
			l.Drain()
		}
	}
}

// Wait blocks until at least one task is queued or ctx is done, then drains the queue.
// It reports whether anything ran.
func (l *Loop) Wait(ctx context.Context) bool {
	if l.Drain() > 0 {
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case <-l.ready:
		return l.Drain() > 0
	}
}
