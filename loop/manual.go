package loop

import (
	"sort"
	"sync"
	"time"
)

type manualTimer struct {
	id       int
	due      time.Time
	fn       func()
	canceled bool
}

// Manual is a deterministic Scheduler: time only moves on Advance and queued tasks only
// run on Drain, Await or Advance. Post may be called from any goroutine, which lets tests
// wait for completions of work started off the loop.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	nextID int
	ready  chan struct{}
}

// NewManual starts a manual clock at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, ready: make(chan struct{}, 1)}
}

// Post queues fn.
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}

	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers fn to be posted once the clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t := &manualTimer{id: m.nextID, due: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		t.canceled = true
		m.mu.Unlock()
	}
}

func (m *Manual) pop() (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return nil, false
	}
	fn := m.queue[0]
	m.queue = m.queue[1:]
	return fn, true
}

// Drain runs queued tasks until none are left and returns how many ran.
func (m *Manual) Drain() int {
	n := 0
	for {
		fn, ok := m.pop()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Await waits up to d for a task to be posted, then drains the queue. It reports
// whether anything ran.
func (m *Manual) Await(d time.Duration) bool {
	if m.Drain() > 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-m.ready:
			if m.Drain() > 0 {
				return true
			}
		case <-timer.C:
			return m.Drain() > 0
		}
	}
}

// nextDue removes and returns the earliest live timer due at or before target.
func (m *Manual) nextDue(target time.Time) (*manualTimer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].id < m.timers[j].id
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})

	for len(m.timers) > 0 && !m.timers[0].due.After(target) {
		t := m.timers[0]
		m.timers = m.timers[1:]
		if t.canceled {
			continue
		}
		m.now = t.due
		return t, true
	}
	return nil, false
}

// Advance moves the clock forward by d, firing due timers in order and draining the
// queue after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.Now().Add(d)
	m.Drain()

	for {
		t, ok := m.nextDue(target)
		if !ok {
			break
		}
		m.Post(t.fn)
		m.Drain()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// PendingTimers reports timers that are scheduled and not cancelled.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}
