package visibility

import (
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/player"
)

// Polling samples every tracked element on each evaluation. Evaluations are coalesced to
// one per frame when frames are available and throttled otherwise.
type Polling struct {
	sched     loop.Scheduler
	frames    loop.FrameScheduler
	throttle  *loop.Throttle
	geometry  Geometry
	sink      Sink
	threshold float64

	order        []player.Key
	tracked      map[player.Key]struct{}
	running      bool
	framePending bool
}

// NewPolling creates a sampling observer.
func NewPolling(opts Options, geometry Geometry, sink Sink) *Polling {
	p := &Polling{
		sched:     opts.Scheduler,
		frames:    opts.Capabilities.Frames,
		geometry:  geometry,
		sink:      sink,
		threshold: opts.Threshold,
		tracked:   make(map[player.Key]struct{}),
	}
	p.throttle = loop.NewThrottle(opts.Scheduler, opts.PollInterval, p.evaluate)
	return p
}

// Mode implements Observer.
func (p *Polling) Mode() Mode {
	return ModePolling
}

// Track implements Observer.
func (p *Polling) Track(key player.Key) {
	if _, ok := p.tracked[key]; ok {
		return
	}
	p.tracked[key] = struct{}{}
	p.order = append(p.order, key)
}

// Untrack implements Observer.
func (p *Polling) Untrack(key player.Key) {
	if _, ok := p.tracked[key]; !ok {
		return
	}
	delete(p.tracked, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Notify implements Observer.
func (p *Polling) Notify() {
	if !p.running {
		return
	}

	if p.frames == nil {
		p.throttle.Trigger()
		return
	}

	if p.framePending {
		return
	}
	p.framePending = true
	p.frames.RequestFrame(func() {
		p.framePending = false
		p.evaluate()
	})
}

// Start implements Observer. It runs one evaluation right away.
func (p *Polling) Start() {
	if p.running {
		return
	}
	p.running = true
	p.sched.Post(p.evaluate)
}

// Stop implements Observer.
func (p *Polling) Stop() {
	p.running = false
	p.throttle.Stop()
}

func (p *Polling) evaluate() {
	if !p.running {
		return
	}

	viewport := p.geometry.Viewport()
	now := p.sched.Now()

	for _, key := range append([]player.Key(nil), p.order...) {
		if _, ok := p.tracked[key]; !ok {
			continue
		}

		bounds, ok := p.geometry.Bounds(key)
		if !ok {
			continue
		}

		ratio := Ratio(viewport, bounds)
		p.sink(Event{
			Key:          key,
			Mode:         ModePolling,
			Intersecting: ratio > 0 && ratio >= p.threshold,
			Ratio:        ratio,
			CenterOffset: bounds.Center() - viewport.Center(),
			Time:         now,
		})
	}
}
