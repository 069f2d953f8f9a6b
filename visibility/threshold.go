package visibility

import (
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/player"
)

type crossing struct {
	seen         bool
	intersecting bool
}

// Threshold emits an initial event for every newly tracked element and afterwards exactly
// one event whenever the element crosses the threshold.
type Threshold struct {
	sched     loop.Scheduler
	geometry  Geometry
	sink      Sink
	threshold float64
	margin    Margin

	order   []player.Key
	tracked map[player.Key]*crossing
	running bool
	queued  bool
}

// NewThreshold creates an edge triggered observer.
func NewThreshold(opts Options, geometry Geometry, sink Sink) *Threshold {
	return &Threshold{
		sched:     opts.Scheduler,
		geometry:  geometry,
		sink:      sink,
		threshold: opts.Threshold,
		margin:    opts.Margin,
		tracked:   make(map[player.Key]*crossing),
	}
}

// Mode implements Observer.
func (t *Threshold) Mode() Mode {
	return ModeThreshold
}

// Track implements Observer.
func (t *Threshold) Track(key player.Key) {
	if _, ok := t.tracked[key]; ok {
		return
	}
	t.tracked[key] = &crossing{}
	t.order = append(t.order, key)
	t.schedule()
}

// Untrack implements Observer.
func (t *Threshold) Untrack(key player.Key) {
	if _, ok := t.tracked[key]; !ok {
		return
	}
	delete(t.tracked, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Notify implements Observer.
func (t *Threshold) Notify() {
	t.schedule()
}

// Start implements Observer.
func (t *Threshold) Start() {
	t.running = true
	t.schedule()
}

// Stop implements Observer.
func (t *Threshold) Stop() {
	t.running = false
}

// schedule posts one evaluation; notifications never run on the caller's stack.
func (t *Threshold) schedule() {
	if !t.running || t.queued {
		return
	}
	t.queued = true
	t.sched.Post(t.evaluate)
}

func (t *Threshold) evaluate() {
	t.queued = false
	if !t.running {
		return
	}

	viewport := t.geometry.Viewport()
	root := shrink(viewport, t.margin)
	now := t.sched.Now()

	for _, key := range append([]player.Key(nil), t.order...) {
		state, ok := t.tracked[key]
		if !ok {
			continue
		}

		bounds, ok := t.geometry.Bounds(key)
		if !ok {
			continue
		}

		ratio := Ratio(root, bounds)
		intersecting := ratio > 0 && ratio >= t.threshold
		if state.seen && state.intersecting == intersecting {
			continue
		}

		state.seen = true
		state.intersecting = intersecting
		t.sink(Event{
			Key:          key,
			Mode:         ModeThreshold,
			Intersecting: intersecting,
			Ratio:        ratio,
			CenterOffset: bounds.Center() - viewport.Center(),
			Time:         now,
		})
	}
}
