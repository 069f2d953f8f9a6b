// Package visibility measures how much of each tracked media element is inside the
// viewport and reports it as events.
//
// Two strategies exist. Threshold is edge triggered: one event when an element crosses
// the visibility threshold. Polling samples every tracked element on each scroll frame and
// is the fallback for hosts that cannot deliver threshold notifications.
package visibility

import (
	"time"

	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/player"
)

// Mode names the strategy that produced an event.
type Mode int

const (
	// ModeThreshold events are edge triggered with an exact intersection ratio.
	ModeThreshold Mode = iota
	// ModePolling events are periodic samples carrying the distance to the viewport center.
	ModePolling
)

func (m Mode) String() string {
	switch m {
	case ModeThreshold:
		return "threshold"
	case ModePolling:
		return "polling"
	default:
		return "unknown"
	}
}

// Rect is a vertical extent in document coordinates.
type Rect struct {
	Top    float64
	Height float64
}

// Bottom returns the lower edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Center returns the vertical middle.
func (r Rect) Center() float64 {
	return r.Top + r.Height/2
}

// Margin shrinks (positive) or grows (negative) the viewport before intersecting.
type Margin struct {
	Top    float64
	Bottom float64
}

// Event is one visibility observation.
type Event struct {
	Key          player.Key
	Mode         Mode
	Intersecting bool
	// Ratio is the visible share of the element, in [0, 1].
	Ratio float64
	// CenterOffset is the element center minus the viewport center.
	CenterOffset float64
	Time         time.Time
}

// Geometry answers layout questions. Bounds reports false for elements that are no
// longer laid out.
type Geometry interface {
	Viewport() Rect
	Bounds(key player.Key) (Rect, bool)
}

// Sink receives events on the loop.
type Sink func(Event)

// Observer tracks elements and emits events into a Sink.
type Observer interface {
	Track(key player.Key)
	Untrack(key player.Key)
	// Notify tells the observer the viewport scrolled or resized.
	Notify()
	Start()
	Stop()
	Mode() Mode
}

// Capabilities describe what the host platform offers.
type Capabilities struct {
	// Threshold is true when the host delivers layout change notifications reliably
	// enough for edge triggered observation.
	Threshold bool
	// Frames schedules polling evaluations per frame; nil means timer throttling.
	Frames loop.FrameScheduler
}

// Options configure an observer.
type Options struct {
	Scheduler    loop.Scheduler
	Capabilities Capabilities
	Threshold    float64
	Margin       Margin
	PollInterval time.Duration
}

// New picks the strategy once from the capabilities.
func New(opts Options, geometry Geometry, sink Sink) Observer {
	if opts.Threshold <= 0 {
		opts.Threshold = constant.VisibilityThreshold
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = constant.PollInterval
	}

	if opts.Capabilities.Threshold {
		return NewThreshold(opts, geometry, sink)
	}
	return NewPolling(opts, geometry, sink)
}

// Ratio returns the share of element inside viewport, in [0, 1].
func Ratio(viewport, element Rect) float64 {
	if element.Height <= 0 {
		return 0
	}

	top := max(viewport.Top, element.Top)
	bottom := min(viewport.Bottom(), element.Bottom())
	if bottom <= top {
		return 0
	}

	return min((bottom-top)/element.Height, 1)
}

func shrink(r Rect, m Margin) Rect {
	h := r.Height - m.Top - m.Bottom
	if h < 0 {
		h = 0
	}
	return Rect{Top: r.Top + m.Top, Height: h}
}
