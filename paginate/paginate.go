// Package paginate decides from viewport geometry when the next page of a feed is
// requested, and applies the answers in order.
//
// At most one request is in flight. Automatic loads are limited by a preload budget that
// only a manual "load more" re-arms. Every reset bumps a generation counter; answers
// tagged with an older generation are dropped.
package paginate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/loop"
)

// TriggerMode selects the preload predicate.
type TriggerMode int

const (
	// TriggerItem preloads once the viewport reaches the N-th item from the end.
	TriggerItem TriggerMode = iota
	// TriggerPercent preloads once a share of the container was scrolled.
	TriggerPercent
)

func (m TriggerMode) String() string {
	if m == TriggerPercent {
		return "percent"
	}
	return "item"
}

// ParseTrigger accepts the configuration spelling of a trigger mode.
func ParseTrigger(s string) (TriggerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "item":
		return TriggerItem, nil
	case "percent":
		return TriggerPercent, nil
	default:
		return TriggerItem, fmt.Errorf("unknown scroll trigger %q", s)
	}
}

// Viewport is a scroll sample.
type Viewport struct {
	ScrollTop float64
	Height    float64
}

// Bottom returns the lower edge of the viewport.
func (v Viewport) Bottom() float64 {
	return v.ScrollTop + v.Height
}

// Box is the vertical extent of the feed container.
type Box struct {
	Top    float64
	Height float64
}

// Layout answers the geometry questions of the predicate.
type Layout interface {
	// Visible reports whether the feed is currently shown.
	Visible() bool
	Container() Box
	// ItemOffsets returns the top offset of every item in document order.
	ItemOffsets() []float64
}

// Renderer applies page content to the document.
type Renderer interface {
	// Append adds the items of a next page.
	Append(page *feed.Page)
	// Replace swaps the whole document for a first page.
	Replace(page *feed.Page)
}

// Source fetches pages for the current view scope.
type Source interface {
	FetchPage(ctx context.Context, start, perPage int) (*feed.Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, start, perPage int) (*feed.Page, error)

// FetchPage implements Source.
func (f SourceFunc) FetchPage(ctx context.Context, start, perPage int) (*feed.Page, error) {
	return f(ctx, start, perPage)
}

// State is the pagination state of one view.
type State struct {
	Start         int
	PageSize      int
	FirstPageSize int
	PreloadCount  int
	PreloadBudget int
	Busy          bool
	Exhausted     bool
	Generation    uint64
}

// Next returns the start of the page after the current one.
func (s State) Next() int {
	if s.Start == 0 {
		return s.Start + s.FirstPageSize
	}
	return s.Start + s.PageSize
}

// Options configure a Controller.
type Options struct {
	// Enabled turns automatic loading on.
	Enabled       bool
	Trigger       TriggerMode
	AfterItem     int
	AfterPercent  float64
	PageSize      int
	FirstPageSize int
	PreloadBudget int
	// MoreAvailable is what the server reported with the first page.
	MoreAvailable bool
	// Timeout bounds every request; zero disables it.
	Timeout  time.Duration
	Throttle time.Duration
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Enabled:       true,
		Trigger:       TriggerItem,
		AfterItem:     constant.AfterItem,
		AfterPercent:  constant.AfterPercent,
		PageSize:      constant.PerPage,
		FirstPageSize: constant.PerPageDefault,
		PreloadBudget: constant.AutoPreloads,
		MoreAvailable: true,
		Timeout:       constant.FetchTimeout,
		Throttle:      constant.ScrollThrottle,
	}
}

// cycle describes a request in flight.
type cycle struct {
	generation uint64
	start      int
	replace    bool
	automatic  bool
}

// Controller is the pagination state machine. Everything but the fetch itself runs on
// the loop.
type Controller struct {
	ctx      context.Context
	sched    loop.Scheduler
	source   Source
	layout   Layout
	renderer Renderer
	opts     Options

	state    State
	latest   Viewport
	throttle *loop.Throttle
	cancel   context.CancelFunc

	// settled is called on the loop after every completion, applied or dropped.
	settled func()
}

// New creates a controller whose requests live at most as long as ctx.
func New(ctx context.Context, sched loop.Scheduler, source Source, layout Layout, renderer Renderer, opts Options) *Controller {
	if opts.AfterItem < 1 {
		opts.AfterItem = constant.AfterItem
	}
	if opts.Throttle <= 0 {
		opts.Throttle = constant.ScrollThrottle
	}

	c := &Controller{
		ctx:      ctx,
		sched:    sched,
		source:   source,
		layout:   layout,
		renderer: renderer,
		opts:     opts,
		state: State{
			PageSize:      opts.PageSize,
			FirstPageSize: opts.FirstPageSize,
			PreloadCount:  1,
			PreloadBudget: opts.PreloadBudget,
			Exhausted:     !opts.MoreAvailable,
		},
	}
	c.throttle = loop.NewThrottle(sched, opts.Throttle, func() { c.Evaluate(c.latest) })
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// OnSettled registers a hook run after every completion.
func (c *Controller) OnSettled(fn func()) {
	c.settled = fn
}

// SetEnabled switches automatic loading.
func (c *Controller) SetEnabled(enabled bool) {
	c.opts.Enabled = enabled
}

// OnScroll records a scroll sample; evaluation is throttled and sees the latest sample.
func (c *Controller) OnScroll(vp Viewport) {
	c.latest = vp
	c.throttle.Trigger()
}

// Reached reports whether the viewport passed the preload point.
func (c *Controller) Reached(vp Viewport) bool {
	switch c.opts.Trigger {
	case TriggerPercent:
		box := c.layout.Container()
		return vp.Bottom() > box.Top+box.Height*c.opts.AfterPercent
	default:
		offsets := c.layout.ItemOffsets()
		if len(offsets) == 0 {
			return false
		}
		idx := max(len(offsets)-c.opts.AfterItem, 0)
		return vp.Bottom() >= offsets[idx]
	}
}

// Armed reports whether an automatic load may start.
func (c *Controller) Armed() bool {
	return c.opts.Enabled &&
		c.layout.Visible() &&
		!c.state.Exhausted &&
		!c.state.Busy &&
		c.state.PreloadCount < c.state.PreloadBudget
}

// Evaluate runs the predicate against vp and starts a load when it holds. It reports
// whether a request was started.
func (c *Controller) Evaluate(vp Viewport) bool {
	if !c.Armed() || !c.Reached(vp) {
		return false
	}

	c.fire(c.ctx, cycle{generation: c.state.Generation, start: c.state.Next(), automatic: true}, c.state.PageSize)
	return true
}

// LoadMore requests the next page on user demand and re-arms the automatic budget.
func (c *Controller) LoadMore(ctx context.Context) bool {
	if c.state.Busy || c.state.Exhausted {
		return false
	}

	c.state.PreloadCount = 1
	c.fire(ctx, cycle{generation: c.state.Generation, start: c.state.Next()}, c.state.PageSize)
	return true
}

// Reset returns to the first page and invalidates every request in flight.
func (c *Controller) Reset(reason string) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.throttle.Stop()

	c.state.Start = 0
	c.state.PreloadCount = 1
	c.state.Exhausted = false
	c.state.Busy = false
	c.state.Generation++

	log.WithFields(log.Fields{"reason": reason, "generation": c.state.Generation}).Debug("pagination reset")
}

// Reload resets and fetches the first page, which replaces the document.
func (c *Controller) Reload(ctx context.Context, reason string) {
	c.Reset(reason)
	c.fire(ctx, cycle{generation: c.state.Generation, start: 0, replace: true}, c.state.FirstPageSize)
}

func (c *Controller) fire(ctx context.Context, cy cycle, perPage int) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.state.Busy = true

	var cancel context.CancelFunc
	if c.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel

	log.WithFields(log.Fields{"start": cy.start, "per_page": perPage, "generation": cy.generation}).Debug("fetching page")

	go func() {
		page, err := c.source.FetchPage(ctx, cy.start, perPage)
		cancel()
		c.sched.Post(func() { c.complete(cy, page, err) })
	}()
}

func (c *Controller) complete(cy cycle, page *feed.Page, err error) {
	defer func() {
		if c.settled != nil {
			c.settled()
		}
	}()

	if cy.generation != c.state.Generation {
		log.WithFields(log.Fields{"start": cy.start, "generation": cy.generation}).Debug("stale page dropped")
		return
	}

	c.cancel = nil
	c.state.Busy = false

	if err != nil {
		log.WithFields(log.Fields{"start": cy.start}).Warnf("page load failed: %v", err)
		return
	}

	if cy.replace {
		c.renderer.Replace(page)
	} else {
		c.renderer.Append(page)
	}

	if more, ok := page.MoreAvailable.Get(); ok {
		c.state.Exhausted = !more
	}

	if cy.automatic {
		c.state.PreloadCount++
	}
	c.state.Start = cy.start
}
