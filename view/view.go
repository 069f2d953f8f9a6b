// Package view composes the coordinators of one rendered feed view: its players, the
// playback arbiter, the visibility observer, pagination and the viewed-ids buffer.
//
// A View lives on the loop. Every method must be called from a loop task.
package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/feedview/feedview/arbiter"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/constant"
	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/paginate"
	"github.com/feedview/feedview/player"
	"github.com/feedview/feedview/viewed"
	"github.com/feedview/feedview/visibility"
	"github.com/samber/mo"
)

// ErrUnknownItem is returned for item ids that are not in the document.
var ErrUnknownItem = errors.New("unknown item")

// Forgetter is implemented by clients caching single items.
type Forgetter interface {
	Forget(scope feed.Scope, id int)
}

// Deps are the collaborators a View needs besides its configuration.
type Deps struct {
	Scheduler    loop.Scheduler
	Client       feed.Client
	Capabilities visibility.Capabilities
	// Factory overrides the player technology chosen by the configuration.
	Factory player.Factory
	// Store keeps acknowledged viewed ids between runs; optional.
	Store *viewed.Store
}

// View is one rendered feed.
type View struct {
	ctx    context.Context
	opts   *config.Options
	sched  loop.Scheduler
	client feed.Client
	scope  feed.Scope
	htmlID string

	doc      *Document
	viewport paginate.Viewport
	hidden   bool
	goTo     mo.Option[string]
	empty    string

	registry *player.Registry
	arbiter  *arbiter.Arbiter
	observer visibility.Observer
	pager    *paginate.Controller
	viewed   *viewed.Buffer
	factory  player.Factory
}

// New builds a view. Nothing is fetched until Start.
func New(ctx context.Context, opts *config.Options, deps Deps) (*View, error) {
	policy, err := arbiter.ParsePolicy(opts.Autoplay)
	if err != nil {
		return nil, err
	}
	if !opts.Autoplays() {
		policy = arbiter.Off
	}

	trigger, err := paginate.ParseTrigger(opts.Trigger)
	if err != nil {
		return nil, err
	}

	v := &View{
		ctx:    ctx,
		opts:   opts,
		sched:  deps.Scheduler,
		client: deps.Client,
		scope: feed.Scope{
			Name:    opts.Name,
			View:    opts.Kind,
			Type:    opts.Type,
			OwnerID: opts.OwnerID,
			Filter:  opts.Filter,
		},
		htmlID:   fmt.Sprintf(constant.ScopeIDTemplate, opts.Kind, opts.Name, opts.Type),
		doc:      NewDocument(80),
		goTo:     mo.None[string](),
		registry: player.NewRegistry(),
	}

	v.factory = deps.Factory
	if v.factory == nil {
		v.factory = v.defaultFactory()
	}

	v.arbiter = arbiter.New(v.registry, policy)

	caps := deps.Capabilities
	switch opts.VisibilityMode {
	case "threshold":
		caps.Threshold = true
	case "polling":
		caps.Threshold = false
	}

	v.observer = visibility.New(visibility.Options{
		Scheduler:    deps.Scheduler,
		Capabilities: caps,
		Threshold:    opts.VisibilityThreshold,
	}, v, v.arbiter.Handle)
	v.arbiter.Attach(v.observer)

	v.pager = paginate.New(ctx, deps.Scheduler, paginate.SourceFunc(v.fetchPage), v, v, paginate.Options{
		Enabled:       opts.Scrolls(),
		Trigger:       trigger,
		AfterItem:     opts.AfterItem,
		AfterPercent:  opts.AfterPercent,
		PageSize:      opts.PerPage,
		FirstPageSize: opts.PerPageDefault,
		PreloadBudget: opts.AutoPreloads,
		MoreAvailable: opts.EventsToLoad,
		Timeout:       opts.Timeout,
		Throttle:      constant.ScrollThrottle,
	})

	if opts.AutoMarkViewed {
		v.viewed = viewed.NewBuffer(viewed.MarkerFunc(v.markViewed), deps.Store, v.scope.Key())
	}

	return v, nil
}

func (v *View) defaultFactory() player.Factory {
	if v.opts.Player == "mpv" {
		return player.MPVFactory(v.mediaSource)
	}
	return player.VirtualFactory
}

func (v *View) mediaSource(key player.Key) (string, error) {
	_, media, ok := v.doc.FindMedia(key.Element)
	if !ok || media.Source == "" {
		return "", fmt.Errorf("no source for %s", key)
	}
	return media.Source, nil
}

func (v *View) fetchPage(ctx context.Context, start, perPage int) (*feed.Page, error) {
	return v.client.FetchPage(ctx, v.scope, start, perPage)
}

func (v *View) markViewed(ctx context.Context, ids []int) (feed.IDs, error) {
	return v.client.MarkViewed(ctx, v.scope, ids)
}

// Start begins observing and loads the first page.
func (v *View) Start() {
	v.observer.Start()
	v.pager.Reload(v.ctx, "init")
}

// ID returns the scope every player key of this view carries.
func (v *View) ID() string {
	return v.htmlID
}

// Scope returns the request scope.
func (v *View) Scope() feed.Scope {
	return v.scope
}

// Document returns the laid out items.
func (v *View) Document() *Document {
	return v.doc
}

// Pagination returns the pagination state.
func (v *View) Pagination() paginate.State {
	return v.pager.State()
}

// Arbiter exposes the playback state machine.
func (v *View) Arbiter() *arbiter.Arbiter {
	return v.arbiter
}

// Registry exposes the players.
func (v *View) Registry() *player.Registry {
	return v.registry
}

// ViewedPending returns the ids waiting to be reported.
func (v *View) ViewedPending() []int {
	if v.viewed == nil {
		return nil
	}
	return v.viewed.Pending()
}

// Key returns the player key of a media element.
func (v *View) Key(element string) player.Key {
	return player.Key{Scope: v.htmlID, Element: element}
}

// Viewport implements visibility.Geometry.
func (v *View) Viewport() visibility.Rect {
	return visibility.Rect{Top: v.viewport.ScrollTop, Height: v.viewport.Height}
}

// Bounds implements visibility.Geometry.
func (v *View) Bounds(key player.Key) (visibility.Rect, bool) {
	if key.Scope != v.htmlID {
		return visibility.Rect{}, false
	}
	item, _, ok := v.doc.FindMedia(key.Element)
	if !ok {
		return visibility.Rect{}, false
	}
	return visibility.Rect{Top: item.Top, Height: item.Height()}, true
}

// Visible implements paginate.Layout.
func (v *View) Visible() bool {
	return !v.hidden
}

// Container implements paginate.Layout.
func (v *View) Container() paginate.Box {
	return paginate.Box{Top: 0, Height: v.doc.Height()}
}

// ItemOffsets implements paginate.Layout.
func (v *View) ItemOffsets() []float64 {
	return v.doc.ItemOffsets()
}

// Append implements paginate.Renderer.
func (v *View) Append(page *feed.Page) {
	if html, ok := page.Items.Get(); ok {
		items, err := Parse(html)
		if err != nil {
			log.Warn(err)
		} else {
			v.doc.Append(items)
			v.registerMedia(items)
		}
	}
	v.applyMarkers(page)
	v.observer.Notify()
}

// Replace implements paginate.Renderer.
func (v *View) Replace(page *feed.Page) {
	if html, ok := page.Items.Get(); ok {
		items, err := Parse(html)
		if err != nil {
			log.Warn(err)
		} else {
			for _, old := range v.doc.Items() {
				v.dropMedia(old)
			}
			v.doc.Replace(items)
			v.registerMedia(items)
			v.viewport.ScrollTop = 0
		}
	}
	v.applyMarkers(page)
	v.observer.Notify()
}

func (v *View) applyMarkers(page *feed.Page) {
	if html, ok := page.LoadMore.Get(); ok {
		v.doc.LoadMore = MarkupText(html)
	}
	if html, ok := page.Back.Get(); ok {
		v.doc.Back = MarkupText(html)
	}
	if html, ok := page.Empty.Get(); ok {
		v.empty = MarkupText(html)
	}
	v.showEmpty()
	if anchor, ok := page.GoTo.Get(); ok {
		v.goTo = mo.Some(anchor)
		v.scrollToAnchor(anchor)
	}
}

// showEmpty shows the empty marker only while the document has no items.
func (v *View) showEmpty() {
	if v.doc.Len() == 0 {
		v.doc.Empty = v.empty
		return
	}
	v.doc.Empty = ""
}

func (v *View) scrollToAnchor(anchor string) {
	raw := strings.TrimPrefix(strings.TrimPrefix(anchor, "#"), constant.ItemIDPrefix)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if item, ok := v.doc.Find(id); ok {
		v.scrollTo(item.Top)
	}
}

// GoToAnchor returns the last anchor the server asked to show.
func (v *View) GoToAnchor() mo.Option[string] {
	return v.goTo
}

func (v *View) registerMedia(items []*Item) {
	for _, item := range items {
		for _, m := range item.Media {
			if m.Element == "" {
				continue
			}
			if _, err := v.arbiter.Register(v.Key(m.Element), v.factory); err != nil {
				log.Warnf("register player: %v", err)
			}
		}
	}
}

func (v *View) dropMedia(item *Item) {
	for _, m := range item.Media {
		key := v.Key(m.Element)
		if v.opts.EvictOnRemove {
			v.arbiter.Evict(key)
			continue
		}
		v.observer.Untrack(key)
	}
}

func (v *View) scrollTo(top float64) {
	limit := max(v.doc.Height()-v.viewport.Height, 0)
	v.viewport.ScrollTop = min(max(top, 0), limit)
}

// Sample returns the current viewport.
func (v *View) Sample() paginate.Viewport {
	return v.viewport
}

// OnScroll moves the viewport to scrollTop.
func (v *View) OnScroll(scrollTop float64) {
	v.scrollTo(scrollTop)
	v.pager.OnScroll(v.viewport)
	v.observer.Notify()

	if v.viewed != nil {
		v.viewed.Scan(v.viewport.ScrollTop, v.viewport.Height, v.viewedItems())
	}
}

// ScrollBy moves the viewport by delta lines.
func (v *View) ScrollBy(delta float64) {
	v.OnScroll(v.viewport.ScrollTop + delta)
}

// OnResize lays the document out for a new terminal size.
func (v *View) OnResize(width, height int) {
	v.doc.Relayout(width)
	v.viewport.Height = float64(height)
	v.OnScroll(v.viewport.ScrollTop)
}

// SetHidden marks the view as not shown, which suspends automatic pagination.
func (v *View) SetHidden(hidden bool) {
	v.hidden = hidden
}

func (v *View) viewedItems() []viewed.Item {
	items := make([]viewed.Item, 0, v.doc.Len())
	for _, item := range v.doc.Items() {
		items = append(items, viewed.Item{ID: item.ID, Bottom: item.Bottom()})
	}
	return items
}

// ItemAt returns the item under line y of the viewport.
func (v *View) ItemAt(y float64) (*Item, bool) {
	line := v.viewport.ScrollTop + y
	for _, item := range v.doc.Items() {
		if line >= item.Top && line < item.Bottom() {
			return item, true
		}
	}
	return nil, false
}
