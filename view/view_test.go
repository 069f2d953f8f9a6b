package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/loop"
	"github.com/feedview/feedview/player"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func itemHTML(id int, text, video string) string {
	media := ""
	if video != "" {
		media = fmt.Sprintf(`<video id="%s" src="https://cdn.example.com/%s.mp4"></video>`, video, video)
	}
	return fmt.Sprintf(`<div class="bx-tl-item" id="bx-timeline-item-%d"><p>%s</p>%s</div>`, id, text, media)
}

type pageCall struct {
	scope          feed.Scope
	start, perPage int
}

type client struct {
	mu        sync.Mutex
	pages     []pageCall
	page      func(start int) *feed.Page
	item      func(id int) (*feed.Item, error)
	marked    [][]int
	forgotten []int
}

func (c *client) FetchPage(_ context.Context, scope feed.Scope, start, perPage int) (*feed.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, pageCall{scope, start, perPage})
	return c.page(start), nil
}

func (c *client) FetchItem(_ context.Context, _ feed.Scope, id int) (*feed.Item, error) {
	return c.item(id)
}

func (c *client) MarkViewed(_ context.Context, _ feed.Scope, ids []int) (feed.IDs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marked = append(c.marked, ids)
	return feed.IDs(ids), nil
}

func (c *client) Forget(_ feed.Scope, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgotten = append(c.forgotten, id)
}

func (c *client) calls() []pageCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]pageCall(nil), c.pages...)
}

func firstPage(int) *feed.Page {
	return &feed.Page{
		Items: mo.Some(itemHTML(1, "first", "") + itemHTML(2, "second", "v2") + itemHTML(3, "third", "") +
			itemHTML(4, "fourth", "") + itemHTML(5, "fifth", "")),
		Empty:         mo.Some(`<div class="bx-tl-empty-holder">Nothing here</div>`),
		MoreAvailable: mo.Some(false),
	}
}

func options() *config.Options {
	return &config.Options{
		Timeout:             2 * time.Second,
		PerPage:             5,
		PerPageDefault:      10,
		Name:                "main",
		Kind:                "timeline",
		Type:                "public",
		Filter:              "all",
		Trigger:             "item",
		AfterItem:           2,
		AutoPreloads:        3,
		Autoplay:            "on",
		Player:              "virtual",
		EvictOnRemove:       true,
		VisibilityThreshold: 0.5,
		VisibilityMode:      "threshold",
	}
}

type fixture struct {
	m      *loop.Manual
	client *client
	view   *View
}

// start builds a view with an eight line viewport and waits for the first page.
func start(opts *config.Options) *fixture {
	f := &fixture{m: loop.NewManual(epoch), client: &client{page: firstPage}}

	v, err := New(context.Background(), opts, Deps{Scheduler: f.m, Client: f.client})
	So(err, ShouldBeNil)
	f.view = v

	v.OnResize(80, 8)
	v.Start()
	So(f.m.Await(2*time.Second), ShouldBeTrue)
	return f
}

func (f *fixture) handle(element string) *player.Handle {
	h, ok := f.view.Registry().Get(f.view.Key(element)).Get()
	So(ok, ShouldBeTrue)
	return h
}

func TestStart(t *testing.T) {
	Convey("Given a started view", t, func() {
		f := start(options())

		Convey("the first page is requested from the start", func() {
			calls := f.client.calls()
			So(calls, ShouldHaveLength, 1)
			So(calls[0].start, ShouldEqual, 0)
			So(calls[0].perPage, ShouldEqual, 10)
			So(calls[0].scope.Filter, ShouldEqual, "all")
		})

		Convey("items are laid out one after another", func() {
			So(f.view.Document().Len(), ShouldEqual, 5)
			So(f.view.ItemOffsets(), ShouldResemble, []float64{0, 3, 7, 10, 13})
			So(f.view.Document().Empty, ShouldBeEmpty)
		})

		Convey("the video is registered under the view scope", func() {
			So(f.view.ID(), ShouldEqual, "bx-timeline-timeline-main-public")
			So(f.view.Registry().Len(), ShouldEqual, 1)
			So(f.view.Pagination().Exhausted, ShouldBeTrue)
		})

		Convey("an invalid autoplay mode is rejected", func() {
			opts := options()
			opts.Autoplay = "loud"
			_, err := New(context.Background(), opts, Deps{Scheduler: f.m, Client: f.client})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPlayback(t *testing.T) {
	Convey("Given autoplay on", t, func() {
		f := start(options())

		Convey("the visible video plays", func() {
			So(f.handle("v2").Playing(), ShouldBeTrue)
			So(f.view.Arbiter().Active(), ShouldEqual, mo.Some(f.view.Key("v2")))
		})

		Convey("scrolling it mostly out of view pauses it", func() {
			f.view.OnScroll(6)
			f.m.Drain()
			So(f.handle("v2").Playing(), ShouldBeFalse)
			So(f.view.Arbiter().Active().IsAbsent(), ShouldBeTrue)

			Convey("and PlayVideos resumes the closest one", func() {
				So(f.view.PlayVideos(), ShouldEqual, mo.Some(f.view.Key("v2")))
				So(f.handle("v2").Playing(), ShouldBeTrue)
			})
		})

		Convey("PauseVideos pauses and mutes", func() {
			f.view.PauseVideos()
			So(f.handle("v2").Playing(), ShouldBeFalse)
			So(f.handle("v2").Muted(), ShouldBeTrue)
		})
	})

	Convey("Given an outline view", t, func() {
		opts := options()
		opts.Kind = "outline"
		f := start(opts)

		Convey("nothing plays on its own", func() {
			So(f.handle("v2").Playing(), ShouldBeFalse)
		})

		Convey("PlayVideos leaves the videos alone", func() {
			So(f.view.PlayVideos().IsAbsent(), ShouldBeTrue)
			So(f.handle("v2").Playing(), ShouldBeFalse)
		})
	})
}

func TestRemoveItem(t *testing.T) {
	Convey("Given a started view", t, func() {
		f := start(options())

		Convey("removing an item evicts its players and forgets it", func() {
			So(f.view.RemoveItem(2), ShouldBeNil)
			So(f.view.Registry().Len(), ShouldEqual, 0)
			So(f.view.ItemOffsets(), ShouldResemble, []float64{0, 3, 6, 9})
			So(f.client.forgotten, ShouldResemble, []int{2})
		})

		Convey("removing an unknown item fails", func() {
			So(errors.Is(f.view.RemoveItem(42), ErrUnknownItem), ShouldBeTrue)
		})

		Convey("removing every item shows the empty marker", func() {
			for _, id := range []int{1, 2, 3, 4, 5} {
				So(f.view.RemoveItem(id), ShouldBeNil)
			}
			So(f.view.Document().Empty, ShouldEqual, "Nothing here")
		})
	})
}

func TestRefreshItem(t *testing.T) {
	Convey("Given a started view", t, func() {
		f := start(options())
		f.client.item = func(id int) (*feed.Item, error) {
			return &feed.Item{ID: id, HTML: itemHTML(id, "edited", "v9")}, nil
		}

		Convey("a refreshed item is replaced in place", func() {
			var result error = errors.New("not called")
			f.view.RefreshItem(context.Background(), 2, func(err error) { result = err })
			So(f.m.Await(2*time.Second), ShouldBeTrue)

			So(result, ShouldBeNil)
			item, ok := f.view.Document().Find(2)
			So(ok, ShouldBeTrue)
			So(item.Text, ShouldEqual, "edited")
			So(f.view.Registry().Get(f.view.Key("v2")).IsAbsent(), ShouldBeTrue)
			So(f.view.Registry().Get(f.view.Key("v9")).IsPresent(), ShouldBeTrue)
		})

		Convey("a failed refresh leaves the item alone", func() {
			f.client.item = func(int) (*feed.Item, error) { return nil, errors.New("gone") }
			var result error
			f.view.RefreshItem(context.Background(), 2, func(err error) { result = err })
			So(f.m.Await(2*time.Second), ShouldBeTrue)

			So(result, ShouldNotBeNil)
			item, _ := f.view.Document().Find(2)
			So(item.Text, ShouldEqual, "second")
		})
	})
}

func TestSelection(t *testing.T) {
	Convey("Given a started view", t, func() {
		f := start(options())

		Convey("changing the filter reloads the first page with it", func() {
			f.view.ChangeFilter("video")
			So(f.m.Await(2*time.Second), ShouldBeTrue)

			calls := f.client.calls()
			So(calls, ShouldHaveLength, 2)
			So(calls[1].scope.Filter, ShouldEqual, "video")
			So(calls[1].start, ShouldEqual, 0)
		})

		Convey("going to items sends the blink ids", func() {
			f.view.GoTo("3")
			So(f.m.Await(2*time.Second), ShouldBeTrue)
			So(f.client.calls()[1].scope.Blink, ShouldEqual, "3")
		})

		Convey("changing the view type drops the blink ids", func() {
			f.view.GoTo("3")
			So(f.m.Await(2*time.Second), ShouldBeTrue)
			f.view.ChangeView("owner")
			So(f.m.Await(2*time.Second), ShouldBeTrue)

			last := f.client.calls()[2]
			So(last.scope.Type, ShouldEqual, "owner")
			So(last.scope.Blink, ShouldBeEmpty)
		})

		Convey("load more is refused once the server has nothing more", func() {
			So(f.view.LoadMore(), ShouldBeFalse)
		})

		Convey("a go to anchor scrolls to its item", func() {
			f.client.page = func(start int) *feed.Page {
				p := firstPage(start)
				p.GoTo = mo.Some("#bx-timeline-item-3")
				return p
			}
			f.view.Reload()
			So(f.m.Await(2*time.Second), ShouldBeTrue)
			So(f.view.Sample().ScrollTop, ShouldEqual, 7)
		})
	})
}

func TestViewed(t *testing.T) {
	Convey("Given automatic viewed marking", t, func() {
		opts := options()
		opts.AutoMarkViewed = true
		f := start(opts)

		Convey("items scrolled past are reported on close", func() {
			f.view.OnScroll(6)
			So(f.view.ViewedPending(), ShouldResemble, []int{1, 2, 3, 4})

			So(f.view.Close(context.Background()), ShouldBeNil)
			So(f.client.marked, ShouldResemble, [][]int{{1, 2, 3, 4}})
			So(f.view.ViewedPending(), ShouldBeEmpty)
			So(f.view.Registry().Len(), ShouldEqual, 0)
		})
	})
}
