package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/feed"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type client struct {
	mu      sync.Mutex
	filters []string
}

func (c *client) FetchPage(_ context.Context, scope feed.Scope, start, _ int) (*feed.Page, error) {
	c.mu.Lock()
	c.filters = append(c.filters, scope.Filter)
	c.mu.Unlock()

	var html strings.Builder
	for id := start + 1; id <= start+10; id++ {
		fmt.Fprintf(&html, `<div class="bx-tl-item" id="bx-timeline-item-%d">post %d</div>`, id, id)
	}
	return &feed.Page{Items: mo.Some(html.String()), MoreAvailable: mo.Some(false)}, nil
}

func (c *client) FetchItem(_ context.Context, _ feed.Scope, id int) (*feed.Item, error) {
	return &feed.Item{ID: id}, nil
}

func (c *client) MarkViewed(_ context.Context, _ feed.Scope, ids []int) (feed.IDs, error) {
	return feed.IDs(ids), nil
}

func (c *client) requested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.filters...)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestBubble() (*statefulBubble, *client) {
	c := &client{}
	b, err := newBubble(context.Background(), &Options{
		Client: c,
		Feed: &config.Options{
			Timeout:             time.Second,
			PerPage:             10,
			PerPageDefault:      10,
			Name:                "main",
			Kind:                "timeline",
			Type:                "public",
			Filter:              "all",
			Trigger:             "item",
			AfterItem:           2,
			Autoplay:            "off",
			Player:              "virtual",
			VisibilityThreshold: 0.5,
			VisibilityMode:      "auto",
		},
	})
	So(err, ShouldBeNil)
	b.resize(80, 24)
	return b, c
}

// settle pumps the loop until the pending request completed.
func settle(b *statefulBubble) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for b.view.Pagination().Busy || b.loop.Pending() > 0 {
		if !b.loop.Wait(ctx) {
			break
		}
	}
}

func TestBubble(t *testing.T) {
	Convey("Given a started feed screen", t, func() {
		b, c := newTestBubble()
		b.Init()
		b.loop.Drain()
		settle(b)

		So(b.view.Document().Len(), ShouldEqual, 10)
		So(b.View(), ShouldContainSubstring, "#1")

		Convey("j scrolls down and k back up", func() {
			b.Update(runes("j"))
			So(b.view.Sample().ScrollTop, ShouldEqual, 1)
			b.Update(runes("k"))
			So(b.view.Sample().ScrollTop, ShouldEqual, 0)
		})

		Convey("f reloads the feed with the next filter", func() {
			b.Update(runes("f"))
			settle(b)
			So(c.requested(), ShouldResemble, []string{"all", "own"})
			So(b.notes, ShouldBeEmpty)
		})

		Convey("d removes the item at the top of the screen", func() {
			b.Update(runes("d"))
			_, ok := b.view.Document().Find(1)
			So(ok, ShouldBeFalse)
		})

		Convey("t asks for a date and jumps to it", func() {
			b.Update(runes("t"))
			So(b.keymap.prompting, ShouldBeTrue)
			b.Update(runes("2024-01-01"))
			b.Update(tea.KeyMsg{Type: tea.KeyEnter})
			settle(b)
			So(b.keymap.prompting, ShouldBeFalse)
			So(b.view.Scope().Timeline, ShouldEqual, "2024-01-01")
		})

		Convey("space does not start videos while autoplay is off", func() {
			b.updateFeed(runes(" "))
			So(b.notes, ShouldResemble, []string{"Autoplay is off"})
		})

		Convey("q closes the view", func() {
			b.Update(runes("q"))
			So(b.closed, ShouldBeTrue)
		})
	})
}

func TestNotifier(t *testing.T) {
	Convey("A notification is shown until its own clear message arrives", t, func() {
		n := &notifier{}
		So(n.Update(notification("first")), ShouldNotBeNil)
		So(n.Update(notification("second")), ShouldNotBeNil)

		n.Update(clearNotificationMsg{serial: 1})
		So(n.View("body"), ShouldContainSubstring, "second")

		n.Update(clearNotificationMsg{serial: 2})
		So(n.View("body"), ShouldEqual, "body")
	})
}
