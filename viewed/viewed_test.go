package viewed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

type marker struct {
	requests [][]int
	err      error
	scalar   bool
}

func (m *marker) MarkViewed(_ context.Context, ids []int) (feed.IDs, error) {
	m.requests = append(m.requests, append([]int(nil), ids...))
	if m.err != nil {
		return nil, m.err
	}
	if m.scalar {
		return feed.IDs{ids[0]}, nil
	}
	return feed.IDs(ids), nil
}

func items(bottoms ...float64) []Item {
	out := make([]Item, len(bottoms))
	for i, b := range bottoms {
		out[i] = Item{ID: i + 1, Bottom: b}
	}
	return out
}

func TestBuffer(t *testing.T) {
	Convey("Given a buffer without persistence", t, func() {
		m := &marker{}
		b := NewBuffer(m, nil, "home")
		ctx := context.Background()

		Convey("Items above the viewport bottom are queued once", func() {
			So(b.Scan(0, 500, items(200, 450, 600)), ShouldEqual, 2)
			So(b.Scan(0, 500, items(200, 450, 600)), ShouldEqual, 0)
			So(b.Scan(200, 500, items(200, 450, 600)), ShouldEqual, 1)
			So(b.Pending(), ShouldResemble, []int{1, 2, 3})
		})

		Convey("An item ending exactly at the bottom is not viewed yet", func() {
			So(b.Scan(0, 500, items(500)), ShouldEqual, 0)
		})

		Convey("Flush sends exactly one request with every queued id", func() {
			b.Scan(0, 1000, items(100, 200, 300))
			So(b.Flush(ctx), ShouldBeNil)

			So(m.requests, ShouldResemble, [][]int{{1, 2, 3}})
			So(b.Pending(), ShouldBeEmpty)
			So(b.Marked(2), ShouldBeTrue)

			Convey("and acknowledged ids are never queued again", func() {
				So(b.Scan(0, 1000, items(100, 200, 300)), ShouldEqual, 0)
				So(b.Flush(ctx), ShouldBeNil)
				So(len(m.requests), ShouldEqual, 1)
			})
		})

		Convey("A scalar acknowledgement marks only that id", func() {
			m.scalar = true
			b.Scan(0, 1000, items(100, 200))
			So(b.Flush(ctx), ShouldBeNil)
			So(b.Marked(1), ShouldBeTrue)
			So(b.Marked(2), ShouldBeFalse)
			So(b.Pending(), ShouldBeEmpty)
		})

		Convey("An empty buffer sends nothing", func() {
			So(b.Flush(ctx), ShouldBeNil)
			So(m.requests, ShouldBeEmpty)
		})

		Convey("A failed flush keeps the queue", func() {
			m.err = errors.New("offline")
			b.Scan(0, 1000, items(100))
			So(b.Flush(ctx), ShouldNotBeNil)
			So(b.Pending(), ShouldResemble, []int{1})
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Given a persisted record", t, func() {
		filesystem.SetMemMapFs()
		path := filepath.Join("cache", "viewed.json")

		m := &marker{}
		first := NewBuffer(m, NewStore(path), "home")
		first.Scan(0, 1000, items(100, 200))
		So(first.Flush(context.Background()), ShouldBeNil)

		Convey("a new buffer for the same scope remembers acknowledged ids", func() {
			second := NewBuffer(m, NewStore(path), "home")
			So(second.Marked(1), ShouldBeTrue)
			So(second.Scan(0, 1000, items(100, 200)), ShouldEqual, 0)
		})

		Convey("other scopes start empty", func() {
			other := NewBuffer(m, NewStore(path), "profile")
			So(other.Marked(1), ShouldBeFalse)
		})
	})
}
