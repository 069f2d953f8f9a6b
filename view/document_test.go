package view

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Parse extracts items with their media", t, func() {
		items, err := Parse(itemHTML(7, "hello  <b>world</b>", "v7") +
			`<div class="bx-tl-item" id="bx-timeline-item-x">bad id</div>` +
			`<div class="bx-tl-item" id="bx-timeline-item-8"><video id="v8"><source src="https://cdn.example.com/8.webm"></video></div>`)
		So(err, ShouldBeNil)
		So(items, ShouldHaveLength, 2)

		So(items[0].ID, ShouldEqual, 7)
		So(items[0].Text, ShouldEqual, "hello world")
		So(items[0].Media, ShouldResemble, []Media{{Element: "v7", Source: "https://cdn.example.com/v7.mp4"}})
		So(items[1].Media[0].Source, ShouldEqual, "https://cdn.example.com/8.webm")
	})

	Convey("MarkupText flattens markers", t, func() {
		So(MarkupText(`<div><a href="#">Load   more</a></div>`), ShouldEqual, "Load more")
	})
}

func TestDocument(t *testing.T) {
	Convey("Given a document", t, func() {
		d := NewDocument(80)
		items, _ := Parse(itemHTML(1, "one", "") + itemHTML(2, "two", "v2"))
		d.Append(items)

		Convey("items stack with a separator line", func() {
			So(d.ItemOffsets(), ShouldResemble, []float64{0, 3})
			So(d.Height(), ShouldEqual, 7)
		})

		Convey("appending a known id replaces it in place", func() {
			again, _ := Parse(itemHTML(1, "uno", "") + itemHTML(3, "three", ""))
			d.Append(again)
			So(d.Len(), ShouldEqual, 3)
			first, _ := d.Find(1)
			So(first.Text, ShouldEqual, "uno")
			So(d.ItemOffsets(), ShouldResemble, []float64{0, 3, 7})
		})

		Convey("media is found by element", func() {
			item, media, ok := d.FindMedia("v2")
			So(ok, ShouldBeTrue)
			So(item.ID, ShouldEqual, 2)
			So(media.Element, ShouldEqual, "v2")
		})

		Convey("narrow widths wrap text onto more lines", func() {
			long, _ := Parse(itemHTML(4, "a b c d e f g h i j k l m n o p", ""))
			d.Relayout(10)
			d.Replace(long)
			tall := d.Height()
			d.Relayout(200)
			So(d.Height(), ShouldBeLessThan, tall)
		})

		Convey("removed items close the gap", func() {
			removed, ok := d.Remove(1)
			So(ok, ShouldBeTrue)
			So(removed.ID, ShouldEqual, 1)
			So(d.ItemOffsets(), ShouldResemble, []float64{0})
		})
	})
}
