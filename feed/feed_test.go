package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePage(t *testing.T) {
	Convey("Given fetch-posts bodies", t, func() {
		Convey("Every optional field is applied on its own", func() {
			page, err := ParsePage([]byte(`{"items":"<div/>","load_more":"<a>more</a>","events_to_load":1}`))
			So(err, ShouldBeNil)
			So(page.Items.MustGet(), ShouldEqual, "<div/>")
			So(page.LoadMore.MustGet(), ShouldEqual, "<a>more</a>")
			So(page.Back.IsAbsent(), ShouldBeTrue)
			So(page.Empty.IsAbsent(), ShouldBeTrue)
			So(page.MoreAvailable.MustGet(), ShouldBeTrue)
		})

		Convey("A missing availability flag stays absent", func() {
			page, err := ParsePage([]byte(`{"items":""}`))
			So(err, ShouldBeNil)
			So(page.MoreAvailable.IsAbsent(), ShouldBeTrue)
			So(page.Items.MustGet(), ShouldEqual, "")
		})

		Convey("Null and malformed fields count as absent", func() {
			page, err := ParsePage([]byte(`{"items":42,"back":null,"go_to":"#item-5","events_to_load":"0"}`))
			So(err, ShouldBeNil)
			So(page.Items.IsAbsent(), ShouldBeTrue)
			So(page.Back.IsAbsent(), ShouldBeTrue)
			So(page.GoTo.MustGet(), ShouldEqual, "#item-5")
			So(page.MoreAvailable.MustGet(), ShouldBeFalse)
		})

		Convey("A body that is not an object fails", func() {
			_, err := ParsePage([]byte(`<html>`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestIDs(t *testing.T) {
	Convey("IDs accept scalars and arrays", t, func() {
		var scalar markResponse
		So(json.Unmarshal([]byte(`{"id":7}`), &scalar), ShouldBeNil)
		So(scalar.ID, ShouldResemble, IDs{7})

		var list markResponse
		So(json.Unmarshal([]byte(`{"id":[1,"2",3]}`), &list), ShouldBeNil)
		So(list.ID, ShouldResemble, IDs{1, 2, 3})

		var none markResponse
		So(json.Unmarshal([]byte(`{}`), &none), ShouldBeNil)
		So(none.ID, ShouldBeEmpty)
	})
}

func TestSchema(t *testing.T) {
	Convey("The page schema lists the wire fields", t, func() {
		b, err := json.Marshal(Schema())
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, "events_to_load")
		So(string(b), ShouldContainSubstring, "load_more")
	})
}

func TestHTTPClient(t *testing.T) {
	Convey("Given a feed endpoint", t, func() {
		var (
			lastQuery url.Values
			lastForm  url.Values
			itemHits  int
			status    = http.StatusOK
		)

		mux := http.NewServeMux()
		mux.HandleFunc("/m/timeline/get_posts/", func(w http.ResponseWriter, r *http.Request) {
			lastQuery = r.URL.Query()
			w.WriteHeader(status)
			fmt.Fprint(w, `{"items":"<div class=\"bx-tl-item\" id=\"bx-timeline-item-1\"></div>","events_to_load":true}`)
		})
		mux.HandleFunc("/m/timeline/get_post/", func(w http.ResponseWriter, r *http.Request) {
			itemHits++
			fmt.Fprintf(w, `{"id":"%s","item":"<div>fresh</div>"}`, r.URL.Query().Get("id"))
		})
		mux.HandleFunc("/m/timeline/mark_as_read/", func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			lastForm = r.PostForm
			ids, _ := json.Marshal(r.PostForm["id[]"])
			fmt.Fprintf(w, `{"id":%s}`, ids)
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL+"/m/timeline", WithHTTPClient(srv.Client()), WithItemCacheTTL(time.Minute))
		So(err, ShouldBeNil)

		scope := Scope{Name: "home", View: "timeline", Type: "public", OwnerID: 3, Filter: "all"}
		ctx := context.Background()

		Convey("FetchPage sends the scope and the window", func() {
			page, err := client.FetchPage(ctx, scope, 10, 5)
			So(err, ShouldBeNil)
			So(page.MoreAvailable.MustGet(), ShouldBeTrue)
			So(lastQuery.Get("start"), ShouldEqual, "10")
			So(lastQuery.Get("per_page"), ShouldEqual, "5")
			So(lastQuery.Get("owner_id"), ShouldEqual, "3")
			So(lastQuery.Get("filter"), ShouldEqual, "all")
			So(lastQuery.Has("timeline"), ShouldBeFalse)
		})

		Convey("A failing status is reported", func() {
			status = http.StatusInternalServerError
			_, err := client.FetchPage(ctx, scope, 0, 10)
			So(errors.Is(err, ErrStatus), ShouldBeTrue)
		})

		Convey("A cancelled context aborts the request", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := client.FetchPage(cancelled, scope, 0, 10)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("FetchItem is memoised until forgotten", func() {
			item, err := client.FetchItem(ctx, scope, 12)
			So(err, ShouldBeNil)
			So(item.ID, ShouldEqual, 12)
			So(item.HTML, ShouldEqual, "<div>fresh</div>")

			_, _ = client.FetchItem(ctx, scope, 12)
			So(itemHits, ShouldEqual, 1)

			client.Forget(scope, 12)
			_, _ = client.FetchItem(ctx, scope, 12)
			So(itemHits, ShouldEqual, 2)
		})

		Convey("MarkViewed posts every id in one request", func() {
			ids, err := client.MarkViewed(ctx, scope, []int{4, 5, 6})
			So(err, ShouldBeNil)
			So(lastForm["id[]"], ShouldResemble, []string{"4", "5", "6"})
			So(ids, ShouldResemble, IDs{4, 5, 6})
		})
	})
}
