package view

import (
	"context"
	"fmt"

	"github.com/feedview/feedview/arbiter"
	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/player"
	"github.com/samber/mo"
)

// ChangeFilter switches the feed filter and reloads the first page.
func (v *View) ChangeFilter(filter string) {
	v.scope.Filter = filter
	v.pager.Reload(v.ctx, "filter")
}

// ChangeTimeline jumps to a date and reloads the first page.
func (v *View) ChangeTimeline(date string) {
	v.scope.Timeline = date
	v.pager.Reload(v.ctx, "timeline")
}

// ChangeView switches the feed type and reloads the first page.
func (v *View) ChangeView(kind string) {
	v.scope.Type = kind
	v.scope.Blink = ""
	v.pager.Reload(v.ctx, "view")
}

// GoTo reloads the first page highlighting the given item ids.
func (v *View) GoTo(blink string) {
	v.scope.Blink = blink
	v.pager.Reload(v.ctx, "go_to")
}

// Reload fetches the first page again with the current selection.
func (v *View) Reload() {
	v.pager.Reload(v.ctx, "reload")
}

// LoadMore requests the next page on user demand.
func (v *View) LoadMore() bool {
	return v.pager.LoadMore(v.ctx)
}

// PlayVideos plays the visible video closest to the viewport center.
// Views without autoplay ignore it.
func (v *View) PlayVideos() mo.Option[player.Key] {
	if v.arbiter.Policy() == arbiter.Off {
		return mo.None[player.Key]()
	}
	return v.arbiter.PlayCentral()
}

// PauseVideos pauses and mutes every video of the view.
func (v *View) PauseVideos() {
	if err := v.arbiter.ForcePauseAll(); err != nil {
		log.Warnf("pause videos: %v", err)
	}
}

// RemoveItem drops an item from the document, e.g. after it was deleted.
func (v *View) RemoveItem(id int) error {
	item, ok := v.doc.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}

	v.dropMedia(item)
	if f, ok := v.client.(Forgetter); ok {
		f.Forget(v.scope, id)
	}

	v.showEmpty()
	v.scrollTo(v.viewport.ScrollTop)
	v.observer.Notify()
	return nil
}

// RefreshItem fetches an item again and replaces it in place once the answer arrives.
// done, when set, runs on the loop with the outcome.
func (v *View) RefreshItem(ctx context.Context, id int, done func(error)) {
	if _, ok := v.doc.Find(id); !ok {
		if done != nil {
			done(fmt.Errorf("%w: %d", ErrUnknownItem, id))
		}
		return
	}

	if f, ok := v.client.(Forgetter); ok {
		f.Forget(v.scope, id)
	}

	scope := v.scope
	go func() {
		item, err := v.client.FetchItem(ctx, scope, id)
		v.sched.Post(func() {
			if err == nil {
				err = v.applyItem(id, item.HTML)
			}
			if err != nil {
				log.Warnf("refresh item %d: %v", id, err)
			}
			if done != nil {
				done(err)
			}
		})
	}()
}

func (v *View) applyItem(id int, html string) error {
	items, err := Parse(html)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return v.RemoveItem(id)
	}

	fresh := items[0]
	fresh.ID = id
	previous, ok := v.doc.Update(fresh)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, id)
	}

	kept := make(map[string]bool, len(fresh.Media))
	for _, m := range fresh.Media {
		kept[m.Element] = true
	}
	stale := &Item{}
	for _, m := range previous.Media {
		if !kept[m.Element] {
			stale.Media = append(stale.Media, m)
		}
	}

	v.dropMedia(stale)
	v.registerMedia([]*Item{fresh})
	v.observer.Notify()
	return nil
}

// Close reports viewed items, stops every player and observer.
func (v *View) Close(ctx context.Context) error {
	v.observer.Stop()
	v.pager.Reset("close")

	var err error
	if v.viewed != nil {
		err = v.viewed.Flush(ctx)
	}

	v.PauseVideos()
	v.registry.Close()
	return err
}
