// Package viewed collects the items a user scrolled past and reports them in one batch.
package viewed

import (
	"context"

	"github.com/feedview/feedview/feed"
	"github.com/feedview/feedview/log"
)

// Marker reports viewed ids and returns the ids the server acknowledged.
type Marker interface {
	MarkViewed(ctx context.Context, ids []int) (feed.IDs, error)
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(ctx context.Context, ids []int) (feed.IDs, error)

// MarkViewed implements Marker.
func (f MarkerFunc) MarkViewed(ctx context.Context, ids []int) (feed.IDs, error) {
	return f(ctx, ids)
}

// Item is the vertical extent of one feed item.
type Item struct {
	ID     int
	Bottom float64
}

// Buffer accumulates ids while scrolling. It is not safe for concurrent use; it lives on
// the loop like the rest of a view.
type Buffer struct {
	marker Marker
	store  *Store
	scope  string

	pending []int
	queued  map[int]struct{}
	marked  map[int]struct{}
}

// NewBuffer creates a buffer for scope. The store is optional; without one nothing is
// remembered between runs.
func NewBuffer(marker Marker, store *Store, scope string) *Buffer {
	b := &Buffer{
		marker: marker,
		store:  store,
		scope:  scope,
		queued: make(map[int]struct{}),
		marked: make(map[int]struct{}),
	}

	if store != nil {
		ids, err := store.Load(scope)
		if err != nil {
			log.Warnf("load viewed record: %v", err)
		}
		for _, id := range ids {
			b.marked[id] = struct{}{}
		}
	}

	return b
}

// Scan queues every item whose bottom edge is above the bottom of the viewport and that
// is neither queued nor acknowledged yet. It returns how many were added.
func (b *Buffer) Scan(scrollTop, height float64, items []Item) int {
	edge := scrollTop + height
	added := 0

	for _, item := range items {
		if _, ok := b.queued[item.ID]; ok {
			continue
		}
		if _, ok := b.marked[item.ID]; ok {
			continue
		}
		if item.Bottom < edge {
			b.queued[item.ID] = struct{}{}
			b.pending = append(b.pending, item.ID)
			added++
		}
	}

	return added
}

// Pending returns the queued ids in scan order.
func (b *Buffer) Pending() []int {
	return append([]int(nil), b.pending...)
}

// Marked reports whether the server acknowledged id.
func (b *Buffer) Marked(id int) bool {
	_, ok := b.marked[id]
	return ok
}

// Flush sends every queued id in a single request. Nothing is sent when the queue is
// empty. On failure the queue is kept for a later flush.
func (b *Buffer) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	acked, err := b.marker.MarkViewed(ctx, b.Pending())
	if err != nil {
		return err
	}

	for _, id := range acked {
		b.marked[id] = struct{}{}
	}
	b.pending = nil
	b.queued = make(map[int]struct{})

	if b.store != nil && len(acked) > 0 {
		if err := b.store.Add(b.scope, acked); err != nil {
			log.Warnf("save viewed record: %v", err)
		}
	}

	log.WithFields(log.Fields{"scope": b.scope, "acknowledged": len(acked)}).Debug("viewed flushed")
	return nil
}
