package util

// Ring keeps the last cap pushed values, dropping the oldest once full.
type Ring[T any] struct {
	items []T
	cap   int
}

// NewRing creates an empty ring holding at most n values.
func NewRing[T any](n int) *Ring[T] {
	return &Ring[T]{cap: Max(n, 1)}
}

// Push appends an item, evicting the oldest one when the ring is full.
func (r *Ring[T]) Push(item T) {
	if len(r.items) == r.cap {
		r.items = r.items[1:]
	}
	r.items = append(r.items, item)
}

// Items returns the stored values from oldest to newest.
func (r *Ring[T]) Items() []T {
	return append([]T(nil), r.items...)
}

// Last returns the newest value; the zero value if the ring is empty.
func (r *Ring[T]) Last() (item T) {
	if len(r.items) == 0 {
		return
	}
	return r.items[len(r.items)-1]
}

// Len returns the number of stored values.
func (r *Ring[T]) Len() int {
	return len(r.items)
}
