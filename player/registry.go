package player

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/feedview/feedview/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Registry holds the handles of one view. Registration is idempotent and iteration is
// fault isolated: one misbehaving player never stops commands reaching the others.
type Registry struct {
	mu      sync.RWMutex
	handles map[Key]*Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[Key]*Handle)}
}

// Register returns the handle for key, creating it with factory on first use.
// loaded reports that the key already existed; the factory is not called then.
func (r *Registry) Register(key Key, factory Factory) (handle *Handle, loaded bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[key]; ok {
		log.Debugf("player %s already exists. Skipping", key)
		return h, true, nil
	}

	ctl, err := factory(key)
	if err != nil {
		return nil, false, fmt.Errorf("create player %s: %w", key, err)
	}
	if ctl == nil {
		return nil, false, fmt.Errorf("create player %s: %w", key, ErrNilController)
	}

	h := newHandle(key, ctl)
	r.handles[key] = h
	return h, false, nil
}

// Unregister removes key and closes its controller when it holds resources.
func (r *Registry) Unregister(key Key) {
	r.mu.Lock()
	h, ok := r.handles[key]
	delete(r.handles, key)
	r.mu.Unlock()

	if !ok {
		return
	}

	if closer, ok := h.ctl.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("close player %s: %v", key, err)
		}
	}
}

// Get looks up a handle.
func (r *Registry) Get(key Key) mo.Option[*Handle] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handles[key]; ok {
		return mo.Some(h)
	}
	return mo.None[*Handle]()
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Keys returns the registered keys in their string order.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := lo.Keys(r.handles)
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Playing returns the keys whose handle is playing.
func (r *Registry) Playing() []Key {
	return lo.Filter(r.Keys(), func(k Key, _ int) bool {
		h, ok := r.Get(k).Get()
		return ok && h.Playing()
	})
}

// ForEach applies fn to every handle. See ForEachExcept.
func (r *Registry) ForEach(fn func(*Handle) error) error {
	return r.each(mo.None[Key](), fn)
}

// ForEachExcept applies fn to every handle but the one at key. Errors and panics are
// logged per handle and returned joined once every handle was visited.
func (r *Registry) ForEachExcept(key Key, fn func(*Handle) error) error {
	return r.each(mo.Some(key), fn)
}

func (r *Registry) each(skip mo.Option[Key], fn func(*Handle) error) error {
	var errs []error

	for _, k := range r.Keys() {
		if except, ok := skip.Get(); ok && except == k {
			continue
		}

		h, ok := r.Get(k).Get()
		if !ok {
			continue
		}

		if err := guard(h, fn); err != nil {
			log.WithFields(log.Fields{"player": k.String()}).Warn(err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func guard(h *Handle, fn func(*Handle) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("player %s panicked: %v", h.key, p)
		}
	}()
	return fn(h)
}

// Close unregisters every handle.
func (r *Registry) Close() {
	for _, k := range r.Keys() {
		r.Unregister(k)
	}
}
