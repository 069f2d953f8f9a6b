// Package arbiter keeps at most one player of a view playing, choosing it from visibility
// events.
package arbiter

import (
	"errors"
	"fmt"
	"math"

	"github.com/feedview/feedview/log"
	"github.com/feedview/feedview/player"
	"github.com/feedview/feedview/visibility"
	"github.com/samber/mo"
)

// ErrUnknownPlayer is returned by manual commands naming a key that is not registered.
var ErrUnknownPlayer = errors.New("unknown player")

// Tracker is the part of a visibility observer the arbiter drives.
type Tracker interface {
	Track(key player.Key)
	Untrack(key player.Key)
}

// Arbiter is the Idle / Active(key) state machine of one view.
//
// It runs on the loop: Handle, the manual commands and the registration helpers must be
// called from loop tasks.
type Arbiter struct {
	registry *player.Registry
	tracker  Tracker
	policy   Policy
	active   mo.Option[player.Key]
	samples  map[player.Key]Sample
}

// New creates an idle arbiter over registry.
func New(registry *player.Registry, policy Policy) *Arbiter {
	return &Arbiter{
		registry: registry,
		policy:   policy,
		active:   mo.None[player.Key](),
		samples:  make(map[player.Key]Sample),
	}
}

// Attach connects the observer that feeds this arbiter, so registration and eviction keep
// it in step with the registry.
func (a *Arbiter) Attach(t Tracker) {
	a.tracker = t
}

// Active returns the key of the active player.
func (a *Arbiter) Active() mo.Option[player.Key] {
	return a.active
}

// Policy returns the autoplay policy.
func (a *Arbiter) Policy() Policy {
	return a.policy
}

// SetPolicy changes the autoplay policy. It takes effect on the next transition.
func (a *Arbiter) SetPolicy(p Policy) {
	a.policy = p
}

// Sample returns the last known visibility of key.
func (a *Arbiter) Sample(key player.Key) (Sample, bool) {
	s, ok := a.samples[key]
	return s, ok
}

// Register adds a player and starts observing it. Players registered while the policy
// is OnMute start muted.
func (a *Arbiter) Register(key player.Key, factory player.Factory) (*player.Handle, error) {
	h, loaded, err := a.registry.Register(key, factory)
	if err != nil {
		return nil, err
	}

	if !loaded && a.policy == OnMute {
		if err := h.Mute(); err != nil {
			log.Warn(err)
		}
	}

	if a.tracker != nil {
		a.tracker.Track(key)
	}

	return h, nil
}

// Handle processes one visibility event.
func (a *Arbiter) Handle(ev visibility.Event) {
	a.samples[ev.Key] = Sample{
		Intersecting: ev.Intersecting,
		Ratio:        ev.Ratio,
		CenterOffset: ev.CenterOffset,
	}

	if a.policy == Off {
		return
	}

	if a.registry.Get(ev.Key).IsAbsent() {
		return
	}

	current, isActive := a.active.Get()
	switch {
	case !isActive && ev.Intersecting:
		a.activate(ev.Key)
	case isActive && current == ev.Key && !ev.Intersecting:
		a.deactivate(current)
	case isActive && current != ev.Key && ev.Intersecting:
		if SelectorFor(ev.Mode).Prefer(a.samples[ev.Key], a.samples[current]) {
			a.activate(ev.Key)
		}
	}
}

// activate plays key, applies the mute policy and pauses every other player.
func (a *Arbiter) activate(key player.Key) {
	h, ok := a.registry.Get(key).Get()
	if !ok {
		return
	}

	if err := h.Play(); err != nil {
		log.Warn(err)
	}

	switch a.policy {
	case OnMute:
		if err := h.Mute(); err != nil {
			log.Warn(err)
		}
	case On:
		if err := h.Unmute(); err != nil {
			log.Warn(err)
		}
	}

	a.active = mo.Some(key)
	log.WithFields(log.Fields{"player": key.String()}).Debug("active")

	// failures are logged by the registry
	_ = a.registry.ForEachExcept(key, (*player.Handle).Pause)
}

func (a *Arbiter) deactivate(key player.Key) {
	if h, ok := a.registry.Get(key).Get(); ok {
		if err := h.Pause(); err != nil {
			log.Warn(err)
		}
	}
	a.active = mo.None[player.Key]()
	log.WithFields(log.Fields{"player": key.String()}).Debug("idle")
}

// ForcePlay makes key active regardless of visibility and policy.
func (a *Arbiter) ForcePlay(key player.Key) error {
	if a.registry.Get(key).IsAbsent() {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, key)
	}
	a.activate(key)
	return nil
}

// ForcePauseAll pauses and mutes every player and returns to Idle.
func (a *Arbiter) ForcePauseAll() error {
	a.active = mo.None[player.Key]()
	return a.registry.ForEach(func(h *player.Handle) error {
		return errors.Join(h.Pause(), h.Mute())
	})
}

// PlayCentral force-plays the visible player closest to the viewport center.
func (a *Arbiter) PlayCentral() mo.Option[player.Key] {
	var (
		best     player.Key
		found    bool
		distance = math.Inf(1)
	)

	for _, key := range a.registry.Keys() {
		s, ok := a.samples[key]
		if !ok || s.Ratio <= 0 {
			continue
		}
		if d := math.Abs(s.CenterOffset); d < distance {
			best, distance, found = key, d, true
		}
	}

	if !found {
		return mo.None[player.Key]()
	}

	a.activate(best)
	return mo.Some(best)
}

// Evict forgets a player whose element left the document: it is paused if active,
// unregistered and no longer observed.
func (a *Arbiter) Evict(key player.Key) {
	if current, ok := a.active.Get(); ok && current == key {
		a.deactivate(key)
	}

	a.registry.Unregister(key)
	delete(a.samples, key)

	if a.tracker != nil {
		a.tracker.Untrack(key)
	}
}
