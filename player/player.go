// Package player keeps the live media players of a view and the controllers behind them.
//
// Players are owned elsewhere (an embedded frame, a video element, an external process);
// the registry only holds a Handle per element so coordinators can play, pause and mute
// them without knowing the technology.
package player

import (
	"errors"
	"fmt"
)

// ErrNilController is returned when a factory yields no controller.
var ErrNilController = errors.New("nil controller")

// Key identifies a player: the view (arbitration scope) and the media element inside it.
type Key struct {
	Scope   string
	Element string
}

// String renders the key as scope_element.
func (k Key) String() string {
	return k.Scope + "_" + k.Element
}

// Controller is the capability every player technology provides.
type Controller interface {
	Play() error
	Pause() error
	Mute() error
	Unmute() error
	IsPlaying() bool
}

// Factory creates the controller for a newly registered key.
type Factory func(Key) (Controller, error)

// Handle is the registry's view of one player. Its flags reflect the last successful command.
type Handle struct {
	key     Key
	ctl     Controller
	muted   bool
	playing bool
}

func newHandle(key Key, ctl Controller) *Handle {
	return &Handle{key: key, ctl: ctl, playing: ctl.IsPlaying()}
}

// Key returns the handle's key.
func (h *Handle) Key() Key {
	return h.key
}

// Controller exposes the underlying technology.
func (h *Handle) Controller() Controller {
	return h.ctl
}

// Playing reports whether the last command left the player playing.
func (h *Handle) Playing() bool {
	return h.playing
}

// Muted reports whether the last command left the player muted.
func (h *Handle) Muted() bool {
	return h.muted
}

// Play starts playback.
func (h *Handle) Play() error {
	if err := h.ctl.Play(); err != nil {
		return fmt.Errorf("play %s: %w", h.key, err)
	}
	h.playing = true
	return nil
}

// Pause suspends playback.
func (h *Handle) Pause() error {
	if err := h.ctl.Pause(); err != nil {
		return fmt.Errorf("pause %s: %w", h.key, err)
	}
	h.playing = false
	return nil
}

// Mute silences the player.
func (h *Handle) Mute() error {
	if err := h.ctl.Mute(); err != nil {
		return fmt.Errorf("mute %s: %w", h.key, err)
	}
	h.muted = true
	return nil
}

// Unmute restores sound.
func (h *Handle) Unmute() error {
	if err := h.ctl.Unmute(); err != nil {
		return fmt.Errorf("unmute %s: %w", h.key, err)
	}
	h.muted = false
	return nil
}

// Sync refreshes the playing flag from the controller, e.g. after the user paused an
// external player window.
func (h *Handle) Sync() {
	h.playing = h.ctl.IsPlaying()
}
