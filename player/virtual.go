package player

import (
	"sync"

	"github.com/feedview/feedview/util"
)

// historySize bounds the commands a Virtual player remembers.
const historySize = 16

// Virtual is an in-memory player. The terminal host draws its state in the item gutter
// and tests use it to observe commands.
type Virtual struct {
	mu      sync.Mutex
	playing bool
	muted   bool
	history *util.Ring[string]
}

// NewVirtual returns a paused, unmuted player.
func NewVirtual() *Virtual {
	return &Virtual{history: util.NewRing[string](historySize)}
}

// VirtualFactory creates Virtual controllers.
func VirtualFactory(Key) (Controller, error) {
	return NewVirtual(), nil
}

func (v *Virtual) record(cmd string) {
	v.history.Push(cmd)
}

// Play implements Controller.
func (v *Virtual) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = true
	v.record("play")
	return nil
}

// Pause implements Controller.
func (v *Virtual) Pause() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.record("pause")
	return nil
}

// Mute implements Controller.
func (v *Virtual) Mute() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = true
	v.record("mute")
	return nil
}

// Unmute implements Controller.
func (v *Virtual) Unmute() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.muted = false
	v.record("unmute")
	return nil
}

// IsPlaying implements Controller.
func (v *Virtual) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// IsMuted reports the mute state.
func (v *Virtual) IsMuted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.muted
}

// History returns the most recent commands, oldest first.
func (v *Virtual) History() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history.Items()
}
