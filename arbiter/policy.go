package arbiter

import (
	"fmt"
	"math"
	"strings"

	"github.com/feedview/feedview/visibility"
)

// Policy is the autoplay mode of a view.
type Policy string

const (
	// Off disables automatic playback; manual commands still work.
	Off Policy = "off"
	// On plays the selected video with sound left as it is.
	On Policy = "on"
	// OnMute plays the selected video muted.
	OnMute Policy = "on_mute"
)

// ParsePolicy accepts the configuration spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Off, On, OnMute:
		return p, nil
	default:
		return Off, fmt.Errorf("unknown autoplay policy %q", s)
	}
}

// Sample is the last known visibility of a player.
type Sample struct {
	Intersecting bool
	Ratio        float64
	CenterOffset float64
}

// Selector decides whether a candidate displaces the active player. Preferences are
// strict so that equal candidates never flip the active player back and forth.
type Selector interface {
	Prefer(candidate, incumbent Sample) bool
}

// RatioMax prefers the player with the larger visible share.
type RatioMax struct{}

// Prefer implements Selector.
func (RatioMax) Prefer(candidate, incumbent Sample) bool {
	return candidate.Ratio > incumbent.Ratio
}

// CenterDistance prefers the player closer to the viewport center.
type CenterDistance struct{}

// Prefer implements Selector.
func (CenterDistance) Prefer(candidate, incumbent Sample) bool {
	return math.Abs(candidate.CenterOffset) < math.Abs(incumbent.CenterOffset)
}

// SelectorFor returns the selector matching how an event was observed: threshold events
// carry exact ratios, polling samples carry center offsets.
func SelectorFor(mode visibility.Mode) Selector {
	if mode == visibility.ModePolling {
		return CenterDistance{}
	}
	return RatioMax{}
}
