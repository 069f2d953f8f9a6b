package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feedview/feedview/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrInvalid is returned by Validate for values outside their allowed set.
var ErrInvalid = errors.New("invalid configuration")

// Allowed values of the enumerated keys.
var (
	Kinds            = []string{"timeline", "outline", "item"}
	Triggers         = []string{"item", "percent"}
	AutoplayModes    = []string{"off", "on", "on_mute"}
	Players          = []string{"virtual", "mpv"}
	VisibilityModes  = []string{"auto", "threshold", "polling"}
	AnimationEffects = []string{"slide", "fade", "none"}

	// Filters are the feed filters the host cycles through. The server may know more.
	Filters = []string{"all", "own", "other", "hot"}
)

// Options is the host configuration of one view, read from viper.
type Options struct {
	ActionURL      string
	Timeout        time.Duration
	PerPage        int
	PerPageDefault int
	ItemCacheTTL   time.Duration

	ObjName string
	Name    string
	Kind    string
	Type    string
	OwnerID int
	Filter  string

	AnimationEffect string
	AnimationSpeed  string

	InfiniteScroll bool
	AutoPreloads   int
	Trigger        string
	AfterItem      int
	AfterPercent   float64
	EventsToLoad   bool

	Autoplay      string
	Player        string
	EvictOnRemove bool

	VisibilityThreshold float64
	VisibilityMode      string

	AutoMarkViewed bool
}

// Load reads the current viper state into Options and validates it.
func Load() (*Options, error) {
	opts := &Options{
		ActionURL:      viper.GetString(key.FeedActionURL),
		Timeout:        time.Duration(viper.GetInt(key.FeedTimeout)) * time.Second,
		PerPage:        viper.GetInt(key.FeedPerPage),
		PerPageDefault: viper.GetInt(key.FeedPerPageDefault),
		ItemCacheTTL:   time.Duration(viper.GetInt(key.FeedItemCacheTTL)) * time.Second,

		ObjName: viper.GetString(key.ViewObjName),
		Name:    viper.GetString(key.ViewName),
		Kind:    strings.ToLower(viper.GetString(key.ViewKind)),
		Type:    viper.GetString(key.ViewType),
		OwnerID: viper.GetInt(key.ViewOwnerID),
		Filter:  viper.GetString(key.ViewFilter),

		AnimationEffect: viper.GetString(key.AnimationEffect),
		AnimationSpeed:  viper.GetString(key.AnimationSpeed),

		InfiniteScroll: viper.GetBool(key.ScrollInfinite),
		AutoPreloads:   viper.GetInt(key.ScrollAutoPreloads),
		Trigger:        strings.ToLower(viper.GetString(key.ScrollTrigger)),
		AfterItem:      viper.GetInt(key.ScrollAfterItem),
		AfterPercent:   viper.GetFloat64(key.ScrollAfterPercent),
		EventsToLoad:   viper.GetBool(key.ScrollEventsToLoad),

		Autoplay:      strings.ToLower(viper.GetString(key.PlayerAutoplay)),
		Player:        strings.ToLower(viper.GetString(key.Player)),
		EvictOnRemove: viper.GetBool(key.PlayerEvictOnRemove),

		VisibilityThreshold: viper.GetFloat64(key.VisibilityThreshold),
		VisibilityMode:      strings.ToLower(viper.GetString(key.VisibilityMode)),

		AutoMarkViewed: viper.GetBool(key.ViewedAutoMark),
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// Validate checks enumerations and ranges.
func (o *Options) Validate() error {
	oneOf := func(k, v string, allowed []string) error {
		if lo.Contains(allowed, v) {
			return nil
		}
		return fmt.Errorf("%w: %s=%q, expected one of %s", ErrInvalid, k, v, strings.Join(allowed, ", "))
	}

	var errs []error
	errs = append(errs,
		oneOf(key.ViewKind, o.Kind, Kinds),
		oneOf(key.ScrollTrigger, o.Trigger, Triggers),
		oneOf(key.PlayerAutoplay, o.Autoplay, AutoplayModes),
		oneOf(key.Player, o.Player, Players),
		oneOf(key.VisibilityMode, o.VisibilityMode, VisibilityModes),
	)

	if o.ActionURL == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalid, key.FeedActionURL))
	}

	if o.PerPage <= 0 || o.PerPageDefault <= 0 {
		errs = append(errs, fmt.Errorf("%w: page sizes must be positive", ErrInvalid))
	}

	if o.AutoPreloads < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative", ErrInvalid, key.ScrollAutoPreloads))
	}

	if o.AfterItem < 1 {
		errs = append(errs, fmt.Errorf("%w: %s must be at least 1", ErrInvalid, key.ScrollAfterItem))
	}

	if o.AfterPercent < 0 || o.AfterPercent > 1 {
		errs = append(errs, fmt.Errorf("%w: %s must be within [0, 1]", ErrInvalid, key.ScrollAfterPercent))
	}

	if o.VisibilityThreshold < 0 || o.VisibilityThreshold > 1 {
		errs = append(errs, fmt.Errorf("%w: %s must be within [0, 1]", ErrInvalid, key.VisibilityThreshold))
	}

	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s must not be negative", ErrInvalid, key.FeedTimeout))
	}

	return errors.Join(errs...)
}

// Autoplays reports whether the view kind arbitrates playback automatically.
func (o *Options) Autoplays() bool {
	return o.Kind == "timeline"
}

// Scrolls reports whether the view kind supports infinite scrolling.
func (o *Options) Scrolls() bool {
	return o.InfiniteScroll && (o.Kind == "timeline" || o.Kind == "outline")
}
