package constant

import "time"

// Scroll and observation cadence.
const (
	// ScrollThrottle bounds scroll-driven evaluations to one per interval.
	ScrollThrottle = 100 * time.Millisecond

	// PollInterval is the polling cadence when no frame scheduler is available.
	PollInterval = 100 * time.Millisecond

	// FrameInterval approximates one animation frame for hosts that schedule frames.
	FrameInterval = 16 * time.Millisecond
)

// Pagination defaults.
const (
	PerPage        = 10
	PerPageDefault = 10
	AutoPreloads   = 10
	AfterItem      = 2
	AfterPercent   = 0.25
	FetchTimeout   = 30 * time.Second
	ItemCacheTTL   = 30 * time.Second
)

// VisibilityThreshold is the visible share of a video required to play it.
const VisibilityThreshold = 0.5

// Markup classes and ids produced by the feed endpoint.
const (
	ClassItem       = "bx-tl-item"
	ItemIDPrefix    = "bx-timeline-item-"
	MediaSelector   = "iframe[id], video[id]"
	ScopeIDTemplate = "bx-timeline-%s-%s-%s"
)

// ViewedLifetime is how long the record of acknowledged viewed items is trusted.
const ViewedLifetime = 30 * 24 * time.Hour
