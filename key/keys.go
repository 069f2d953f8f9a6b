// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Feed Endpoint - these keys locate the feed actions and shape the page requests.
const (
	FeedActionURL      = "feed.action_url"
	FeedTimeout        = "feed.timeout"
	FeedPerPage        = "feed.per_page"
	FeedPerPageDefault = "feed.per_page_default"
	FeedItemCacheTTL   = "feed.item_cache_ttl"
)

// View Identity - these keys describe the rendered view instance the widget drives.
const (
	ViewObjName = "view.obj_name"
	ViewName    = "view.name"
	ViewKind    = "view.kind"
	ViewType    = "view.type"
	ViewOwnerID = "view.owner_id"
	ViewFilter  = "view.filter"
)

// Animation - these keys are passed through to the rendering collaborator.
const (
	AnimationEffect = "animation.effect"
	AnimationSpeed  = "animation.speed"
)

// Infinite Scroll - these keys govern automatic pagination.
const (
	ScrollInfinite     = "scroll.infinite"
	ScrollAutoPreloads = "scroll.auto_preloads"
	ScrollTrigger      = "scroll.trigger"
	ScrollAfterItem    = "scroll.after_item"
	ScrollAfterPercent = "scroll.after_percent"
	ScrollEventsToLoad = "scroll.events_to_load"
)

// Media Playback - these keys maintain the autoplay policy and the player technology.
const (
	PlayerAutoplay      = "player.autoplay"
	Player              = "player.default"
	PlayerEvictOnRemove = "player.evict_on_remove"
)

// Visibility Observation - these keys tune how element visibility is measured.
const (
	VisibilityThreshold = "visibility.threshold"
	VisibilityMode      = "visibility.mode"
)

// Viewed Tracking - these keys control the batched mark-as-viewed buffer.
const (
	ViewedAutoMark = "viewed.auto_mark"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
