// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Feedview is the canonical application identifier used for filesystem paths, env prefixes and CLI branding.
	Feedview = "feedview"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is the HTTP User-Agent sent to the feed endpoint.
	UserAgent = "feedview/" + Version
)
