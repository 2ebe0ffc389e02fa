package aggregate

import "errors"

// Errors surfaced to handlers. Per-feed failures never appear here;
// they are absorbed into Stats.FeedsFailed.
var (
	// ErrEntityNotFound indicates no tracked entity matches the slug.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrConfigLookup indicates the configuration backend failed; the
	// request has no meaningful partial result without configuration.
	ErrConfigLookup = errors.New("configuration lookup failed")
)
