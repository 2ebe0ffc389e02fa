// Package entity defines the core domain objects for the application:
// aggregated items, tracked entities and the feed sources derived from
// their configuration.
package entity

import "time"

// Kind identifies the provenance class of an aggregated item.
type Kind string

const (
	// KindManual marks an operator-authored briefing attached to entity configuration.
	KindManual Kind = "manual"
	// KindSignal marks an item originating from the structured signal store.
	KindSignal Kind = "signal"
	// KindRSS marks an item parsed from a live RSS/Atom feed.
	KindRSS Kind = "rss"
)

// Sentiment is a coarse tone label attached to manual and signal items.
// RSS items carry it only when a classifier has labelled them.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// NoLink is the sentinel link value for manual and internal items
// that have no external URL to point at.
const NoLink = "#"

// Item is the canonical aggregated unit produced by the dynamics pipeline.
// Its ID is derived deterministically from source fields so that the same
// underlying report collapses to one item across refreshes.
type Item struct {
	ID          string
	Title       string
	Link        string
	PublishedAt time.Time
	Summary     string
	Source      string
	Kind        Kind
	Sentiment   Sentiment
	EntitySlug  string
}

// HasLink reports whether the item points at an external URL.
func (i *Item) HasLink() bool {
	return i.Link != "" && i.Link != NoLink
}

// FeedSource is one feed URL to fetch, with the provenance label its
// items will carry. It is constructed per aggregation request from
// entity configuration and never persisted.
type FeedSource struct {
	URL   string
	Label string
}
