package entity

import "strings"

// Feed source labels. Primary is the entity's own feed, secondary is
// typically a news-search feed for the entity.
const (
	PrimaryFeedLabel   = "Primary Feed"
	SecondaryFeedLabel = "News Feed"
)

// TrackedEntity is a person, company, or category the system follows.
// Configuration rows historically spread the same feed URL across several
// legacy column names; repositories resolve those aliases once, so this
// struct only ever carries the canonical primary/secondary pair.
type TrackedEntity struct {
	Name        string
	Slug        string
	Type        string
	Summary     string
	Sentiment   Sentiment
	Tags        []string
	StockSymbol string

	PrimaryRSS   string
	SecondaryRSS string
}

// minBriefingLen is the shortest config summary treated as a real
// manual briefing rather than a placeholder.
const minBriefingLen = 5

// HasBriefing reports whether the entity carries a non-trivial
// operator-authored summary.
func (e *TrackedEntity) HasBriefing() bool {
	return len(strings.TrimSpace(e.Summary)) > minBriefingLen
}

// FeedSources returns the entity's configured feeds as an ordered list,
// excluding empty and placeholder values. Only absolute http(s) URLs are
// ever dereferenced; anything else in configuration is skipped here.
func (e *TrackedEntity) FeedSources() []FeedSource {
	sources := make([]FeedSource, 0, 2)
	if isFetchableURL(e.PrimaryRSS) {
		sources = append(sources, FeedSource{URL: e.PrimaryRSS, Label: PrimaryFeedLabel})
	}
	if isFetchableURL(e.SecondaryRSS) {
		sources = append(sources, FeedSource{URL: e.SecondaryRSS, Label: SecondaryFeedLabel})
	}
	return sources
}

// ResolveFeedAlias returns the first non-empty value from a list of
// legacy configuration fields that all name the same feed concept.
func ResolveFeedAlias(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func isFetchableURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
