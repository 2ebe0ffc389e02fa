// Package scraper turns raw feed documents into entry sequences.
// It uses the gofeed library, which understands both RSS <item> and
// Atom <entry> elements (including href-style Atom links).
package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RawEntry is one feed entry before normalization. Dates and content
// are kept raw here; the normalizer owns coercion and capping.
type RawEntry struct {
	Title   string
	Link    string
	GUID    string
	RawDate string
	Content string
}

// Per-feed entry caps. Feeds are assumed to be in native recency order,
// so the cap is taken from document order without sorting.
const (
	// DetailEntryCap bounds entries per feed for entity detail views.
	DetailEntryCap = 20
	// CompactEntryCap bounds entries per feed for the global view,
	// where many feeds are merged and each may only contribute a few.
	CompactEntryCap = 2
)

// Fetcher retrieves the raw document for one feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (string, error)
}

// RSSScraper fetches and parses one feed into raw entries.
type RSSScraper struct {
	fetcher Fetcher
	parser  *gofeed.Parser
}

// NewRSSScraper creates an RSSScraper on top of the given fetcher.
func NewRSSScraper(fetcher Fetcher) *RSSScraper {
	return &RSSScraper{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
	}
}

// Scrape fetches feedURL and returns up to limit raw entries.
// Fetch failures are returned as errors; malformed feed markup is not
// an error and yields an empty slice, since low-quality sources emit
// broken XML routinely.
func (s *RSSScraper) Scrape(ctx context.Context, feedURL string, limit int) ([]RawEntry, error) {
	raw, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return s.Parse(raw, limit), nil
}

// Parse converts a raw feed document into at most limit entries, in
// document order. A document gofeed cannot parse yields an empty slice.
func (s *RSSScraper) Parse(raw string, limit int) []RawEntry {
	feed, err := s.parser.ParseString(raw)
	if err != nil {
		slog.Debug("unparseable feed document", slog.Any("error", err))
		return nil
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	entries := make([]RawEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, RawEntry{
			Title:   strings.TrimSpace(it.Title),
			Link:    strings.TrimSpace(it.Link),
			GUID:    strings.TrimSpace(it.GUID),
			RawDate: rawDate(it),
			Content: rawContent(it),
		})
	}
	return entries
}

// rawDate returns the first of pubDate / published / updated.
func rawDate(it *gofeed.Item) string {
	if it.Published != "" {
		return it.Published
	}
	return it.Updated
}

// rawContent returns the richest content field available: extended
// content first, then description/summary.
func rawContent(it *gofeed.Item) string {
	if it.Content != "" {
		return it.Content
	}
	return it.Description
}
