package aggregate

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/infra/scraper"
)

// UntitledPlaceholder is substituted for entries with no title. Items
// that still carry it AND have a near-empty summary are dropped by the
// merge filter as low-value noise.
const UntitledPlaceholder = "Untitled Article"

// Summary length caps for the two display contexts.
const (
	// DetailSummaryCap applies to entity detail timelines.
	DetailSummaryCap = 200
	// CompactSummaryCap applies to the condensed global view.
	CompactSummaryCap = 120
)

// idPrefixLen is how much of title and summary feeds the fallback
// identity hash when an entry has neither guid nor link.
const idPrefixLen = 100

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalizer converts raw feed entries and stored records into the
// canonical Item shape. It is stateless and safe for concurrent use.
type Normalizer struct {
	// SummaryCap bounds normalized summaries; zero means DetailSummaryCap.
	SummaryCap int

	// Now supplies the substitute timestamp for unparseable dates.
	// Defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *Normalizer) summaryCap() int {
	if n.SummaryCap > 0 {
		return n.SummaryCap
	}
	return DetailSummaryCap
}

// NormalizeEntry converts one raw feed entry into an Item labelled with
// the given source and entity slug. The same entry always yields the
// same Item (identity, timestamp and summary included), so repeated
// fetches of one report collapse in deduplication.
func (n *Normalizer) NormalizeEntry(raw scraper.RawEntry, sourceLabel, entitySlug string) entity.Item {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = UntitledPlaceholder
	}

	link := strings.TrimSpace(raw.Link)
	if link == "" {
		link = entity.NoLink
	}

	summary := CapSummary(StripTags(raw.Content), n.summaryCap())

	return entity.Item{
		ID:          n.deriveID(raw.GUID, link, title, summary, sourceLabel),
		Title:       title,
		Link:        link,
		PublishedAt: n.CoerceDate(raw.RawDate),
		Summary:     summary,
		Source:      sourceLabel,
		Kind:        entity.KindRSS,
		EntitySlug:  entitySlug,
	}
}

// BriefingItem builds the pinned manual-briefing Item for an entity, or
// nil when the entity carries no non-trivial summary.
func (n *Normalizer) BriefingItem(e *entity.TrackedEntity) *entity.Item {
	if !e.HasBriefing() {
		return nil
	}
	sentiment := e.Sentiment
	if sentiment == "" {
		sentiment = entity.SentimentNeutral
	}
	return &entity.Item{
		ID:          "manual-briefing",
		Title:       "Analyst Briefing: Market Update",
		Link:        entity.NoLink,
		PublishedAt: n.now(),
		Summary:     CapSummary(strings.TrimSpace(e.Summary), n.summaryCap()),
		Source:      "NexusPulse Analyst",
		Kind:        entity.KindManual,
		Sentiment:   sentiment,
		EntitySlug:  e.Slug,
	}
}

// CoerceDate turns a raw feed date string into a concrete instant.
// It never fails: a native parse is tried first, then the lenient
// dateparse pass, and finally the current time is substituted. Callers
// can rely on every Item carrying a valid timestamp.
func (n *Normalizer) CoerceDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return n.now()
	}

	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t
	}

	return n.now()
}

// deriveID derives the dedup identity for an entry, in priority order:
// source guid, then link, then a stable hash of title + source + summary
// prefix. A random token remains only for entries with no usable signal
// at all, which effectively opts them out of deduplication.
func (n *Normalizer) deriveID(guid, link, title, summary, sourceLabel string) string {
	if guid != "" {
		return guid
	}
	if link != "" && link != entity.NoLink {
		return link
	}
	if title != UntitledPlaceholder || summary != "" {
		h := fnv.New64a()
		_, _ = fmt.Fprintf(h, "%s|%s|%s", prefix(title, idPrefixLen), sourceLabel, prefix(summary, idPrefixLen))
		return fmt.Sprintf("gen-%x", h.Sum64())
	}
	return "anon-" + uuid.NewString()
}

// StripTags removes markup from feed content. Well-formed fragments go
// through goquery so entities and nesting are handled properly; inputs
// the HTML parser rejects fall back to a conservative regexp pass.
func StripTags(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsRune(s, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		} else {
			s = tagPattern.ReplaceAllString(s, "")
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// CapSummary trims s to at most max runes, appending an ellipsis when
// anything was cut.
func CapSummary(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func prefix(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
