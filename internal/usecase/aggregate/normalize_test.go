package aggregate

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/infra/scraper"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func pinnedNormalizer() Normalizer {
	return Normalizer{Now: func() time.Time { return fixedNow }}
}

func TestNormalizeEntry_Idempotent(t *testing.T) {
	n := pinnedNormalizer()
	raw := scraper.RawEntry{
		Title:   "Acme beats estimates",
		Link:    "https://example.com/acme-q2",
		RawDate: "Mon, 01 Jan 2024 10:30:00 +0000",
		Content: "<p>Acme Corp reported <b>record</b> revenue.</p>",
	}

	a := n.NormalizeEntry(raw, "Primary Feed", "acme")
	b := n.NormalizeEntry(raw, "Primary Feed", "acme")

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("normalizing the same entry twice diverged (-first +second):\n%s", diff)
	}
	if a.ID != "https://example.com/acme-q2" {
		t.Errorf("ID = %q, want link-derived id", a.ID)
	}
	if a.Kind != entity.KindRSS {
		t.Errorf("Kind = %q, want rss", a.Kind)
	}
	if a.Summary != "Acme Corp reported record revenue." {
		t.Errorf("Summary = %q, want stripped text", a.Summary)
	}
}

func TestNormalizeEntry_IdentityPriority(t *testing.T) {
	n := pinnedNormalizer()

	tests := []struct {
		name   string
		raw    scraper.RawEntry
		wantID string
	}{
		{
			name:   "guid wins over link",
			raw:    scraper.RawEntry{GUID: "guid-7", Link: "https://example.com/a", Title: "T"},
			wantID: "guid-7",
		},
		{
			name:   "link when no guid",
			raw:    scraper.RawEntry{Link: "https://example.com/b", Title: "T"},
			wantID: "https://example.com/b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.NormalizeEntry(tt.raw, "News Feed", "")
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestNormalizeEntry_HashFallbackIsStable(t *testing.T) {
	n := pinnedNormalizer()
	raw := scraper.RawEntry{Title: "No link here", Content: "some body text"}

	first := n.NormalizeEntry(raw, "News Feed", "")
	second := n.NormalizeEntry(raw, "News Feed", "")

	if first.ID != second.ID {
		t.Errorf("hash-fallback id not stable across fetches: %q vs %q", first.ID, second.ID)
	}
	if !strings.HasPrefix(first.ID, "gen-") {
		t.Errorf("ID = %q, want gen- prefixed hash id", first.ID)
	}

	// A different source must not collide.
	other := n.NormalizeEntry(raw, "Primary Feed", "")
	if other.ID == first.ID {
		t.Error("hash id collides across sources")
	}
}

func TestNormalizeEntry_AnonymousEntriesStayUnique(t *testing.T) {
	n := pinnedNormalizer()
	raw := scraper.RawEntry{} // no title, no link, no content

	a := n.NormalizeEntry(raw, "News Feed", "")
	b := n.NormalizeEntry(raw, "News Feed", "")
	if a.ID == b.ID {
		t.Error("entries with no identity signal should not share an id")
	}
	if a.Title != UntitledPlaceholder {
		t.Errorf("Title = %q, want placeholder", a.Title)
	}
}

func TestCoerceDate(t *testing.T) {
	n := pinnedNormalizer()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc1123z", "Mon, 01 Jan 2024 10:30:00 +0000", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc3339", "2024-03-05T08:00:00Z", time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)},
		{"lenient format", "2024/03/05 08:00:00", time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)},
		{"garbage falls back to now", "not-a-date", fixedNow},
		{"empty falls back to now", "", fixedNow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.CoerceDate(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("CoerceDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerceDate_NeverBeforeProcessForGarbage(t *testing.T) {
	n := Normalizer{} // real clock
	before := time.Now().Add(-time.Second)

	got := n.CoerceDate("definitely not a date")
	if got.Before(before) {
		t.Errorf("CoerceDate(garbage) = %v, want a current timestamp", got)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "no markup here", "no markup here"},
		{"simple tags", "<p>hello <b>world</b></p>", "hello world"},
		{"nested with entities", "<div>AT&amp;T <span>rises</span></div>", "AT&T rises"},
		{"whitespace collapsed", "  a \n\n  b  ", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.in); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCapSummary(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := CapSummary(long, DetailSummaryCap)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("capped summary missing ellipsis: %q", got)
	}
	if len([]rune(got)) > DetailSummaryCap+3 {
		t.Errorf("capped summary too long: %d runes", len([]rune(got)))
	}

	short := "short enough"
	if got := CapSummary(short, DetailSummaryCap); got != short {
		t.Errorf("CapSummary(short) = %q, want unchanged", got)
	}
}

func TestBriefingItem(t *testing.T) {
	n := pinnedNormalizer()

	ent := &entity.TrackedEntity{
		Name:      "Acme Corp",
		Slug:      "acme",
		Summary:   "Strong earnings beat",
		Sentiment: entity.SentimentPositive,
	}

	item := n.BriefingItem(ent)
	if item == nil {
		t.Fatal("BriefingItem() = nil, want briefing")
	}
	if item.ID != "manual-briefing" {
		t.Errorf("ID = %q, want manual-briefing", item.ID)
	}
	if item.Kind != entity.KindManual {
		t.Errorf("Kind = %q, want manual", item.Kind)
	}
	if item.Link != entity.NoLink {
		t.Errorf("Link = %q, want no-link sentinel", item.Link)
	}
	if item.Sentiment != entity.SentimentPositive {
		t.Errorf("Sentiment = %q, want positive", item.Sentiment)
	}
	if !item.PublishedAt.Equal(fixedNow) {
		t.Errorf("PublishedAt = %v, want now", item.PublishedAt)
	}

	// Trivial summaries produce no briefing.
	if got := n.BriefingItem(&entity.TrackedEntity{Summary: "hi"}); got != nil {
		t.Errorf("BriefingItem(trivial) = %+v, want nil", got)
	}

	// Missing sentiment defaults to neutral.
	neutral := n.BriefingItem(&entity.TrackedEntity{Summary: "long enough summary"})
	if neutral.Sentiment != entity.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral default", neutral.Sentiment)
	}
}
