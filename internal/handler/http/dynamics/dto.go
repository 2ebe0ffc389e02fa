// Package dynamics provides the HTTP handlers for the aggregated
// timeline endpoints.
package dynamics

import (
	"time"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/usecase/aggregate"
)

// ItemDTO is the JSON shape of one timeline item. Field names follow
// the dashboard client's contract.
type ItemDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Link           string `json:"link"`
	PubDate        string `json:"pubDate"`
	ContentSnippet string `json:"contentSnippet"`
	Source         string `json:"source"`
	Type           string `json:"type"`
	Sentiment      string `json:"sentiment,omitempty"`
}

// EntityDTO identifies the entity a timeline belongs to.
type EntityDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MetadataDTO carries per-request aggregation statistics.
type MetadataDTO struct {
	TotalItems        int    `json:"totalItems"`
	RawItems          int    `json:"rawItems"`
	DeduplicatedItems int    `json:"deduplicatedItems"`
	DurationMs        int64  `json:"durationMs"`
	Timestamp         string `json:"timestamp"`
	RSSFeedsProcessed int    `json:"rssFeedsProcessed"`
	RSSFeedsFailed    int    `json:"rssFeedsFailed"`
}

// Response is the success body of both timeline endpoints. Entity is
// omitted in the global view.
type Response struct {
	Entity   *EntityDTO  `json:"entity,omitempty"`
	Items    []ItemDTO   `json:"items"`
	Metadata MetadataDTO `json:"metadata"`
}

func toItemDTO(it entity.Item) ItemDTO {
	return ItemDTO{
		ID:             it.ID,
		Title:          it.Title,
		Link:           it.Link,
		PubDate:        it.PublishedAt.UTC().Format(time.RFC3339),
		ContentSnippet: it.Summary,
		Source:         it.Source,
		Type:           string(it.Kind),
		Sentiment:      string(it.Sentiment),
	}
}

// NewResponse maps an aggregation result onto the wire shape.
func NewResponse(result *aggregate.Result) Response {
	items := make([]ItemDTO, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, toItemDTO(it))
	}

	resp := Response{
		Items: items,
		Metadata: MetadataDTO{
			TotalItems:        len(items),
			RawItems:          result.Stats.RawCount,
			DeduplicatedItems: result.Stats.DedupedCount,
			DurationMs:        result.Stats.Duration.Milliseconds(),
			Timestamp:         time.Now().UTC().Format(time.RFC3339),
			RSSFeedsProcessed: result.Stats.FeedsAttempted,
			RSSFeedsFailed:    result.Stats.FeedsFailed,
		},
	}
	if result.Entity != nil {
		resp.Entity = &EntityDTO{Name: result.Entity.Name, Slug: result.Entity.Slug}
	}
	return resp
}
