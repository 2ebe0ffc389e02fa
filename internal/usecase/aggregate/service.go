// Package aggregate implements the dynamics pipeline: it fans out over
// an entity's feeds, normalizes and deduplicates what comes back, and
// merges everything into one bounded, ordered timeline.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/infra/scraper"
	"nexuspulse/internal/observability/metrics"
	"nexuspulse/internal/observability/tracing"
	"nexuspulse/internal/repository"
)

// defaultGlobalConcurrency caps concurrent feed fetches in the global
// view so dozens of configured entities don't stampede slow upstreams.
const defaultGlobalConcurrency = 8

// globalFeedTimeout bounds the whole global fan-out. It is tighter than
// the per-feed fetch timeout because the global view aggregates many
// feeds and a stale condensed card beats a slow page.
const globalFeedTimeout = 6 * time.Second

// FeedScraper fetches and parses one feed into raw entries.
type FeedScraper interface {
	Scrape(ctx context.Context, feedURL string, limit int) ([]scraper.RawEntry, error)
}

// Stats describes one aggregation run for observability; it is returned
// to callers verbatim and never interpreted by the core.
type Stats struct {
	RawCount       int
	DedupedCount   int
	FeedsAttempted int
	FeedsFailed    int
	Duration       time.Duration
}

// Result is the outcome of one aggregation request. It is constructed
// fresh per request and never mutated after return; callers may cache
// it externally under their own TTL policy.
type Result struct {
	Entity *entity.TrackedEntity
	Items  []entity.Item
	Stats  Stats
}

// Service is the aggregation orchestrator. It owns the lifecycle of one
// Result per request and holds no cross-request state.
type Service struct {
	Entities repository.EntityRepository
	Signals  repository.SignalRepository
	Scraper  FeedScraper

	// GlobalConcurrency caps the fan-out of the global view;
	// zero means defaultGlobalConcurrency.
	GlobalConcurrency int

	normalizer        Normalizer
	compactNormalizer Normalizer
}

// NewService creates an aggregation Service with the provided
// collaborators. signals may be nil when no signal store is configured;
// the pipeline then runs on manual and RSS items alone.
func NewService(entities repository.EntityRepository, signals repository.SignalRepository, feedScraper FeedScraper) *Service {
	return &Service{
		Entities:          entities,
		Signals:           signals,
		Scraper:           feedScraper,
		normalizer:        Normalizer{SummaryCap: DetailSummaryCap},
		compactNormalizer: Normalizer{SummaryCap: CompactSummaryCap},
	}
}

// AggregateEntity runs the entity-scoped pipeline for one slug.
// Configuration failures abort the request (there is no meaningful
// partial result without configuration); per-feed failures are absorbed
// into Stats.FeedsFailed.
func (s *Service) AggregateEntity(ctx context.Context, slug string) (*Result, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "aggregate.entity")
	defer span.End()
	span.SetAttributes(attribute.String("entity.slug", slug))

	start := time.Now()

	ent, err := s.Entities.Get(ctx, slug)
	if err != nil {
		metrics.RecordAggregation("entity", "config_error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrConfigLookup, err)
	}
	if ent == nil {
		metrics.RecordAggregation("entity", "not_found", time.Since(start))
		return nil, fmt.Errorf("%w: %q", ErrEntityNotFound, slug)
	}

	var manual []entity.Item
	if briefing := s.normalizer.BriefingItem(ent); briefing != nil {
		manual = append(manual, *briefing)
	}

	signals := s.recentSignals(ctx, slug, MaxOutputItems)
	feeds := ent.FeedSources()
	rss, failed := s.fanOut(ctx, feeds, scraper.DetailEntryCap, &s.normalizer, ent.Slug, 0)

	result := s.assemble(ent, manual, signals, rss, Stats{
		FeedsAttempted: len(feeds),
		FeedsFailed:    failed,
	}, start)

	metrics.RecordAggregation("entity", "ok", result.Stats.Duration)
	return result, nil
}

// AggregateGlobal runs the cross-entity pipeline: recent signals across
// all entities plus every configured entity's feeds, condensed and
// capped. There is no manual pinning in the global view.
func (s *Service) AggregateGlobal(ctx context.Context) (*Result, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "aggregate.global")
	defer span.End()

	start := time.Now()

	entities, err := s.Entities.List(ctx)
	if err != nil {
		metrics.RecordAggregation("global", "config_error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrConfigLookup, err)
	}

	signals := s.recentSignals(ctx, "", MaxOutputItems)

	type target struct {
		src  entity.FeedSource
		slug string
	}
	var targets []target
	for _, ent := range entities {
		for _, src := range ent.FeedSources() {
			// Global cards carry the entity name, not the generic
			// feed label, so readers can tell whose news this is.
			label := src.Label
			if ent.Name != "" {
				label = ent.Name
			}
			targets = append(targets, target{src: entity.FeedSource{URL: src.URL, Label: label}, slug: ent.Slug})
		}
	}

	concurrency := s.GlobalConcurrency
	if concurrency <= 0 {
		concurrency = defaultGlobalConcurrency
	}

	feeds := make([]entity.FeedSource, len(targets))
	slugs := make([]string, len(targets))
	for i, tg := range targets {
		feeds[i] = tg.src
		slugs[i] = tg.slug
	}

	fanCtx, cancel := context.WithTimeout(ctx, globalFeedTimeout)
	defer cancel()
	rss, failed := s.fanOutSlugs(fanCtx, feeds, slugs, scraper.CompactEntryCap, &s.compactNormalizer, concurrency)

	result := s.assemble(nil, nil, signals, rss, Stats{
		FeedsAttempted: len(feeds),
		FeedsFailed:    failed,
	}, start)

	metrics.RecordAggregation("global", "ok", result.Stats.Duration)
	return result, nil
}

// recentSignals reads the signal store, tolerating its absence and its
// failures: a broken store degrades the timeline, it does not break it.
func (s *Service) recentSignals(ctx context.Context, slug string, limit int) []entity.Item {
	if s.Signals == nil {
		return nil
	}
	items, err := s.Signals.ListRecent(ctx, slug, time.Time{}, limit)
	if err != nil {
		slog.Default().Warn("signal store unavailable, continuing without signals",
			slog.String("slug", slug),
			slog.Any("error", err))
		return nil
	}
	out := make([]entity.Item, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}

// fanOut fetches all feeds concurrently with a single entity slug.
func (s *Service) fanOut(ctx context.Context, feeds []entity.FeedSource, entryCap int, norm *Normalizer, slug string, concurrency int) ([]entity.Item, int) {
	slugs := make([]string, len(feeds))
	for i := range slugs {
		slugs[i] = slug
	}
	return s.fanOutSlugs(ctx, feeds, slugs, entryCap, norm, concurrency)
}

// fanOutSlugs fetches all feeds concurrently. Each feed's failure is
// converted to zero items for that feed; one broken or slow feed never
// blocks the others. Every task writes only its own result slot, so no
// state is shared between tasks.
func (s *Service) fanOutSlugs(ctx context.Context, feeds []entity.FeedSource, slugs []string, entryCap int, norm *Normalizer, concurrency int) ([]entity.Item, int) {
	perFeed := make([][]entity.Item, len(feeds))
	failed := make([]bool, len(feeds))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, feed := range feeds {
		g.Go(func() error {
			feedStart := time.Now()
			entries, err := s.Scraper.Scrape(gctx, feed.URL, entryCap)
			if err != nil {
				failed[i] = true
				metrics.RecordFeedFetch(feed.Label, "failed", time.Since(feedStart))
				slog.Default().Warn("feed fetch failed",
					slog.String("url", feed.URL),
					slog.String("source", feed.Label),
					slog.Any("error", err))
				return nil
			}

			items := make([]entity.Item, 0, len(entries))
			for _, raw := range entries {
				items = append(items, norm.NormalizeEntry(raw, feed.Label, slugs[i]))
			}
			perFeed[i] = items

			result := "ok"
			if len(items) == 0 {
				result = "empty"
			}
			metrics.RecordFeedFetch(feed.Label, result, time.Since(feedStart))
			return nil
		})
	}
	// Tasks only ever return nil; the group is used for joining and
	// concurrency limiting, not error propagation.
	_ = g.Wait()

	var all []entity.Item
	failures := 0
	for i := range feeds {
		all = append(all, perFeed[i]...)
		if failed[i] {
			failures++
		}
	}
	return all, failures
}

// assemble runs dedup, merge and stats bookkeeping over the candidate
// union and freezes the Result.
func (s *Service) assemble(ent *entity.TrackedEntity, manual, signals, rss []entity.Item, stats Stats, start time.Time) *Result {
	stats.RawCount = len(manual) + len(signals) + len(rss)

	// Only fetched candidates are deduplicated; the manual briefing is
	// pinned above them and never enters the dedup set, so
	// DedupedCount reports the post-dedup size of signals + RSS alone.
	candidates := make([]entity.Item, 0, len(signals)+len(rss))
	candidates = append(candidates, signals...)
	candidates = append(candidates, rss...)

	deduped := Dedupe(candidates)
	stats.DedupedCount = len(deduped)
	if removed := len(candidates) - len(deduped); removed > 0 {
		metrics.ItemsDedupedTotal.Add(float64(removed))
	}

	union := make([]entity.Item, 0, len(manual)+len(deduped))
	union = append(union, manual...)
	union = append(union, deduped...)

	items := Merge(union)
	for _, it := range items {
		metrics.ItemsEmittedTotal.WithLabelValues(string(it.Kind)).Inc()
	}

	stats.Duration = time.Since(start)
	return &Result{Entity: ent, Items: items, Stats: stats}
}
