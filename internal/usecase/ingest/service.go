// Package ingest implements the background worker pipeline: it walks
// every configured entity's feeds, normalizes and deduplicates new
// entries against the signal store, labels their tone, and persists
// them as signals for later aggregation.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/infra/scraper"
	"nexuspulse/internal/infra/sentiment"
	"nexuspulse/internal/observability/metrics"
	"nexuspulse/internal/repository"
	"nexuspulse/internal/usecase/aggregate"
)

// classifyParallelism caps concurrent sentiment API calls (rate-limited).
const classifyParallelism = 5

// Service provides the feed ingestion use case. It orchestrates
// fetching, dedup against the store, tone labelling, and persistence.
type Service struct {
	Entities   repository.EntityRepository
	Signals    repository.SignalRepository
	Scraper    aggregate.FeedScraper
	Classifier sentiment.Classifier

	normalizer aggregate.Normalizer
}

// NewService creates an ingest Service. classifier may be nil, in which
// case stored signals keep the neutral default.
func NewService(
	entities repository.EntityRepository,
	signals repository.SignalRepository,
	feedScraper aggregate.FeedScraper,
	classifier sentiment.Classifier,
) *Service {
	return &Service{
		Entities:   entities,
		Signals:    signals,
		Scraper:    feedScraper,
		Classifier: classifier,
		normalizer: aggregate.Normalizer{SummaryCap: aggregate.DetailSummaryCap},
	}
}

// Stats contains statistics about one ingest cycle.
type Stats struct {
	Entities       int
	FeedItems      int64
	Inserted       int64
	Duplicated     int64
	ClassifyErrors int64
	FeedErrors     int64
	Duration       time.Duration
}

// RunAll ingests signals for every configured entity. Per-feed and
// per-item failures are absorbed into the stats; only a configuration
// lookup failure aborts the cycle.
func (s *Service) RunAll(ctx context.Context) (*Stats, error) {
	logger := slog.Default()
	startAll := time.Now()
	stats := &Stats{}

	ents, err := s.Entities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	stats.Entities = len(ents)

	for _, ent := range ents {
		if err := s.ingestEntity(ctx, ent, stats); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(startAll)
	metrics.IngestRunDuration.Observe(stats.Duration.Seconds())
	logger.Info("ingest cycle completed",
		slog.Int("entities", stats.Entities),
		slog.Int64("feed_items", stats.FeedItems),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int64("classify_errors", stats.ClassifyErrors),
		slog.Int64("feed_errors", stats.FeedErrors),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// ingestEntity processes one entity's feeds. Feed fetch failures are
// logged and skipped so one dead upstream never stalls the cycle.
func (s *Service) ingestEntity(ctx context.Context, ent *entity.TrackedEntity, stats *Stats) error {
	logger := slog.Default()

	var candidates []entity.Item
	for _, src := range ent.FeedSources() {
		entries, err := s.Scraper.Scrape(ctx, src.URL, scraper.DetailEntryCap)
		if err != nil {
			atomic.AddInt64(&stats.FeedErrors, 1)
			logger.Warn("ingest feed fetch failed",
				slog.String("slug", ent.Slug),
				slog.String("url", src.URL),
				slog.Any("error", err))
			continue
		}
		for _, raw := range entries {
			candidates = append(candidates, s.normalizer.NormalizeEntry(raw, src.Label, ent.Slug))
		}
	}

	candidates = aggregate.Dedupe(candidates)
	atomic.AddInt64(&stats.FeedItems, int64(len(candidates)))
	if len(candidates) == 0 {
		return nil
	}

	fresh, err := s.filterKnown(ctx, candidates, stats)
	if err != nil {
		// A broken store check degrades to per-insert conflict
		// handling rather than skipping the whole entity.
		logger.Warn("batch dedup check failed, relying on insert conflicts",
			slog.String("slug", ent.Slug),
			slog.Any("error", err))
		fresh = candidates
	}

	s.classifyAll(ctx, fresh, stats)

	for i := range fresh {
		item := fresh[i]
		item.Kind = entity.KindSignal

		inserted, err := s.Signals.Insert(ctx, &item)
		switch {
		case err != nil:
			metrics.SignalsIngestedTotal.WithLabelValues("error").Inc()
			logger.Warn("signal insert failed",
				slog.String("slug", ent.Slug),
				slog.String("id", item.ID),
				slog.Any("error", err))
		case inserted:
			atomic.AddInt64(&stats.Inserted, 1)
			metrics.SignalsIngestedTotal.WithLabelValues("inserted").Inc()
		default:
			atomic.AddInt64(&stats.Duplicated, 1)
			metrics.SignalsIngestedTotal.WithLabelValues("duplicate").Inc()
		}
	}
	return nil
}

// filterKnown drops candidates whose IDs already exist in the store.
func (s *Service) filterKnown(ctx context.Context, candidates []entity.Item, stats *Stats) ([]entity.Item, error) {
	ids := make([]string, len(candidates))
	for i, it := range candidates {
		ids[i] = it.ID
	}

	known, err := s.Signals.ExistsByIDBatch(ctx, ids)
	if err != nil {
		return nil, err
	}

	fresh := make([]entity.Item, 0, len(candidates))
	for _, it := range candidates {
		if known[it.ID] {
			atomic.AddInt64(&stats.Duplicated, 1)
			metrics.SignalsIngestedTotal.WithLabelValues("duplicate").Inc()
			continue
		}
		fresh = append(fresh, it)
	}
	return fresh, nil
}

// classifyAll labels the fresh items in parallel, bounded by
// classifyParallelism. Classification failures leave the neutral
// default in place and never fail the ingest.
func (s *Service) classifyAll(ctx context.Context, items []entity.Item, stats *Stats) {
	if s.Classifier == nil {
		for i := range items {
			if items[i].Sentiment == "" {
				items[i].Sentiment = entity.SentimentNeutral
			}
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyParallelism)

	for i := range items {
		g.Go(func() error {
			label, err := s.Classifier.Classify(gctx, items[i].Title+"\n"+items[i].Summary)
			if err != nil {
				atomic.AddInt64(&stats.ClassifyErrors, 1)
				items[i].Sentiment = entity.SentimentNeutral
				return nil
			}
			items[i].Sentiment = label
			return nil
		})
	}
	_ = g.Wait()
}
