package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/observability/metrics"
	"nexuspulse/internal/repository"
)

type SignalRepo struct{ db Querier }

func NewSignalRepo(db Querier) repository.SignalRepository {
	return &SignalRepo{db: db}
}

// ListRecent returns stored signals newest-first. An empty slug spans
// all entities; a zero since applies no lower bound.
func (repo *SignalRepo) ListRecent(ctx context.Context, slug string, since time.Time, limit int) ([]*entity.Item, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("signal_list_recent", time.Since(start)) }()

	if since.IsZero() {
		since = time.Unix(0, 0).UTC()
	}

	const query = `
SELECT id, entity_slug, title, url, summary, source, sentiment, published_at
FROM signals
WHERE ($1 = '' OR entity_slug = $1) AND published_at >= $2
ORDER BY published_at DESC
LIMIT $3`
	rows, err := repo.db.QueryContext(ctx, query, slug, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.Item, 0, limit)
	for rows.Next() {
		item, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanSignal(rows *sql.Rows) (*entity.Item, error) {
	var (
		item        entity.Item
		url         sql.NullString
		summary     sql.NullString
		source      sql.NullString
		sentiment   sql.NullString
		publishedAt sql.NullTime
	)
	if err := rows.Scan(
		&item.ID, &item.EntitySlug, &item.Title, &url, &summary,
		&source, &sentiment, &publishedAt,
	); err != nil {
		return nil, err
	}

	item.Kind = entity.KindSignal
	item.Link = url.String
	if item.Link == "" {
		item.Link = entity.NoLink
	}
	item.Summary = summary.String
	item.Source = source.String
	item.Sentiment = entity.Sentiment(sentiment.String)
	if item.Sentiment == "" {
		item.Sentiment = entity.SentimentNeutral
	}
	item.PublishedAt = publishedAt.Time
	return &item, nil
}

// Insert stores one signal. It reports false without error when a
// signal with the same id already exists.
func (repo *SignalRepo) Insert(ctx context.Context, item *entity.Item) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("signal_insert", time.Since(start)) }()

	const query = `
INSERT INTO signals (id, entity_slug, title, url, summary, source, sentiment, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query,
		item.ID, item.EntitySlug, item.Title, item.Link, item.Summary,
		item.Source, string(item.Sentiment), item.PublishedAt,
	)
	if err != nil {
		return false, fmt.Errorf("Insert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Insert: RowsAffected: %w", err)
	}
	return affected == 1, nil
}

// ExistsByIDBatch checks many ids in one round trip so ingest cycles
// avoid per-item existence queries.
func (repo *SignalRepo) ExistsByIDBatch(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return make(map[string]bool), nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("signal_exists_batch", time.Since(start)) }()

	const query = `SELECT id FROM signals WHERE id = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("ExistsByIDBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ExistsByIDBatch: Scan: %w", err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByIDBatch: rows.Err: %w", err)
	}

	return result, nil
}
