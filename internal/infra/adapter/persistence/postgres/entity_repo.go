// Package postgres implements the repository interfaces over the
// Postgres entity configuration and signal tables.
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

// Querier is the subset of *sql.DB the repositories use. It is also
// satisfied by the database circuit breaker wrapper, so callers choose
// whether queries run protected.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type EntityRepo struct{ db Querier }

func NewEntityRepo(db Querier) repository.EntityRepository {
	return &EntityRepo{db: db}
}

const entityColumns = `name, slug, type, summary, sentiment, tags, stock_symbol, main_rss, secondary_rss`

// scanEntity maps one configuration row onto the canonical struct.
// Nullable text columns collapse to empty strings; the feed pair is
// already canonical in this schema, legacy alias spreading only exists
// in file-backed configuration.
func scanEntity(scan func(dest ...interface{}) error) (*entity.TrackedEntity, error) {
	var (
		ent         entity.TrackedEntity
		typ         sql.NullString
		summary     sql.NullString
		sentiment   sql.NullString
		tags        []string
		stockSymbol sql.NullString
		mainRSS     sql.NullString
		secondRSS   sql.NullString
	)
	if err := scan(
		&ent.Name, &ent.Slug, &typ, &summary, &sentiment,
		pq.Array(&tags), &stockSymbol, &mainRSS, &secondRSS,
	); err != nil {
		return nil, err
	}

	ent.Type = typ.String
	ent.Summary = summary.String
	ent.Sentiment = entity.Sentiment(sentiment.String)
	ent.Tags = tags
	ent.StockSymbol = stockSymbol.String
	ent.PrimaryRSS = entity.ResolveFeedAlias(mainRSS.String)
	ent.SecondaryRSS = entity.ResolveFeedAlias(secondRSS.String)
	return &ent, nil
}

// Get returns the entity for a slug, or (nil, nil) when no active row
// matches.
func (repo *EntityRepo) Get(ctx context.Context, slug string) (*entity.TrackedEntity, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("entity_get", time.Since(start)) }()

	query := `
SELECT ` + entityColumns + `
FROM entities
WHERE slug = $1 AND active = TRUE
LIMIT 1`
	row := repo.db.QueryRowContext(ctx, query, slug)
	ent, err := scanEntity(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return ent, nil
}

// List returns all active entities in configuration order.
func (repo *EntityRepo) List(ctx context.Context) ([]*entity.TrackedEntity, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("entity_list", time.Since(start)) }()

	query := `
SELECT ` + entityColumns + `
FROM entities
WHERE active = TRUE
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ents := make([]*entity.TrackedEntity, 0, 50)
	for rows.Next() {
		ent, err := scanEntity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		ents = append(ents, ent)
	}
	return ents, rows.Err()
}
