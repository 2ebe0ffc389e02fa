package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/entities.sql
var seedEntitiesSQL string

// MigrateUp creates the configuration and signal tables. Statements are
// idempotent so the API and the worker can both run them at startup.
func MigrateUp(pool *sql.DB) error {
	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS entities (
    id            SERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    slug          TEXT NOT NULL UNIQUE,
    type          TEXT,
    summary       TEXT,
    sentiment     TEXT,
    tags          TEXT[],
    stock_symbol  TEXT,
    main_rss      TEXT,
    secondary_rss TEXT,
    active        BOOLEAN DEFAULT TRUE
)`); err != nil {
		return err
	}

	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS signals (
    id           TEXT PRIMARY KEY,
    entity_slug  TEXT NOT NULL,
    title        TEXT NOT NULL,
    url          TEXT,
    summary      TEXT,
    source       TEXT,
    sentiment    TEXT,
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// Timeline reads sort newest-first across every query.
		`CREATE INDEX IF NOT EXISTS idx_signals_published_at ON signals(published_at DESC)`,
		// Entity-scoped timeline reads.
		`CREATE INDEX IF NOT EXISTS idx_signals_entity_slug ON signals(entity_slug)`,
		// Active entity filtering for the worker and the global view.
		`CREATE INDEX IF NOT EXISTS idx_entities_active ON entities(active) WHERE active = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// SeedEntities inserts the default tracked entities. Existing slugs are
// left untouched, so reseeding a live database is safe.
func SeedEntities(pool *sql.DB) error {
	_, err := pool.Exec(seedEntitiesSQL)
	return err
}
