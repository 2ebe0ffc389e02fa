package repository

import (
	"context"
	"time"

	"nexuspulse/internal/domain/entity"
)

// SignalRepository is the structured event store of pre-ingested items.
// The aggregation core only reads recents; the ingest worker writes.
type SignalRepository interface {
	// ListRecent returns stored signals ordered by published_at DESC.
	// slug may be empty for the cross-entity view. since may be zero to
	// disable the lower time bound. limit caps the number of rows.
	ListRecent(ctx context.Context, slug string, since time.Time, limit int) ([]*entity.Item, error)
	// Insert stores one signal. Inserting an item whose ID already
	// exists is a no-op, not an error (id-unique upsert semantics).
	Insert(ctx context.Context, item *entity.Item) (inserted bool, err error)
	// ExistsByIDBatch reports, for each given id, whether a signal with
	// that id is already stored. Used by the ingest worker to skip
	// duplicates without N+1 queries.
	ExistsByIDBatch(ctx context.Context, ids []string) (map[string]bool, error)
}
