package repository

import (
	"context"

	"nexuspulse/internal/domain/entity"
)

// EntityRepository is the read-only lookup for tracked-entity
// configuration. The aggregation core never writes through it.
type EntityRepository interface {
	// Get returns the entity for the given slug.
	// Returns (nil, nil) if no entity matches.
	Get(ctx context.Context, slug string) (*entity.TrackedEntity, error)
	// List returns all configured entities.
	List(ctx context.Context) ([]*entity.TrackedEntity, error)
}
