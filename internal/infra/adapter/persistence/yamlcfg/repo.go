// Package yamlcfg implements the entity configuration repository over a
// YAML file for development and degraded operation without a database.
// The file format accepts the historical feed-URL field aliases, which
// are resolved into the canonical primary/secondary pair on load.
package yamlcfg

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/repository"
)

// entityDoc mirrors one YAML entity block, legacy aliases included.
type entityDoc struct {
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Type        string   `yaml:"type"`
	Summary     string   `yaml:"summary"`
	Sentiment   string   `yaml:"sentiment"`
	Tags        []string `yaml:"tags"`
	StockSymbol string   `yaml:"stockSymbol"`

	MainRSS string `yaml:"mainrss"`
	RSS     string `yaml:"rss"`
	Feed    string `yaml:"feed"`
	URL     string `yaml:"url"`

	GoogleNewsRSS string `yaml:"googlenewsrss"`
	GoogleRSS     string `yaml:"googlerss"`
	SecondaryRSS  string `yaml:"secondaryrss"`
}

type configDoc struct {
	Entities []entityDoc `yaml:"entities"`
}

// Repo serves entity configuration from a YAML file loaded once at
// startup. The file is never re-read; restart to pick up edits.
type Repo struct {
	bySlug  map[string]*entity.TrackedEntity
	ordered []*entity.TrackedEntity
}

// NewRepo loads the configuration file at path.
func NewRepo(path string) (repository.EntityRepository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity config: %w", err)
	}

	var doc configDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse entity config: %w", err)
	}

	repo := &Repo{bySlug: make(map[string]*entity.TrackedEntity, len(doc.Entities))}
	for _, d := range doc.Entities {
		if d.Slug == "" {
			return nil, fmt.Errorf("entity config: entry %q has no slug", d.Name)
		}
		ent := d.toEntity()
		repo.bySlug[ent.Slug] = ent
		repo.ordered = append(repo.ordered, ent)
	}
	return repo, nil
}

// toEntity collapses the alias spread into the canonical feed pair.
func (d entityDoc) toEntity() *entity.TrackedEntity {
	return &entity.TrackedEntity{
		Name:         d.Name,
		Slug:         d.Slug,
		Type:         d.Type,
		Summary:      d.Summary,
		Sentiment:    entity.Sentiment(d.Sentiment),
		Tags:         d.Tags,
		StockSymbol:  d.StockSymbol,
		PrimaryRSS:   entity.ResolveFeedAlias(d.MainRSS, d.RSS, d.Feed, d.URL),
		SecondaryRSS: entity.ResolveFeedAlias(d.GoogleNewsRSS, d.GoogleRSS, d.SecondaryRSS),
	}
}

// Get returns the entity for a slug, or (nil, nil) when no entry
// matches.
func (r *Repo) Get(_ context.Context, slug string) (*entity.TrackedEntity, error) {
	return r.bySlug[slug], nil
}

// List returns all configured entities in file order.
func (r *Repo) List(_ context.Context) ([]*entity.TrackedEntity, error) {
	return r.ordered, nil
}
