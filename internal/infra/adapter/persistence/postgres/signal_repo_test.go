package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/infra/adapter/persistence/postgres"
)

func TestSignalRepo_ListRecent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	published := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "entity_slug", "title", "url", "summary", "source", "sentiment", "published_at",
	}).AddRow(
		"https://example.com/a", "acme", "Acme beats estimates",
		"https://example.com/a", "strong quarter", "Primary Feed", "positive", published,
	)

	mock.ExpectQuery(`FROM signals`).
		WithArgs("acme", sqlmock.AnyArg(), 20).
		WillReturnRows(rows)

	repo := postgres.NewSignalRepo(db)
	got, err := repo.ListRecent(context.Background(), "acme", time.Time{}, 20)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListRecent returned %d items, want 1", len(got))
	}
	item := got[0]
	if item.Kind != entity.KindSignal {
		t.Errorf("Kind = %q, want signal", item.Kind)
	}
	if item.Sentiment != entity.SentimentPositive {
		t.Errorf("Sentiment = %q, want positive", item.Sentiment)
	}
	if !item.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", item.PublishedAt, published)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSignalRepo_ListRecent_NullColumnsDegrade(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{
		"id", "entity_slug", "title", "url", "summary", "source", "sentiment", "published_at",
	}).AddRow(
		"gen-1", "acme", "Untitled stream event", nil, nil, nil, nil, nil,
	)

	mock.ExpectQuery(`FROM signals`).WillReturnRows(rows)

	repo := postgres.NewSignalRepo(db)
	got, err := repo.ListRecent(context.Background(), "", time.Time{}, 20)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	item := got[0]
	if item.Link != entity.NoLink {
		t.Errorf("Link = %q, want placeholder for null url", item.Link)
	}
	if item.Sentiment != entity.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral default", item.Sentiment)
	}
}

func TestSignalRepo_Insert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	item := &entity.Item{
		ID:          "https://example.com/a",
		EntitySlug:  "acme",
		Title:       "Acme beats estimates",
		Link:        "https://example.com/a",
		Summary:     "strong quarter",
		Source:      "Primary Feed",
		Sentiment:   entity.SentimentPositive,
		PublishedAt: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO signals`)).
		WithArgs(item.ID, item.EntitySlug, item.Title, item.Link, item.Summary,
			item.Source, "positive", item.PublishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSignalRepo(db)
	inserted, err := repo.Insert(context.Background(), item)
	if err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if !inserted {
		t.Error("Insert = false, want true for a fresh row")
	}
}

func TestSignalRepo_Insert_Conflict(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO signals`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSignalRepo(db)
	inserted, err := repo.Insert(context.Background(), &entity.Item{ID: "dup"})
	if err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if inserted {
		t.Error("Insert = true, want false on id conflict")
	}
}

func TestSignalRepo_ExistsByIDBatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM signals WHERE id = ANY($1)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("c"))

	repo := postgres.NewSignalRepo(db)
	got, err := repo.ExistsByIDBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("ExistsByIDBatch err=%v", err)
	}
	if !got["a"] || got["b"] || !got["c"] {
		t.Errorf("ExistsByIDBatch = %v, want a and c known, b unknown", got)
	}
}

func TestSignalRepo_ExistsByIDBatch_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	repo := postgres.NewSignalRepo(db)
	got, err := repo.ExistsByIDBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExistsByIDBatch err=%v", err)
	}
	if len(got) != 0 {
		t.Errorf("ExistsByIDBatch = %v, want empty map without a query", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
