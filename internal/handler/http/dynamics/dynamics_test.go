package dynamics_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/handler/http/dynamics"
	"nexuspulse/internal/handler/http/respond"
	"nexuspulse/internal/infra/scraper"
	"nexuspulse/internal/usecase/aggregate"
)

type stubEntities struct {
	rows map[string]*entity.TrackedEntity
	err  error
}

func (s *stubEntities) Get(_ context.Context, slug string) (*entity.TrackedEntity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[slug], nil
}

func (s *stubEntities) List(_ context.Context) ([]*entity.TrackedEntity, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*entity.TrackedEntity, 0, len(s.rows))
	for _, e := range s.rows {
		out = append(out, e)
	}
	return out, nil
}

type stubScraper struct {
	entries map[string][]scraper.RawEntry
	errs    map[string]error
}

func (s *stubScraper) Scrape(_ context.Context, url string, _ int) ([]scraper.RawEntry, error) {
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return s.entries[url], nil
}

func testService() *aggregate.Service {
	entities := &stubEntities{rows: map[string]*entity.TrackedEntity{
		"elon-musk": {
			Name:         "Elon Musk",
			Slug:         "elon-musk",
			Summary:      "Strong earnings beat",
			PrimaryRSS:   "https://feeds.example.com/musk",
			SecondaryRSS: "https://news.example.com/musk",
		},
	}}
	sc := &stubScraper{
		entries: map[string][]scraper.RawEntry{
			"https://feeds.example.com/musk": {{
				Title:   "Tesla delivers record quarter",
				Link:    "https://example.com/tsla",
				RawDate: "Mon, 01 Jan 2024 10:00:00 +0000",
				Content: "deliveries exceeded analyst expectations",
			}},
		},
		errs: map[string]error{"https://news.example.com/musk": errors.New("HTTP 500")},
	}
	return aggregate.NewService(entities, nil, sc)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEntityHandler_Success(t *testing.T) {
	h := dynamics.EntityHandler{Svc: testService(), Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/dynamics?slug=elon-musk", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp dynamics.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Entity == nil || resp.Entity.Slug != "elon-musk" {
		t.Errorf("Entity = %+v, want elon-musk", resp.Entity)
	}
	if len(resp.Items) == 0 {
		t.Fatal("Items empty")
	}
	// Manual briefing pins the first slot.
	first := resp.Items[0]
	if first.Type != "manual" || first.Source != "NexusPulse Analyst" {
		t.Errorf("first item = %+v, want the manual briefing", first)
	}
	if first.Link != "#" {
		t.Errorf("briefing link = %q, want placeholder", first.Link)
	}
	if _, err := time.Parse(time.RFC3339, first.PubDate); err != nil {
		t.Errorf("pubDate %q is not RFC3339: %v", first.PubDate, err)
	}

	if resp.Metadata.RSSFeedsProcessed != 2 {
		t.Errorf("rssFeedsProcessed = %d, want 2", resp.Metadata.RSSFeedsProcessed)
	}
	if resp.Metadata.RSSFeedsFailed != 1 {
		t.Errorf("rssFeedsFailed = %d, want 1", resp.Metadata.RSSFeedsFailed)
	}
	if resp.Metadata.TotalItems != len(resp.Items) {
		t.Errorf("totalItems = %d, want %d", resp.Metadata.TotalItems, len(resp.Items))
	}
}

func TestEntityHandler_MissingSlug(t *testing.T) {
	h := dynamics.EntityHandler{Svc: testService(), Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/dynamics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != respond.CodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, respond.CodeInvalidRequest)
	}
	if body.Context != "Request Validation" {
		t.Errorf("context = %q", body.Context)
	}
}

func TestEntityHandler_NotFound(t *testing.T) {
	h := dynamics.EntityHandler{Svc: testService(), Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/dynamics?slug=ghost", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != respond.CodeEntityNotFound {
		t.Errorf("code = %q, want %q", body.Code, respond.CodeEntityNotFound)
	}
}

func TestEntityHandler_ConfigError(t *testing.T) {
	svc := aggregate.NewService(&stubEntities{err: errors.New("backend down")}, nil, &stubScraper{})
	h := dynamics.EntityHandler{Svc: svc, Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/dynamics?slug=elon-musk", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Code != respond.CodeConfigFetch {
		t.Errorf("code = %q, want %q", body.Code, respond.CodeConfigFetch)
	}
}

func TestGlobalHandler_Success(t *testing.T) {
	h := dynamics.GlobalHandler{Svc: testService(), Logger: discardLogger()}

	req := httptest.NewRequest(http.MethodGet, "/dynamics/global", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["entity"]; ok {
		t.Error("global response carries an entity key, want omitted")
	}

	var resp dynamics.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Global cards carry the entity name as source, never manual items.
	for _, it := range resp.Items {
		if it.Type == "manual" {
			t.Errorf("manual item in global view: %+v", it)
		}
		if it.Source != "Elon Musk" {
			t.Errorf("source = %q, want entity name", it.Source)
		}
	}
}

func TestRegister_Routes(t *testing.T) {
	mux := http.NewServeMux()
	dynamics.Register(mux, testService(), discardLogger())

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/dynamics?slug=elon-musk")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /dynamics status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/dynamics/global")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /dynamics/global status = %d", resp.StatusCode)
	}
}
