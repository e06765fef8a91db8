package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const remotivePayload = `{
  "job-count": 2,
  "jobs": [
    {"id": 101, "title": "Go Engineer", "company_name": "Acme", "job_type": "contract",
     "candidate_required_location": "Europe", "description": "<p>golang and docker</p>",
     "tags": ["go"], "salary": "", "url": "https://remotive.com/101"},
    "garbage",
    {"id": 102, "title": "Data Analyst", "company_name": "Beta"}
  ]
}`

const arbeitnowPayload = `{
  "data": [
    {"slug": "go-acme", "title": "Go Engineer", "company_name": "Acme", "remote": false, "location": "Berlin"},
    {"slug": "chef-kitchen", "title": "Chef", "company_name": "Kitchen", "description": "cooking"}
  ]
}`

func TestRemotiveFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"search":   r.URL.Query().Get("search"),
			"category": r.URL.Query().Get("category"),
			"limit":    r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(remotivePayload))
	}))
	defer srv.Close()

	source := NewRemotive(NewClient(zap.NewNop()), srv.URL)
	found, err := source.Fetch(context.Background(), Query{Text: "go", Category: "devops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["search"] != "go" || gotQuery["category"] != "devops-sysadmin" || gotQuery["limit"] != "50" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(found))
	}
	if found[0].ID != "remotive-101" || found[0].EmploymentType != "contract" || found[0].Location != "Europe" {
		t.Fatalf("unexpected first job: %+v", found[0])
	}
	if found[1].Location != "Worldwide" || found[1].Description != "" {
		t.Fatalf("unexpected defaults: %+v", found[1])
	}
}

func TestArbeitnowFetchFiltersLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(arbeitnowPayload))
	}))
	defer srv.Close()

	source := NewArbeitnow(NewClient(nil), srv.URL)
	found, err := source.Fetch(context.Background(), Query{Text: "GO"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].ID != "arbeitnow-go-acme" {
		t.Fatalf("unexpected jobs: %+v", found)
	}

	all, err := source.Fetch(context.Background(), Query{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(all))
	}
}

func TestJSearchFetchSendsKey(t *testing.T) {
	var key, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-RapidAPI-Key")
		query = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{"data":[{"job_id":"j1","job_title":"SRE","employer_name":"Omega","job_is_remote":true}]}`))
	}))
	defer srv.Close()

	source := NewJSearch(NewClient(nil), srv.URL, "secret")
	found, err := source.Fetch(context.Background(), Query{Text: "Go Developer", Location: "Berlin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "secret" || query != "Go Developer in Berlin" {
		t.Fatalf("unexpected request key=%q query=%q", key, query)
	}
	if len(found) != 1 || found[0].ID != "jsearch-j1" || !found[0].IsRemote {
		t.Fatalf("unexpected jobs: %+v", found)
	}

	if _, err := NewJSearch(NewClient(nil), srv.URL, "").Fetch(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestSourceReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewRemotive(NewClient(nil), srv.URL).Fetch(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error on bad status")
	}
}

type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("cache down")
	}
	payload, ok := m.items[key]
	return payload, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string][]byte{}
	}
	m.items[key] = payload
	return nil
}

func TestClientServesFromCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(arbeitnowPayload))
	}))
	defer srv.Close()

	cache := &memoryCache{}
	source := NewArbeitnow(NewClient(nil, WithCache(cache)), srv.URL)

	for i := 0; i < 3; i++ {
		found, err := source.Fetch(context.Background(), Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(found) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(found))
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", calls)
	}

	cache.failGet = true
	if _, err := source.Fetch(context.Background(), Query{}); err != nil {
		t.Fatalf("cache failures must not fail the fetch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a live fetch when the cache fails, got %d calls", calls)
	}
}

type stubSource struct {
	name string
	jobs []*Job
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, Query) ([]*Job, error) {
	return s.jobs, s.err
}

func TestCollectKeepsSourceOrderAndToleratesFailures(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	sources := []Source{
		&stubSource{name: "first", jobs: []*Job{{ID: "a-1"}, {ID: "a-2"}}},
		&stubSource{name: "broken", err: errors.New("boom")},
		&stubSource{name: "second", jobs: []*Job{{ID: "b-1"}}},
	}

	all := Collect(context.Background(), zap.New(core), sources, Query{})

	ids := all.IDs()
	if len(ids) != 3 || ids[0] != "a-1" || ids[1] != "a-2" || ids[2] != "b-1" {
		t.Fatalf("unexpected order: %v", ids)
	}

	entries := observed.FilterMessage("job source failed").All()
	if len(entries) != 1 || entries[0].ContextMap()["source"] != "broken" {
		t.Fatalf("expected one failure log for the broken source, got %+v", entries)
	}
}
