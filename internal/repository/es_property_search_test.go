package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/weiawesome/wes-estate/internal/domain"
)

// fakeES records requests and answers with canned bodies.
type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
	queries  []url.Values
	status   int
	reply    string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.queries = append(f.queries, r.URL.Query())
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	io.WriteString(w, reply)
}

func (f *fakeES) respond(status int, reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.reply = status, reply
}

func (f *fakeES) seen() (requests, bodies []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...), append([]string(nil), f.bodies...)
}

func newFakeES(t *testing.T) (*ESPropertySearch, *fakeES) {
	t.Helper()
	fake := &fakeES{reply: `{}`}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewESPropertySearch(client, "properties"), fake
}

func TestESTextSearch(t *testing.T) {
	s, fake := newFakeES(t)
	fake.respond(http.StatusOK, `{"hits":{"total":{"value":7},"hits":[
		{"_source":{"id":"1","title":"Lake villa","amenities":["pool"],"tags":[]}},
		{"_source":"broken"}
	]}}`)

	items, total, err := s.TextSearch(context.Background(), "villa", domain.PageRequest{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("TextSearch() error = %v", err)
	}
	if total != 7 || len(items) != 1 || items[0].Title != "Lake villa" {
		t.Fatalf("TextSearch() = %+v, %d", items, total)
	}

	requests, bodies := fake.seen()
	if requests[0] != "POST /properties/_search" {
		t.Errorf("request = %s", requests[0])
	}
	var q map[string]interface{}
	if err := json.Unmarshal([]byte(bodies[0]), &q); err != nil {
		t.Fatalf("query body: %v", err)
	}
	if q["from"].(float64) != 5 || q["size"].(float64) != 5 {
		t.Errorf("from/size = %v/%v", q["from"], q["size"])
	}
	if !strings.Contains(bodies[0], `"multi_match"`) {
		t.Errorf("query lacks multi_match: %s", bodies[0])
	}
}

func TestESTextSearchError(t *testing.T) {
	s, fake := newFakeES(t)
	fake.respond(http.StatusBadRequest, `{"error":{"type":"parsing_exception"}}`)

	if _, _, err := s.TextSearch(context.Background(), "x", domain.PageRequest{Page: 1, Limit: 10}); err == nil {
		t.Fatal("expected error on 400")
	}
}

func TestESIndexAndDelete(t *testing.T) {
	s, fake := newFakeES(t)
	ctx := context.Background()

	if err := s.IndexProperty(ctx, &domain.Property{ID: "p1", Title: "t"}); err != nil {
		t.Fatalf("IndexProperty() error = %v", err)
	}
	fake.respond(http.StatusNotFound, `{"result":"not_found"}`)
	if err := s.DeleteProperty(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProperty() on missing doc error = %v", err)
	}
	requests, _ := fake.seen()
	if requests[0] != "PUT /properties/_doc/p1" || requests[1] != "DELETE /properties/_doc/p1" {
		t.Errorf("requests = %v", requests)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for i, q := range fake.queries {
		if got := q.Get("refresh"); got != "wait_for" {
			t.Errorf("request %d refresh = %q, want wait_for", i, got)
		}
	}
}

func TestESReindex(t *testing.T) {
	r := newRepos(t)
	owner := r.user(t, "owner@example.com")
	for i := 0; i < 3; i++ {
		r.property(t, owner.ID, nil)
	}

	s, fake := newFakeES(t)
	fake.respond(http.StatusOK, `{"errors":false,"items":[]}`)

	n, err := s.Reindex(context.Background(), r.props, 2)
	if err != nil || n != 3 {
		t.Fatalf("Reindex() = %d, %v", n, err)
	}
	requests, bodies := fake.seen()
	if len(requests) != 2 || requests[0] != "POST /_bulk" {
		t.Fatalf("requests = %v", requests)
	}
	if lines := strings.Count(bodies[0], "\n"); lines != 4 {
		t.Errorf("first bulk body has %d lines, want 4", lines)
	}
}
