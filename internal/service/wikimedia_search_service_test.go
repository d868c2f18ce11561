package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestWikimediaService(handler http.Handler) (*WikimediaSearchService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := &WikimediaSearchService{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    server.URL,
	}
	return svc, server
}

const wikimediaFixture = `{
	"query": {
		"pages": {
			"123": {
				"title": "File:Eiffel Tower at night.jpg",
				"imageinfo": [{
					"url": "https://upload.wikimedia.org/eiffel.jpg",
					"thumburl": "https://upload.wikimedia.org/thumb/eiffel.jpg",
					"width": 1200,
					"height": 900
				}]
			},
			"456": {
				"title": "File:Eiffel Tower sketch.png"
			}
		}
	}
}`

func TestWikimediaSearchNormalizesResults(t *testing.T) {
	var gotQuery string
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("gsrsearch")
		w.Write([]byte(wikimediaFixture))
	}))
	defer server.Close()

	results, err := svc.Search(context.Background(), "Eiffel Tower", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "Eiffel Tower filetype:bitmap" {
		t.Fatalf("unexpected gsrsearch: %q", gotQuery)
	}
	if len(results) != 1 {
		t.Fatalf("pages without imageinfo must be skipped, got %d results", len(results))
	}

	got := results[0]
	if got.Title != "Eiffel Tower at night.jpg" {
		t.Errorf("File: prefix should be stripped, got %q", got.Title)
	}
	if got.URL != "https://upload.wikimedia.org/eiffel.jpg" {
		t.Errorf("unexpected URL %q", got.URL)
	}
	if got.ThumbURL != "https://upload.wikimedia.org/thumb/eiffel.jpg" {
		t.Errorf("unexpected ThumbURL %q", got.ThumbURL)
	}
	if got.Width != 1200 || got.Height != 900 {
		t.Errorf("unexpected dimensions %dx%d", got.Width, got.Height)
	}
}

func TestWikimediaSmartSearchStopsAtFirstHit(t *testing.T) {
	calls := 0
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(wikimediaFixture))
	}))
	defer server.Close()

	results, err := svc.SmartSearch(context.Background(), "Eiffel Tower", 3)
	if err != nil {
		t.Fatalf("SmartSearch: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if calls != 1 {
		t.Fatalf("bare query hit should stop the fall-through, got %d requests", calls)
	}
}

func TestWikimediaSmartSearchFallsThroughQualifiers(t *testing.T) {
	var queries []string
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("gsrsearch"))
		w.Write([]byte(`{"query": {"pages": {}}}`))
	}))
	defer server.Close()

	results, err := svc.SmartSearch(context.Background(), "Obscure Thing", 3)
	if err != nil {
		t.Fatalf("SmartSearch: %v", err)
	}
	if results != nil {
		t.Fatalf("expected no results, got %v", results)
	}
	if len(queries) != 6 {
		t.Fatalf("expected bare query plus 5 qualifiers, got %d requests", len(queries))
	}
	if queries[1] != "Obscure Thing logo filetype:bitmap" {
		t.Errorf("unexpected first qualifier query: %q", queries[1])
	}
	if queries[5] != "Obscure Thing photo filetype:bitmap" {
		t.Errorf("unexpected last qualifier query: %q", queries[5])
	}
}

func TestWikimediaSearchSwallowsServerErrors(t *testing.T) {
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	results, err := svc.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("API failures must not surface as errors: %v", err)
	}
	if results != nil {
		t.Fatalf("expected empty results on 500, got %v", results)
	}
}

func TestWikimediaSearchSwallowsTransportErrors(t *testing.T) {
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	results, err := svc.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("transport failures must not surface as errors: %v", err)
	}
	if results != nil {
		t.Fatalf("expected empty results, got %v", results)
	}
}

func TestWikimediaSearchSwallowsBadJSON(t *testing.T) {
	svc, server := newTestWikimediaService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	results, err := svc.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("decode failures must not surface as errors: %v", err)
	}
	if results != nil {
		t.Fatalf("expected empty results, got %v", results)
	}
}
