package gutendex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultAPIURL {
		t.Fatalf("base = %q, want %q", u.String(), DefaultAPIURL)
	}

	u, err = parseBaseURL("example.com/mirror/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "example.com" || u.Path != "/mirror" {
		t.Fatalf("base = %q, want https://example.com/mirror", u.String())
	}
	if u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL(http://) returned nil error, want missing host")
	}
}

func TestClient_ListBooksEncodesQuery(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery url.Values
	var gotUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(BookList{
			Count: 40,
			Next:  "http://" + r.Host + "/books/?page=3&search=holmes",
			Results: []Book{{
				ID:      1661,
				Title:   "The Adventures of Sherlock Holmes",
				Authors: []Person{{Name: "Doyle, Arthur Conan"}},
			}},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	list, err := c.ListBooks(ctx, Query{
		Search:    " holmes ",
		Topic:     "detective",
		Page:      2,
		Languages: []string{"EN", " fr"},
		Sort:      SortAscending,
	})
	if err != nil {
		t.Fatalf("ListBooks returned error: %v", err)
	}
	if gotPath != "/books/" {
		t.Fatalf("path = %q, want /books/", gotPath)
	}
	if gotQuery.Get("search") != "holmes" ||
		gotQuery.Get("topic") != "detective" ||
		gotQuery.Get("page") != "2" ||
		gotQuery.Get("languages") != "en,fr" ||
		gotQuery.Get("sort") != "ascending" {
		t.Fatalf("query = %v, want params encoded", gotQuery)
	}
	if !strings.HasPrefix(gotUserAgent, "folio/") {
		t.Fatalf("User-Agent = %q, want folio/*", gotUserAgent)
	}
	if list.Count != 40 || len(list.Results) != 1 || list.Results[0].ID != 1661 {
		t.Fatalf("ListBooks payload = %#v", list)
	}
	if list.TotalPages() != 2 {
		t.Fatalf("TotalPages = %d, want 2", list.TotalPages())
	}
	if PageFromCursor(list.Next) != 3 {
		t.Fatalf("PageFromCursor(next) = %d, want 3", PageFromCursor(list.Next))
	}
}

func TestClient_BooksByIDs(t *testing.T) {
	t.Parallel()

	var gotIDs string
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotIDs = r.URL.Query().Get("ids")
		_ = json.NewEncoder(w).Encode(BookList{Count: 2, Results: []Book{{ID: 84}, {ID: 1342}}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	empty, err := c.BooksByIDs(context.Background(), nil, 1)
	if err != nil || empty == nil || len(empty.Results) != 0 {
		t.Fatalf("BooksByIDs(nil) = %#v, %v; want empty list", empty, err)
	}
	if hits.Load() != 0 {
		t.Fatalf("BooksByIDs(nil) hit the API %d times, want 0", hits.Load())
	}

	list, err := c.BooksByIDs(context.Background(), []int{84, 0, 1342}, 1)
	if err != nil {
		t.Fatalf("BooksByIDs returned error: %v", err)
	}
	if gotIDs != "84,1342" {
		t.Fatalf("ids = %q, want 84,1342", gotIDs)
	}
	if len(list.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(list.Results))
	}
}

func TestClient_FetchBookAndNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/84/":
			_ = json.NewEncoder(w).Encode(Book{ID: 84, Title: "Frankenstein", DownloadCount: 100})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	book, err := c.FetchBook(context.Background(), 84)
	if err != nil {
		t.Fatalf("FetchBook returned error: %v", err)
	}
	if book.Title != "Frankenstein" || book.DownloadCount != 100 {
		t.Fatalf("FetchBook = %#v", book)
	}

	_, err = c.FetchBook(context.Background(), 99999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FetchBook(99999) error = %v, want ErrNotFound", err)
	}

	if _, err := c.FetchBook(context.Background(), 0); err == nil {
		t.Fatalf("FetchBook(0) returned nil error, want error")
	}
}

func TestClient_FetchPageFollowsCursor(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(BookList{Count: 1})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.FetchPage(context.Background(), server.URL+"/books/?page=2&topic=horror"); err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if gotQuery != "page=2&topic=horror" {
		t.Fatalf("query = %q, want page=2&topic=horror", gotQuery)
	}

	if _, err := c.FetchPage(context.Background(), "/books/?page=3"); err != nil {
		t.Fatalf("FetchPage(host-less) returned error: %v", err)
	}
	if gotQuery != "page=3" {
		t.Fatalf("query = %q, want page=3", gotQuery)
	}

	if _, err := c.FetchPage(context.Background(), ""); err == nil {
		t.Fatalf("FetchPage(\"\") returned nil error, want error")
	}
	if _, err := c.FetchPage(context.Background(), server.URL+"/admin/"); err == nil {
		t.Fatalf("FetchPage(admin) returned nil error, want error")
	}
}

func TestClient_FetchPageRejectsForeignHost(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(BookList{Count: 1})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchPage(context.Background(), "https://evil.example/books/?page=2")
	if !errors.Is(err, ErrForeignCursor) {
		t.Fatalf("FetchPage(foreign) error = %v, want host rejection", err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("server saw %d requests, want 0", n)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/1/":
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchBook(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchBook error = %v, want decode response error", err)
	}

	_, err = c.ListBooks(context.Background(), Query{})
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("ListBooks error = %v, want status 500 error", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("ListBooks error = %v, want *StatusError 500", err)
	}
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	for i := 0; i < breakerTripAfter; i++ {
		if _, err := c.ListBooks(context.Background(), Query{}); err == nil {
			t.Fatalf("attempt %d returned nil error", i)
		}
	}
	if c.Available() {
		t.Fatalf("Available() = true after %d failures, want false", breakerTripAfter)
	}

	_, err = c.ListBooks(context.Background(), Query{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error with open breaker = %v, want ErrUnavailable", err)
	}
	if got := hits.Load(); got != breakerTripAfter {
		t.Fatalf("server hits = %d, want %d (open breaker must not call the API)", got, breakerTripAfter)
	}
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	for i := 0; i < breakerTripAfter+2; i++ {
		_, _ = c.FetchBook(context.Background(), 7)
	}
	if !c.Available() {
		t.Fatalf("Available() = false, want 404s to leave breaker closed")
	}
}

func TestClient_CachesSuccessfulResponses(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(BookList{Count: 1, Results: []Book{{ID: 11}}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithCacheTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		list, err := c.ListBooks(context.Background(), Query{Topic: "fantasy"})
		if err != nil {
			t.Fatalf("ListBooks returned error: %v", err)
		}
		if len(list.Results) != 1 || list.Results[0].ID != 11 {
			t.Fatalf("ListBooks = %#v", list)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("server hits = %d, want 1 with caching", got)
	}

	if _, err := c.ListBooks(context.Background(), Query{Topic: "horror"}); err != nil {
		t.Fatalf("ListBooks returned error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hits = %d, want 2 for a different query", got)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(BookList{})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRateLimit(0.01, 1))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	// The first request uses the single burst token.
	if _, err := c.ListBooks(context.Background(), Query{}); err != nil {
		t.Fatalf("first ListBooks returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListBooks(ctx, Query{Page: 2})
	if err == nil || !strings.Contains(err.Error(), "rate limiter wait") {
		t.Fatalf("second ListBooks error = %v, want rate limiter wait error", err)
	}
}
