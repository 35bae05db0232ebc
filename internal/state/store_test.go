package state

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/five82/folio/internal/gutendex"
)

func bookList(count int, ids ...int) *gutendex.BookList {
	list := &gutendex.BookList{Count: count}
	for _, id := range ids {
		list.Results = append(list.Results, gutendex.Book{ID: id, Title: fmt.Sprintf("Book %d", id)})
	}
	return list
}

func TestStore_BeginCompleteAndSnapshotClone(t *testing.T) {
	var s Store

	seq := s.Begin(Request{Query: gutendex.Query{Search: "twain", Page: 2}})
	if snap := s.Snapshot(); !snap.Loading || snap.Request.Query.Search != "twain" {
		t.Fatalf("after Begin snapshot = %#v, want loading twain", snap)
	}

	before := time.Now()
	list := bookList(70, 1, 2)
	list.Next = "https://gutendex.com/books/?page=3&search=twain"
	list.Previous = "https://gutendex.com/books/?search=twain"
	if !s.Complete(seq, list, nil) {
		t.Fatalf("Complete returned false for current sequence")
	}

	snap := s.Snapshot()
	if snap.Loading {
		t.Fatalf("Loading = true after Complete")
	}
	if len(snap.Books) != 2 || snap.Books[0].ID != 1 {
		t.Fatalf("Books = %#v, want 2 books", snap.Books)
	}
	if snap.Count != 70 || snap.TotalPages != 3 || snap.Page != 2 {
		t.Fatalf("Count/TotalPages/Page = %d/%d/%d, want 70/3/2", snap.Count, snap.TotalPages, snap.Page)
	}
	if snap.Next != list.Next || snap.Previous != list.Previous {
		t.Fatalf("cursors = %q/%q", snap.Next, snap.Previous)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Books[0].ID = 999
	if s.Snapshot().Books[0].ID != 1 {
		t.Fatalf("Snapshot should clone books")
	}
}

func TestStore_StaleResponsesAreDropped(t *testing.T) {
	var s Store

	first := s.Begin(Request{Query: gutendex.Query{Search: "s"}})
	second := s.Begin(Request{Query: gutendex.Query{Search: "sherlock"}})

	if !s.Complete(second, bookList(1, 1661), nil) {
		t.Fatalf("Complete(second) returned false")
	}
	if s.Complete(first, bookList(500, 1, 2, 3), nil) {
		t.Fatalf("Complete(first) returned true, want stale drop")
	}
	if s.Complete(first, nil, errors.New("late failure")) {
		t.Fatalf("stale error applied")
	}

	snap := s.Snapshot()
	if len(snap.Books) != 1 || snap.Books[0].ID != 1661 {
		t.Fatalf("Books = %#v, want the newest response", snap.Books)
	}
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("stale error leaked: %v / %d", snap.LastError, snap.ConsecutiveFailures)
	}
}

func TestStore_ErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Complete(s.Begin(Request{}), bookList(2, 10, 11), nil)

	before := time.Now()
	origErr := errors.New("boom")
	s.Complete(s.Begin(Request{Query: gutendex.Query{Page: 2}}), nil, origErr)

	snap := s.Snapshot()
	if len(snap.Books) != 2 || snap.Books[0].ID != 10 {
		t.Fatalf("books changed on error: %#v", snap.Books)
	}
	if snap.Page != 1 {
		t.Fatalf("Page = %d, want previous page 1", snap.Page)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should unwrap to original")
	}
}

func TestStore_NotFoundClearsWithoutFailure(t *testing.T) {
	var s Store

	s.Complete(s.Begin(Request{}), bookList(2, 10, 11), nil)
	s.Complete(s.Begin(Request{Query: gutendex.Query{Page: 9}}), nil, fmt.Errorf("%w: /books/", gutendex.ErrNotFound))

	snap := s.Snapshot()
	if len(snap.Books) != 0 || !snap.Empty() {
		t.Fatalf("Books = %#v, want none after not found", snap.Books)
	}
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if !errors.Is(snap.LastError, gutendex.ErrNotFound) {
		t.Fatalf("LastError = %v, want ErrNotFound", snap.LastError)
	}
}

func TestStore_NotFoundResetsFailures(t *testing.T) {
	var s Store

	s.Complete(s.Begin(Request{}), nil, errors.New("fail 1"))
	s.Complete(s.Begin(Request{}), nil, errors.New("fail 2"))
	if !s.Snapshot().IsOffline() {
		t.Fatalf("expected offline after two failures")
	}

	s.Complete(s.Begin(Request{Query: gutendex.Query{Page: 40}}), nil, gutendex.ErrNotFound)
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("not found should reset failures; got %d", snap.ConsecutiveFailures)
	}
}

func TestStore_SwitchingSourceDropsOtherListing(t *testing.T) {
	var s Store

	catalog := bookList(100, 1, 2, 3)
	catalog.Next = "https://gutendex.com/books/?page=2"
	s.Complete(s.Begin(Request{Source: SourceCatalog}), catalog, nil)

	seq := s.Begin(Request{Source: SourceWishlist, Query: gutendex.Query{IDs: []int{500}}})
	snap := s.Snapshot()
	if snap.BooksSource != SourceWishlist {
		t.Fatalf("BooksSource = %v, want wishlist", snap.BooksSource)
	}
	if len(snap.Books) != 0 || snap.Next != "" || snap.Count != 0 {
		t.Fatalf("catalog data leaked into wishlist load: books=%d next=%q count=%d", len(snap.Books), snap.Next, snap.Count)
	}

	s.Complete(seq, nil, errors.New("boom"))
	snap = s.Snapshot()
	if len(snap.Books) != 0 || snap.BooksSource != SourceWishlist {
		t.Fatalf("failed wishlist load shows %d books from %v", len(snap.Books), snap.BooksSource)
	}

	s.Complete(s.Begin(Request{Source: SourceWishlist, Query: gutendex.Query{IDs: []int{500}}}), bookList(1, 500), nil)
	s.Begin(Request{Source: SourceWishlist, Query: gutendex.Query{IDs: []int{500}, Page: 1}})
	if snap := s.Snapshot(); len(snap.Books) != 1 || snap.Books[0].ID != 500 {
		t.Fatalf("same-source reload should keep books while loading, got %#v", snap.Books)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("initial snapshot offline")
	}

	s.Complete(s.Begin(Request{}), nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Complete(s.Begin(Request{}), nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Complete(s.Begin(Request{}), bookList(0), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures; got %d", snap.ConsecutiveFailures)
	}
	if !snap.Empty() || snap.TotalPages != 1 {
		t.Fatalf("empty result: Empty=%v TotalPages=%d", snap.Empty(), snap.TotalPages)
	}
}

func TestRequest_PageNumber(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want int
	}{
		{"default", Request{}, 1},
		{"query page", Request{Query: gutendex.Query{Page: 4}}, 4},
		{"cursor wins", Request{Query: gutendex.Query{Page: 4}, Cursor: "https://gutendex.com/books/?page=7"}, 7},
		{"cursor to first page", Request{Cursor: "https://gutendex.com/books/?topic=x"}, 1},
	}
	for _, tt := range tests {
		if got := tt.req.PageNumber(); got != tt.want {
			t.Fatalf("%s: PageNumber = %d, want %d", tt.name, got, tt.want)
		}
	}
}
