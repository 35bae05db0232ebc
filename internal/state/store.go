package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/paging"
)

// Source selects which listing a Request pulls from.
type Source int

const (
	// SourceCatalog browses /books with search and topic filters.
	SourceCatalog Source = iota
	// SourceWishlist lists the saved book ids.
	SourceWishlist
)

func (s Source) String() string {
	if s == SourceWishlist {
		return "wishlist"
	}
	return "catalog"
}

// Request describes one listing fetch.
type Request struct {
	Source Source
	Query  gutendex.Query
	// Cursor, when set, is a next/previous URL followed instead of Query.
	Cursor string
}

// PageNumber returns the 1-based page the request targets.
func (r Request) PageNumber() int {
	if r.Cursor != "" {
		if p := gutendex.PageFromCursor(r.Cursor); p > 0 {
			return p
		}
	}
	if r.Query.Page < 1 {
		return 1
	}
	return r.Query.Page
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Request Request
	// BooksSource is the listing that produced Books, Count, Page,
	// TotalPages, Next and Previous. It can lag Request.Source while a
	// request for the other listing is loading.
	BooksSource         Source
	Books               []gutendex.Book
	Count               int
	Page                int
	TotalPages          int
	Next                string
	Previous            string
	LastUpdated         time.Time
	LastError           error
	Loading             bool
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the API has been unreachable for multiple fetches.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Empty reports whether a finished fetch produced no books.
func (s Snapshot) Empty() bool {
	return !s.Loading && len(s.Books) == 0
}

// Store coordinates concurrent updates to the snapshot. Each Begin hands out
// a sequence number; only the newest one may complete, so a slow response
// for an abandoned search cannot overwrite a newer one.
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	snapshot Snapshot
}

// Begin records req as the newest request and marks the store loading.
// Switching to the other listing drops the previous listing's books.
func (s *Store) Begin(req Request) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if req.Source != s.snapshot.BooksSource {
		s.snapshot.BooksSource = req.Source
		s.snapshot.Books = nil
		s.snapshot.Count = 0
		s.snapshot.Page = 0
		s.snapshot.TotalPages = 0
		s.snapshot.Next = ""
		s.snapshot.Previous = ""
		s.snapshot.LastError = nil
	}
	s.snapshot.Request = req
	s.snapshot.Loading = true
	return s.seq
}

// Complete applies the outcome of request seq. It returns false when seq is
// stale. When err is non-nil the previous books are kept but the error is
// recorded for visibility; a not-found listing clears the books and, since
// the API answered, resets the failure count.
func (s *Store) Complete(seq uint64, list *gutendex.BookList, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.snapshot.Loading = false
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		if errors.Is(err, gutendex.ErrNotFound) {
			s.snapshot.Books = nil
			s.snapshot.Count = 0
			s.snapshot.Next = ""
			s.snapshot.Previous = ""
			s.snapshot.Page = s.snapshot.Request.PageNumber()
			s.snapshot.TotalPages = 1
			s.snapshot.ConsecutiveFailures = 0
			return true
		}
		s.snapshot.ConsecutiveFailures++
		return true
	}

	if list == nil {
		list = &gutendex.BookList{}
	}
	s.snapshot.Books = cloneBooks(list.Results)
	s.snapshot.Count = list.Count
	s.snapshot.Next = list.Next
	s.snapshot.Previous = list.Previous
	s.snapshot.TotalPages = list.TotalPages()
	s.snapshot.Page = paging.Clamp(s.snapshot.Request.PageNumber(), s.snapshot.TotalPages)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Books = cloneBooks(s.snapshot.Books)
	snap.Request.Query.IDs = cloneInts(s.snapshot.Request.Query.IDs)
	snap.Request.Query.Languages = cloneStrings(s.snapshot.Request.Query.Languages)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBooks(books []gutendex.Book) []gutendex.Book {
	if len(books) == 0 {
		return nil
	}
	dup := make([]gutendex.Book, len(books))
	copy(dup, books)
	return dup
}

func cloneInts(v []int) []int {
	if v == nil {
		return nil
	}
	return append([]int(nil), v...)
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}
