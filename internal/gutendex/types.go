package gutendex

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/five82/folio/internal/paging"
)

// PageSize is the fixed number of results Gutendex returns per page.
const PageSize = 32

const (
	// DefaultCover is shown when a book has no image/jpeg format.
	DefaultCover = "default-cover.jpg"

	unknownAuthor = "Unknown Author"
	unknownGenre  = "Unknown Genre"
	coverMIME     = "image/jpeg"
)

// BookList mirrors the paginated payload returned by /books.
type BookList struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []Book `json:"results"`
}

// TotalPages returns the page count for the whole result set.
func (l BookList) TotalPages() int {
	return paging.TotalPages(l.Count, PageSize)
}

// Book describes a single Project Gutenberg title.
type Book struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []Person          `json:"authors"`
	Translators   []Person          `json:"translators"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Copyright     *bool             `json:"copyright"`
	MediaType     string            `json:"media_type"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

// Person is an author or translator.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// Lifespan formats birth and death years, e.g. "1775–1817" or "?–1817".
func (p Person) Lifespan() string {
	if p.BirthYear == nil && p.DeathYear == nil {
		return ""
	}
	return fmt.Sprintf("%s–%s", yearOrUnknown(p.BirthYear), yearOrUnknown(p.DeathYear))
}

func yearOrUnknown(y *int) string {
	if y == nil {
		return "?"
	}
	return strconv.Itoa(*y)
}

// PrimaryAuthor returns the first author's name.
func (b Book) PrimaryAuthor() string {
	for _, a := range b.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			return name
		}
	}
	return unknownAuthor
}

// AuthorNames joins every author name with ", ".
func (b Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return unknownAuthor
	}
	return strings.Join(names, ", ")
}

// PrimaryGenre returns the first subject heading.
func (b Book) PrimaryGenre() string {
	for _, s := range b.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return unknownGenre
}

// CoverURL returns the JPEG cover link or DefaultCover.
func (b Book) CoverURL() string {
	if u := strings.TrimSpace(b.Formats[coverMIME]); u != "" {
		return u
	}
	return DefaultCover
}

// CopyrightLabel describes the copyright flag.
func (b Book) CopyrightLabel() string {
	switch {
	case b.Copyright == nil:
		return "Unknown"
	case *b.Copyright:
		return "Copyrighted"
	default:
		return "Public domain"
	}
}

// PageFromCursor extracts the page number from a next/previous cursor URL.
// Gutendex omits the page parameter when pointing at page 1. An empty or
// unparsable cursor returns 0.
func PageFromCursor(cursor string) int {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return 0
	}
	u, err := url.Parse(cursor)
	if err != nil {
		return 0
	}
	raw := u.Query().Get("page")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
