package gutendex

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort orders for /books.
const (
	SortPopular    = "popular"
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Query configures /books requests.
type Query struct {
	Search    string // words matched against titles and author names
	Topic     string // genre filter matched against subjects and bookshelves
	Page      int    // 1-based; values below 2 are omitted
	IDs       []int
	Languages []string
	Sort      string
}

// Values encodes the query as URL parameters.
func (q Query) Values() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	if t := strings.TrimSpace(q.Topic); t != "" {
		values.Set("topic", t)
	}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if len(q.IDs) > 0 {
		ids := make([]string, 0, len(q.IDs))
		for _, id := range q.IDs {
			if id > 0 {
				ids = append(ids, strconv.Itoa(id))
			}
		}
		if len(ids) > 0 {
			values.Set("ids", strings.Join(ids, ","))
		}
	}
	if len(q.Languages) > 0 {
		langs := make([]string, 0, len(q.Languages))
		for _, l := range q.Languages {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				langs = append(langs, l)
			}
		}
		if len(langs) > 0 {
			values.Set("languages", strings.Join(langs, ","))
		}
	}
	switch q.Sort {
	case SortAscending, SortDescending, SortPopular:
		values.Set("sort", q.Sort)
	}
	return values
}

// WithPage returns a copy of q pointing at page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}
