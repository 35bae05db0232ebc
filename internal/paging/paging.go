// Package paging computes the compressed page-number bar shown under catalog
// results.
//
// The bar never shows more than six numeric indicators. Small result sets
// list every page; larger ones keep the first and last page, a window around
// the current page, and ellipses for the gaps:
//
//	Range(2, 10)  -> 1 [2] 3 4 … 10
//	Range(5, 10)  -> 1 … 4 [5] 6 … 10
//	Range(9, 10)  -> 1 … 7 8 [9] 10
//
// Everything here is a pure function of its arguments.
package paging

import (
	"strconv"
	"strings"
)

// MaxIndicators is the largest total page count rendered without ellipses.
const MaxIndicators = 6

// Indicator is one slot in the pagination bar: a page number or a gap.
type Indicator struct {
	Page     int // 1-based; zero for an ellipsis
	Ellipsis bool
	Active   bool
}

// String renders the indicator as plain text ("3" or "…").
func (i Indicator) String() string {
	if i.Ellipsis {
		return "…"
	}
	return strconv.Itoa(i.Page)
}

// Range returns the indicators for current (1-based) out of total pages.
// total below 1 is treated as 1 and current is clamped into [1, total].
func Range(current, total int) []Indicator {
	if total < 1 {
		total = 1
	}
	current = Clamp(current, total)

	var pages []int
	switch {
	case total <= MaxIndicators:
		pages = span(1, total)
	case current <= 3:
		pages = append(span(1, 4), 0, total)
	case current >= total-2:
		pages = append([]int{1, 0}, span(total-3, total)...)
	default:
		pages = []int{1, 0, current - 1, current, current + 1, 0, total}
	}

	out := make([]Indicator, len(pages))
	for i, p := range pages {
		if p == 0 {
			out[i] = Indicator{Ellipsis: true}
			continue
		}
		out[i] = Indicator{Page: p, Active: p == current}
	}
	return out
}

// Format joins a range into a single line, bracketing the active page.
func Format(indicators []Indicator) string {
	parts := make([]string, len(indicators))
	for i, ind := range indicators {
		if ind.Active {
			parts[i] = "[" + ind.String() + "]"
			continue
		}
		parts[i] = ind.String()
	}
	return strings.Join(parts, " ")
}

// TotalPages returns how many pages of size pageSize hold count items.
// It is at least 1 so an empty result still has a page to show.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Clamp bounds page to [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}
