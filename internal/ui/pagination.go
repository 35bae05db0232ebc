package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/paging"
)

// barSegment is one piece of the pagination bar. Page is the page a click
// on the segment opens; zero means the segment is not clickable.
type barSegment struct {
	text     string
	page     int
	active   bool
	ellipsis bool
	nav      bool
}

// pageZone is the clickable column span [start, end) of a page target.
type pageZone struct {
	start int
	end   int
	page  int
}

// paginationSegments lays out "‹ Prev  1 … 4 [5] 6 … 10  Next ›".
func paginationSegments(current, total int) []barSegment {
	total = max(total, 1)
	current = paging.Clamp(current, total)

	segments := make([]barSegment, 0, paging.MaxIndicators+4)
	prev := barSegment{text: "‹ Prev", nav: true}
	if current > 1 {
		prev.page = current - 1
	}
	segments = append(segments, prev)

	for _, ind := range paging.Range(current, total) {
		if ind.Ellipsis {
			segments = append(segments, barSegment{text: " … ", ellipsis: true})
			continue
		}
		segments = append(segments, barSegment{
			text:   " " + strconv.Itoa(ind.Page) + " ",
			page:   ind.Page,
			active: ind.Active,
		})
	}

	next := barSegment{text: "Next ›", nav: true}
	if current < total {
		next.page = current + 1
	}
	return append(segments, next)
}

// paginationZones returns the clickable spans of segments rendered from
// column offset with a single space between segments.
func paginationZones(segments []barSegment, offset int) []pageZone {
	zones := make([]pageZone, 0, len(segments))
	x := offset
	for i, seg := range segments {
		if i > 0 {
			x++ // separator
		}
		w := lipgloss.Width(seg.text)
		if seg.page > 0 && !seg.active {
			zones = append(zones, pageZone{start: x, end: x + w, page: seg.page})
		}
		x += w
	}
	return zones
}

// pageAt returns the page under column x, or 0.
func pageAt(zones []pageZone, x int) int {
	for _, z := range zones {
		if x >= z.start && x < z.end {
			return z.page
		}
	}
	return 0
}

// renderPagination renders the pagination bar for the current listing.
func (m Model) renderPagination() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()

	current, total := m.currentPage(), m.totalPages()
	segments := paginationSegments(current, total)

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch {
		case seg.active:
			parts = append(parts, styles.ActivePage.Render(seg.text))
		case seg.ellipsis:
			parts = append(parts, bg.Render(seg.text, styles.FaintText))
		case seg.nav && seg.page == 0:
			parts = append(parts, bg.Render(seg.text, styles.FaintText))
		case seg.nav:
			parts = append(parts, bg.Render(seg.text, styles.AccentText))
		default:
			parts = append(parts, bg.Render(seg.text, styles.Text))
		}
	}

	line := bg.Spaces(paginationIndent) + strings.Join(parts, bg.Space())
	if summary := m.rangeSummary(); summary != "" {
		used := lipgloss.Width(line)
		summaryWidth := lipgloss.Width(summary)
		if gap := m.width - used - summaryWidth - 1; gap > 1 {
			line += bg.Spaces(gap) + bg.Render(summary, styles.MutedText)
		}
	}
	return bg.FillLine(line, m.width)
}

// rangeSummary describes the visible slice, e.g. "Showing 33–64 of 1,024".
func (m Model) rangeSummary() string {
	books := m.visibleBooks()
	if len(books) == 0 {
		return ""
	}
	first := (m.shownPage()-1)*gutendex.PageSize + 1
	last := first + len(books) - 1
	return "Showing " + strconv.Itoa(first) + "–" + strconv.Itoa(last) + " of " + formatCount(m.snapshot.Count)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
