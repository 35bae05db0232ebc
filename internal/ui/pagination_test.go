package ui

import (
	"testing"
)

func segmentTexts(segments []barSegment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.text
	}
	return out
}

func TestPaginationSegmentsMiddlePage(t *testing.T) {
	segments := paginationSegments(5, 10)
	want := []string{"‹ Prev", " 1 ", " … ", " 4 ", " 5 ", " 6 ", " … ", " 10 ", "Next ›"}
	got := segmentTexts(segments)
	if len(got) != len(want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segments = %q, want %q", got, want)
		}
	}
	if !segments[4].active || segments[4].page != 5 {
		t.Fatalf("segment 4 = %+v, want active page 5", segments[4])
	}
	if segments[0].page != 4 || segments[len(segments)-1].page != 6 {
		t.Fatalf("prev/next pages = %d/%d, want 4/6", segments[0].page, segments[len(segments)-1].page)
	}
}

func TestPaginationSegmentsDisableEnds(t *testing.T) {
	first := paginationSegments(1, 3)
	if first[0].page != 0 {
		t.Fatalf("prev on first page should be disabled, got page %d", first[0].page)
	}
	last := paginationSegments(3, 3)
	if last[len(last)-1].page != 0 {
		t.Fatalf("next on last page should be disabled, got page %d", last[len(last)-1].page)
	}

	single := paginationSegments(1, 0)
	if got := segmentTexts(single); len(got) != 3 || got[1] != " 1 " {
		t.Fatalf("segments for empty listing = %q, want single page", got)
	}
}

func TestPaginationNeverExceedsSixIndicators(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			numbers := 0
			for _, s := range paginationSegments(current, total) {
				if !s.nav && !s.ellipsis {
					numbers++
				}
			}
			if numbers > 6 {
				t.Fatalf("paginationSegments(%d, %d) has %d numbers", current, total, numbers)
			}
		}
	}
}

func TestPaginationZonesAndPageAt(t *testing.T) {
	segments := paginationSegments(1, 4)
	zones := paginationZones(segments, 1)

	// "‹ Prev" is disabled and " 1 " is active, so neither is clickable.
	for _, z := range zones {
		if z.page == 1 {
			t.Fatalf("active page should not have a zone: %+v", zones)
		}
	}

	// Columns: 1-6 "‹ Prev", 8-10 " 1 ", 12-14 " 2 ", 16-18 " 3 ".
	cases := []struct {
		x    int
		want int
	}{
		{0, 0},
		{3, 0},
		{9, 0},
		{11, 0},
		{12, 2},
		{14, 2},
		{15, 0},
		{17, 3},
	}
	for _, tc := range cases {
		if got := pageAt(zones, tc.x); got != tc.want {
			t.Fatalf("pageAt(%d) = %d, want %d (zones %+v)", tc.x, got, tc.want, zones)
		}
	}

	next := zones[len(zones)-1]
	if next.page != 2 || next.end-next.start != len([]rune("Next ›")) {
		t.Fatalf("next zone = %+v, want page 2 spanning the label", next)
	}
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{75432, "75,432"},
		{1234567, "1,234,567"},
		{-5, "-5"},
	}
	for _, tc := range cases {
		if got := formatCount(tc.in); got != tc.want {
			t.Fatalf("formatCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
