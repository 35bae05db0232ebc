package paging

import "testing"

func TestRange(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    string
	}{
		{"single page", 1, 1, "[1]"},
		{"all pages shown at six", 4, 6, "1 2 3 [4] 5 6"},
		{"near start", 1, 10, "[1] 2 3 4 … 10"},
		{"third page still near start", 3, 10, "1 2 [3] 4 … 10"},
		{"middle", 5, 10, "1 … 4 [5] 6 … 10"},
		{"first middle page", 4, 10, "1 … 3 [4] 5 … 10"},
		{"last middle page", 7, 10, "1 … 6 [7] 8 … 10"},
		{"near end", 8, 10, "1 … 7 [8] 9 10"},
		{"last page", 10, 10, "1 … 7 8 9 [10]"},
		{"seven pages middle", 4, 7, "1 … 3 [4] 5 … 7"},
		{"zero total", 1, 0, "[1]"},
		{"current below range", -3, 10, "[1] 2 3 4 … 10"},
		{"current above range", 99, 10, "1 … 7 8 9 [10]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(Range(tt.current, tt.total))
			if got != tt.want {
				t.Fatalf("Range(%d, %d) = %q, want %q", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestRange_AtMostSixNumbersAndOneActive(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			numbers, active := 0, 0
			for _, ind := range Range(current, total) {
				if ind.Ellipsis {
					if ind.Active || ind.Page != 0 {
						t.Fatalf("Range(%d, %d) ellipsis = %#v, want bare gap", current, total, ind)
					}
					continue
				}
				numbers++
				if ind.Active {
					active++
					if ind.Page != current {
						t.Fatalf("Range(%d, %d) active page = %d", current, total, ind.Page)
					}
				}
			}
			if numbers > MaxIndicators {
				t.Fatalf("Range(%d, %d) has %d numbers, want <= %d", current, total, numbers, MaxIndicators)
			}
			if active != 1 {
				t.Fatalf("Range(%d, %d) has %d active indicators, want 1", current, total, active)
			}
		}
	}
}

func TestRange_AlwaysIncludesFirstAndLast(t *testing.T) {
	for total := 1; total <= 25; total++ {
		for current := 1; current <= total; current++ {
			r := Range(current, total)
			if r[0].Page != 1 {
				t.Fatalf("Range(%d, %d) starts at %v, want 1", current, total, r[0])
			}
			if r[len(r)-1].Page != total {
				t.Fatalf("Range(%d, %d) ends at %v, want %d", current, total, r[len(r)-1], total)
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 32, 1},
		{-5, 32, 1},
		{1, 32, 1},
		{32, 32, 1},
		{33, 32, 2},
		{76000, 32, 2375},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count, tt.size); got != tt.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.count, tt.size, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0, 5); got != 1 {
		t.Fatalf("Clamp(0, 5) = %d, want 1", got)
	}
	if got := Clamp(9, 5); got != 5 {
		t.Fatalf("Clamp(9, 5) = %d, want 5", got)
	}
	if got := Clamp(3, 0); got != 1 {
		t.Fatalf("Clamp(3, 0) = %d, want 1", got)
	}
	if got := Clamp(3, 5); got != 3 {
		t.Fatalf("Clamp(3, 5) = %d, want 3", got)
	}
}
