package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is hidden.
	LayoutCompactWidth = 90

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Screen rows reserved outside the content box.
const (
	headerRows       = 2 // header + command bar
	footerRows       = 2 // pagination bar + status line
	boxBorderRows    = 2
	listFirstRowY    = headerRows + 1 // first list row inside the box
	paginationIndent = 1
)

// Log display limits.
const (
	// LogTailLines is the number of lines read from the log file.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// DetailFetchTimeout bounds a single book lookup.
	DetailFetchTimeout = 20 * time.Second

	// FlashDuration is how long transient status messages stay visible.
	FlashDuration = 3 * time.Second
)
