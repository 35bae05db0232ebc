package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/five82/folio/internal/gutendex"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBookTable(w io.Writer, books []gutendex.Book, saved map[int]bool) error {
	tw := newTabWriter(w)
	tw.writef("ID\tTITLE\tAUTHOR\tGENRE\tDOWNLOADS\n")
	for i := range books {
		b := &books[i]
		mark := ""
		if saved[b.ID] {
			mark = " ♥"
		}
		tw.writef("%d%s\t%s\t%s\t%s\t%d\n",
			b.ID,
			mark,
			truncate(b.Title, 48),
			truncate(b.PrimaryAuthor(), 28),
			truncate(b.PrimaryGenre(), 32),
			b.DownloadCount,
		)
	}
	return tw.finish()
}

func printBookDetail(w io.Writer, b *gutendex.Book) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%d\n", b.ID)
	tw.writef("Title:\t%s\n", b.Title)
	tw.writef("Authors:\t%s\n", b.AuthorNames())
	if len(b.Translators) > 0 {
		names := make([]string, 0, len(b.Translators))
		for _, p := range b.Translators {
			names = append(names, p.Name)
		}
		tw.writef("Translators:\t%s\n", strings.Join(names, "; "))
	}
	tw.writef("Genre:\t%s\n", b.PrimaryGenre())
	if len(b.Subjects) > 1 {
		tw.writef("Subjects:\t%s\n", strings.Join(b.Subjects, "; "))
	}
	if len(b.Bookshelves) > 0 {
		tw.writef("Bookshelves:\t%s\n", strings.Join(b.Bookshelves, "; "))
	}
	tw.writef("Languages:\t%s\n", strings.Join(b.Languages, ", "))
	tw.writef("Copyright:\t%s\n", b.CopyrightLabel())
	tw.writef("Downloads:\t%d\n", b.DownloadCount)
	tw.writef("Cover:\t%s\n", b.CoverURL())
	return tw.finish()
}

// parseIDs converts book id arguments, rejecting anything but positive integers.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid book id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
