package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gutendex"
)

// detailState holds the book shown in the Detail view.
type detailState struct {
	id      int
	book    *gutendex.Book
	loading bool
	err     error
}

type detailMsg struct {
	id   int
	book *gutendex.Book
	err  error
}

// openDetail switches to the Detail view and fetches book id.
func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	m.currentView = ViewDetail
	m.detail = detailState{id: id, loading: true}
	// Show what the listing already knows while the full record loads.
	if book := m.selectedBook(); book != nil && book.ID == id {
		m.detail.book = book
	}
	m.updateDetailViewport()
	m.detailViewport.GotoTop()
	return m, fetchDetailCmd(m.ctx, m.catalog, id)
}

func fetchDetailCmd(ctx context.Context, catalog gutendex.Catalog, id int) tea.Cmd {
	if catalog == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, DetailFetchTimeout)
		defer cancel()
		book, err := catalog.FetchBook(ctx, id)
		return detailMsg{id: id, book: book, err: err}
	}
}

func (m *Model) handleDetailLoaded(msg detailMsg) {
	if msg.id != m.detail.id {
		return
	}
	m.detail.loading = false
	m.detail.err = msg.err
	if msg.err != nil {
		m.logger.Warn("book lookup failed", "id", msg.id, "err", msg.err)
	} else {
		m.detail.book = msg.book
	}
	m.updateDetailViewport()
}

// handleDetailKey processes keyboard input for the Detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleWishlist):
		if m.detail.book != nil && m.wishlist != nil {
			saved, err := m.wishlist.Toggle(m.detail.book.ID)
			if err != nil {
				m.setFlash("Wishlist error: "+err.Error(), true)
				return m, nil
			}
			m.reloadSaved()
			if saved {
				m.setFlash("Added to wishlist", false)
			} else {
				m.setFlash("Removed from wishlist", false)
			}
			m.updateDetailViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.detail.loading = true
		m.detail.err = nil
		m.updateDetailViewport()
		return m, fetchDetailCmd(m.ctx, m.catalog, m.detail.id)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// updateDetailViewport sizes the viewport and renders the book into it.
func (m *Model) updateDetailViewport() {
	width := max(m.width-4, 10)
	height := max(m.contentHeight()-boxBorderRows, 1)
	if m.detailViewport.Width == 0 {
		m.detailViewport = viewport.New(width, height)
	}
	m.detailViewport.Width = width
	m.detailViewport.Height = height
	m.detailViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.detailViewport.SetContent(m.renderDetailContent(width, m.theme.FocusBg))
}

// renderDetail renders the Detail view.
func (m Model) renderDetail() string {
	title := "Book"
	if m.detail.id > 0 {
		title = "Book #" + strconv.Itoa(m.detail.id)
	}
	return m.renderTitledBox(title, m.detailViewport.View(), m.width, m.contentHeight(), true)
}

// renderDetailContent renders every field of the book.
func (m Model) renderDetailContent(width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if m.detail.book == nil {
		switch {
		case m.detail.loading:
			return bg.Render("Loading book…", styles.MutedText)
		case errors.Is(m.detail.err, gutendex.ErrNotFound):
			return bg.Render(fmt.Sprintf("Book #%d was not found.", m.detail.id), styles.WarningText)
		case m.detail.err != nil:
			return bg.Render("Could not load book: "+m.detail.err.Error(), styles.DangerText)
		}
		return ""
	}
	book := m.detail.book

	const labelWidth = 13
	valueWidth := max(width-labelWidth, 10)
	var lines []string
	row := func(label, value string, style lipgloss.Style) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, bg.Render(padRight(label, labelWidth), styles.FaintText)+
			bg.Render(truncate(value, valueWidth), style))
	}
	section := func(title string) {
		lines = append(lines, "", bg.Render(title, styles.AccentText.Bold(true)))
	}

	lines = append(lines, bg.Render(truncate(book.Title, width), styles.Text.Bold(true)))
	if m.savedSet[book.ID] {
		lines = append(lines, bg.Render("♥ On your wishlist", styles.SavedText))
	}
	if m.detail.loading {
		lines = append(lines, bg.Render("Refreshing…", styles.FaintText))
	} else if m.detail.err != nil {
		lines = append(lines, bg.Render("Refresh failed: "+m.detail.err.Error(), styles.DangerText))
	}

	section("Authors")
	if len(book.Authors) == 0 {
		row("", book.PrimaryAuthor(), styles.Text)
	}
	for _, a := range book.Authors {
		row("", personLine(a), styles.Text)
	}
	if len(book.Translators) > 0 {
		section("Translators")
		for _, p := range book.Translators {
			row("", personLine(p), styles.Text)
		}
	}

	section("Catalog")
	row("Book", "#"+strconv.Itoa(book.ID), styles.MutedText)
	row("Genre", book.PrimaryGenre(), styles.InfoText)
	row("Languages", strings.Join(book.Languages, ", "), styles.Text)
	row("Copyright", book.CopyrightLabel(), styles.Text)
	row("Media type", book.MediaType, styles.Text)
	row("Downloads", formatCount(book.DownloadCount), styles.Text)
	row("Cover", book.CoverURL(), styles.MutedText)

	if len(book.Subjects) > 0 {
		section("Subjects")
		for _, s := range book.Subjects {
			row("", s, styles.Text)
		}
	}
	if len(book.Bookshelves) > 0 {
		section("Bookshelves")
		for _, s := range book.Bookshelves {
			row("", s, styles.Text)
		}
	}
	if len(book.Formats) > 0 {
		section("Formats")
		types := make([]string, 0, len(book.Formats))
		for mime := range book.Formats {
			types = append(types, mime)
		}
		sort.Strings(types)
		for _, mime := range types {
			row(truncate(mime, labelWidth-1), book.Formats[mime], styles.MutedText)
		}
	}
	return strings.Join(lines, "\n")
}

// personLine formats "Austen, Jane (1775–1817)".
func personLine(p gutendex.Person) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unknown"
	}
	if span := p.Lifespan(); span != "" {
		return name + " (" + span + ")"
	}
	return name
}
