package ui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gutendex"
)

// renderMain renders the full UI: header, command bar, content,
// pagination bar and status line.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooterBar())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBrowse, ViewWishlist:
		return m.renderList()
	case ViewDetail:
		return m.renderDetail()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// renderFooterBar shows the pagination bar for list views and the input
// line while one is open.
func (m Model) renderFooterBar() string {
	if m.inputMode != inputNone {
		return m.renderInputLine()
	}
	if m.currentView == ViewBrowse || m.currentView == ViewWishlist {
		return m.renderPagination()
	}
	bg := NewBgStyle(m.theme.Surface)
	return bg.FillLine("", m.width)
}

// renderInputLine renders the active text input with its label.
func (m Model) renderInputLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var label string
	switch m.inputMode {
	case inputSearch:
		label = "Search"
	case inputTopic:
		label = "Genre"
	case inputPage:
		label = "Go to page"
	case inputLogFilter:
		label = "Filter"
	}
	return bg.FillLine(bg.Space()+bg.Render(label+":", styles.AccentText.Bold(true))+bg.Space()+m.input.View(), m.width)
}

// renderHeader renders the logo, view tabs, and API status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("folio", styles.Logo)}

	tabs := []View{ViewBrowse, ViewWishlist, ViewLogs}
	tabParts := make([]string, 0, len(tabs))
	for i, v := range tabs {
		label := strconv.Itoa(i+1) + " " + v.String()
		if v == ViewLogs {
			label = "L " + v.String()
		}
		if v == m.currentView || (m.currentView == ViewDetail && v == m.listView) {
			tabParts = append(tabParts, styles.ActivePage.Render(" "+label+" "))
		} else {
			tabParts = append(tabParts, bg.Render(" "+label+" ", styles.MutedText))
		}
	}
	parts = append(parts, strings.Join(tabParts, bg.Space()))

	parts = append(parts, bg.Render("♥ "+strconv.Itoa(len(m.saved)), styles.SavedText))

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, bg.Render("API offline", styles.DangerText))
	case m.snapshot.Loading:
		parts = append(parts, bg.Render("Loading…", styles.WarningText))
	case !m.snapshot.LastUpdated.IsZero():
		parts = append(parts, bg.Render("Updated "+m.snapshot.LastUpdated.Format("15:04:05"), styles.FaintText))
	}

	content := bg.Space() + strings.Join(parts, sep)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logs.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"v", "Level"},
			{"/", "Filter"},
			{"r", "Reload"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewDetail:
		commands = []cmd{
			{"w", "Wishlist"},
			{"j/k", "Scroll"},
			{"r", "Reload"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case ViewWishlist:
		commands = []cmd{
			{"x", "Remove"},
			{"enter", "Details"},
			{"←/→", "Page"},
			{"j/k", "Navigate"},
			{"b", "Browse"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"t", "Genre"},
			{"w", "Wishlist"},
			{"enter", "Details"},
			{"←/→", "Page"},
			{":", "Go to"},
			{"2", "Saved"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render("<"+c.key+">", styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	return bg.FillLine(bg.Space()+strings.Join(segments, sep), m.width)
}

// renderStatusLine shows transient messages, fetch errors, and the
// current query.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	var left string
	switch {
	case m.flash != "" && time.Now().Before(m.flashExpiry):
		style := styles.SuccessText
		if m.flashIsErr {
			style = styles.DangerText
		}
		left = bg.Render(m.flash, style)
	case m.currentView == ViewLogs:
		left = m.renderLogStatus(styles, bg)
	case m.snapshot.LastError != nil && !errors.Is(m.snapshot.LastError, gutendex.ErrNotFound):
		left = bg.Render(describeFetchError(m.snapshot.LastError, m.snapshot.IsOffline()), styles.DangerText)
	case m.snapshot.Loading:
		left = bg.Render("Loading page "+strconv.Itoa(m.snapshot.Request.PageNumber())+"…", styles.MutedText)
	default:
		left = bg.Render(m.queryLabel(), styles.FaintText)
	}
	return bg.FillLine(bg.Space()+left, m.width)
}

// queryLabel describes the active listing.
func (m Model) queryLabel() string {
	if m.listSource() != m.snapshot.BooksSource {
		return ""
	}
	if m.listView == ViewWishlist {
		return strconv.Itoa(len(m.saved)) + " saved books"
	}
	parts := []string{formatCount(m.snapshot.Count) + " books"}
	if m.browse.search != "" {
		parts = append(parts, "matching "+strconv.Quote(m.browse.search))
	}
	if m.browse.topic != "" {
		parts = append(parts, "in "+m.browse.topic)
	}
	if len(m.languages) > 0 {
		parts = append(parts, "["+strings.Join(m.languages, ",")+"]")
	}
	return strings.Join(parts, " ")
}

// describeFetchError turns a listing failure into a status line.
func describeFetchError(err error, offline bool) string {
	var statusErr *gutendex.StatusError
	switch {
	case errors.Is(err, gutendex.ErrUnavailable):
		return "Book catalog unavailable, retrying shortly"
	case errors.As(err, &statusErr):
		return "Failed to load books: server returned " + strconv.Itoa(statusErr.Status)
	case offline:
		return "Book catalog unreachable, retrying… (" + truncate(err.Error(), 60) + ")"
	default:
		return "Failed to load books: " + truncate(err.Error(), 80)
	}
}

// renderTitledBox renders content in a box with the title embedded in the top border.
// When focused is true, uses BorderFocus color and FocusBg background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
