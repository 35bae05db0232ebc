package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/paging"
	"github.com/five82/folio/internal/state"
)

// catalogRequest builds the request for the Browse view's current query.
func (m Model) catalogRequest() state.Request {
	return state.Request{
		Source: state.SourceCatalog,
		Query: gutendex.Query{
			Search:    m.browse.search,
			Topic:     m.browse.topic,
			Page:      max(m.browse.page, 1),
			Languages: m.languages,
		},
	}
}

// wishlistRequest builds the request for the Wishlist view.
func (m Model) wishlistRequest() state.Request {
	return state.Request{
		Source: state.SourceWishlist,
		Query: gutendex.Query{
			IDs:  append([]int(nil), m.saved...),
			Page: max(m.wishlistPage, 1),
		},
	}
}

// listSource is the listing shown by the active (or last) list view.
func (m Model) listSource() state.Source {
	if m.listView == ViewWishlist {
		return state.SourceWishlist
	}
	return state.SourceCatalog
}

// visibleBooks returns the books belonging to the active list view.
func (m Model) visibleBooks() []gutendex.Book {
	if m.snapshot.BooksSource != m.listSource() {
		return nil
	}
	return m.snapshot.Books
}

// selectedBook returns the highlighted book, or nil.
func (m Model) selectedBook() *gutendex.Book {
	books := m.visibleBooks()
	if m.selectedRow < 0 || m.selectedRow >= len(books) {
		return nil
	}
	book := books[m.selectedRow]
	return &book
}

// currentPage is the page most recently requested for the active listing.
// It runs ahead of the snapshot while that page is loading.
func (m Model) currentPage() int {
	if m.listSource() == state.SourceWishlist {
		return max(m.wishlistPage, 1)
	}
	return max(m.browse.page, 1)
}

// shownPage is the page whose books are on screen.
func (m Model) shownPage() int {
	if m.snapshot.BooksSource == m.listSource() && m.snapshot.Page > 0 {
		return m.snapshot.Page
	}
	return m.currentPage()
}

// totalPages is the page count of the listing on screen.
func (m Model) totalPages() int {
	if m.snapshot.BooksSource == m.listSource() && m.snapshot.TotalPages > 0 {
		return m.snapshot.TotalPages
	}
	return 1
}

// clampPage pulls the requested page back inside a finished listing, e.g.
// a restored page that no longer exists after the catalog shrank.
func (m *Model) clampPage() {
	snap := m.snapshot
	if snap.Loading || snap.LastError != nil || snap.TotalPages < 1 ||
		snap.BooksSource != m.listSource() || snap.Request.Source != m.listSource() {
		return
	}
	if m.listSource() == state.SourceWishlist {
		m.wishlistPage = paging.Clamp(m.wishlistPage, snap.TotalPages)
		return
	}
	m.browse.page = paging.Clamp(m.browse.page, snap.TotalPages)
}

func (m Model) submit(req state.Request) {
	if m.requests != nil {
		m.requests.Submit(req)
	}
}

func (m Model) submitDebounced(req state.Request) {
	if m.requests != nil {
		m.requests.SubmitDebounced(req)
	}
}

// showBrowse switches to the Browse view and reloads its query.
func (m Model) showBrowse() (tea.Model, tea.Cmd) {
	m.currentView = ViewBrowse
	if m.listView != ViewBrowse || m.snapshot.Request.Source != state.SourceCatalog {
		m.listView = ViewBrowse
		m.selectedRow = 0
		m.submit(m.catalogRequest())
	}
	return m, nil
}

// showWishlist switches to the Wishlist view and loads the saved books.
func (m Model) showWishlist() (tea.Model, tea.Cmd) {
	m.currentView = ViewWishlist
	m.listView = ViewWishlist
	m.selectedRow = 0
	m.reloadSaved()
	m.wishlistPage = paging.Clamp(m.wishlistPage, paging.TotalPages(len(m.saved), gutendex.PageSize))
	m.submit(m.wishlistRequest())
	return m, nil
}

// goToPage requests page of the active listing. Adjacent pages follow the
// API's next/previous cursors when the page on screen is settled.
func (m *Model) goToPage(page int) {
	total := m.totalPages()
	page = paging.Clamp(page, total)
	current := m.currentPage()
	if page == current && m.snapshot.LastError == nil {
		return
	}

	var req state.Request
	if m.listSource() == state.SourceWishlist {
		m.wishlistPage = page
		req = m.wishlistRequest()
	} else {
		m.browse.page = page
		req = m.catalogRequest()
	}
	settled := !m.snapshot.Loading && m.snapshot.LastError == nil &&
		m.snapshot.BooksSource == req.Source && m.snapshot.Page == current
	if settled {
		switch {
		case page == current+1 && m.snapshot.Next != "":
			req.Cursor = m.snapshot.Next
		case page == current-1 && m.snapshot.Previous != "":
			req.Cursor = m.snapshot.Previous
		}
	}
	m.selectedRow = 0
	m.submit(req)
}

// reload resubmits the active listing.
func (m *Model) reload() {
	if m.listSource() == state.SourceWishlist {
		m.reloadSaved()
		m.submit(m.wishlistRequest())
		return
	}
	m.submit(m.catalogRequest())
}

// handleListKey processes keyboard input for the Browse and Wishlist views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	books := m.visibleBooks()
	visible := m.listRows()

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < len(books)-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = max(len(books)-1, 0)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+visible/2, max(len(books)-1, 0))
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-visible/2, 0)

	case key.Matches(msg, m.keys.PrevPage):
		m.goToPage(m.currentPage() - 1)
	case key.Matches(msg, m.keys.NextPage):
		m.goToPage(m.currentPage() + 1)
	case key.Matches(msg, m.keys.FirstPage):
		m.goToPage(1)
	case key.Matches(msg, m.keys.LastPage):
		m.goToPage(m.totalPages())
	case key.Matches(msg, m.keys.Refresh):
		m.reload()

	case key.Matches(msg, m.keys.Search):
		return m.openInput(inputSearch)
	case key.Matches(msg, m.keys.Topic):
		return m.openInput(inputTopic)
	case key.Matches(msg, m.keys.GotoPage):
		return m.openInput(inputPage)

	case key.Matches(msg, m.keys.ToggleWishlist):
		m.toggleSelected()
	case key.Matches(msg, m.keys.RemoveWishlist):
		if m.currentView == ViewWishlist {
			m.removeSelected()
		}
	case key.Matches(msg, m.keys.OpenDetail):
		if book := m.selectedBook(); book != nil {
			return m.openDetail(book.ID)
		}
	}
	return m, nil
}

// handleMouse selects rows, scrolls, and follows clicks on the pagination bar.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.inputMode != inputNone {
		return m, nil
	}
	if m.currentView != ViewBrowse && m.currentView != ViewWishlist {
		if m.currentView == ViewDetail {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
		if m.currentView == ViewLogs {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	books := m.visibleBooks()
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		if m.selectedRow < len(books)-1 {
			m.selectedRow++
		}
		return m, nil
	case tea.MouseButtonWheelUp:
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	if msg.Y == m.paginationRowY() {
		zones := paginationZones(paginationSegments(m.currentPage(), m.totalPages()), paginationIndent)
		if page := pageAt(zones, msg.X); page > 0 {
			m.goToPage(page)
		}
		return m, nil
	}

	row := msg.Y - listFirstRowY
	if row >= 0 && row < m.listRows() && msg.X < m.listWidth() {
		idx := listOffset(m.selectedRow, m.listRows()) + row
		if idx < len(books) {
			m.selectedRow = idx
		}
	}
	return m, nil
}

// openInput focuses the command-line input for mode.
func (m Model) openInput(mode inputMode) (tea.Model, tea.Cmd) {
	if (mode == inputSearch || mode == inputTopic) && m.listView != ViewBrowse {
		m.listView = ViewBrowse
		m.currentView = ViewBrowse
		m.selectedRow = 0
		m.submit(m.catalogRequest())
	}

	m.inputMode = mode
	switch mode {
	case inputSearch:
		m.input.Placeholder = "title or author"
		m.input.SetValue(m.browse.search)
	case inputTopic:
		m.input.Placeholder = "genre, e.g. children, horror, poetry"
		m.input.SetValue(m.browse.topic)
	case inputPage:
		m.input.Placeholder = fmt.Sprintf("1-%d", m.totalPages())
		m.input.SetValue("")
	case inputLogFilter:
		m.input.Placeholder = "text"
		m.input.SetValue(m.logs.filter)
	}
	m.inputPrev = m.input.Value()
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

// handleInputKey edits the command-line input. Search and topic changes are
// sent through the debouncer as they are typed; enter sends immediately.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.setInputValue(m.inputPrev, false)
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.commitInput()
		m.closeInput()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.setInputValue(m.input.Value(), true)
	}
	return m, cmd
}

// setInputValue applies a live edit. For search and topic it resets to the
// first page and schedules a debounced fetch.
func (m *Model) setInputValue(value string, debounced bool) {
	switch m.inputMode {
	case inputSearch, inputTopic:
		trimmed := strings.TrimSpace(value)
		if m.inputMode == inputSearch {
			if trimmed == m.browse.search {
				return
			}
			m.browse.search = trimmed
		} else {
			if trimmed == m.browse.topic {
				return
			}
			m.browse.topic = trimmed
		}
		m.browse.page = 1
		m.selectedRow = 0
		if debounced {
			m.submitDebounced(m.catalogRequest())
		} else {
			m.submit(m.catalogRequest())
		}
	case inputLogFilter:
		m.logs.filter = strings.TrimSpace(value)
		m.refreshLogContent()
	}
}

// commitInput finishes the input on enter.
func (m *Model) commitInput() {
	switch m.inputMode {
	case inputSearch, inputTopic:
		m.submit(m.catalogRequest())
		m.savePrefs()
	case inputPage:
		raw := strings.TrimSpace(m.input.Value())
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			m.setFlash(fmt.Sprintf("Not a page number: %q", raw), true)
			return
		}
		if page > m.totalPages() {
			m.setFlash(fmt.Sprintf("Only %d pages", m.totalPages()), true)
		}
		m.goToPage(page)
	}
}

func (m *Model) closeInput() {
	m.inputMode = inputNone
	m.input.Blur()
	m.input.SetValue("")
}

// toggleSelected adds or removes the highlighted book from the wishlist.
func (m *Model) toggleSelected() {
	book := m.selectedBook()
	if book == nil || m.wishlist == nil {
		return
	}
	saved, err := m.wishlist.Toggle(book.ID)
	if err != nil {
		m.logger.Error("wishlist toggle failed", "id", book.ID, "err", err)
		m.setFlash("Wishlist error: "+err.Error(), true)
		return
	}
	m.reloadSaved()
	if saved {
		m.setFlash(fmt.Sprintf("Added %q to wishlist", truncate(book.Title, 40)), false)
		return
	}
	m.setFlash(fmt.Sprintf("Removed %q from wishlist", truncate(book.Title, 40)), false)
	if m.listSource() == state.SourceWishlist {
		m.submit(m.wishlistRequest())
	}
}

// removeSelected drops the highlighted book from the wishlist.
func (m *Model) removeSelected() {
	book := m.selectedBook()
	if book == nil || m.wishlist == nil {
		return
	}
	if _, err := m.wishlist.Remove(book.ID); err != nil {
		m.logger.Error("wishlist remove failed", "id", book.ID, "err", err)
		m.setFlash("Wishlist error: "+err.Error(), true)
		return
	}
	m.reloadSaved()
	m.wishlistPage = paging.Clamp(m.wishlistPage, paging.TotalPages(len(m.saved), gutendex.PageSize))
	m.setFlash(fmt.Sprintf("Removed %q from wishlist", truncate(book.Title, 40)), false)
	m.submit(m.wishlistRequest())
}

// reloadSaved refreshes the cached wishlist ids.
func (m *Model) reloadSaved() {
	if m.wishlist == nil {
		return
	}
	ids, err := m.wishlist.List()
	m.handleWishlistLoaded(wishlistMsg{ids: ids, err: err})
}

func (m *Model) handleWishlistLoaded(msg wishlistMsg) {
	if msg.err != nil {
		m.logger.Error("wishlist load failed", "err", msg.err)
		m.setFlash("Wishlist error: "+msg.err.Error(), true)
		return
	}
	m.saved = msg.ids
	m.savedSet = make(map[int]bool, len(msg.ids))
	for _, id := range msg.ids {
		m.savedSet[id] = true
	}
}

type wishlistMsg struct {
	ids []int
	err error
}

func loadWishlistCmd(w Wishlist) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ids, err := w.List()
		return wishlistMsg{ids: ids, err: err}
	}
}

// Layout helpers

func (m Model) contentHeight() int {
	return max(m.height-headerRows-footerRows, boxBorderRows+1)
}

func (m Model) listRows() int {
	return m.contentHeight() - boxBorderRows
}

func (m Model) paginationRowY() int {
	return m.height - footerRows
}

func (m Model) listWidth() int {
	switch {
	case m.width < LayoutCompactWidth:
		return m.width
	case m.width >= LayoutExtraWideWidth:
		return m.width * 40 / 100
	default:
		return m.width * 55 / 100
	}
}

// listOffset returns the first visible row keeping selected on screen.
func listOffset(selected, visible int) int {
	if visible <= 0 || selected < visible {
		return 0
	}
	return selected - visible + 1
}

// renderList renders the Browse or Wishlist view: the result list and,
// when wide enough, a summary pane for the highlighted book.
func (m Model) renderList() string {
	height := m.contentHeight()
	listWidth := m.listWidth()

	listBg := m.theme.FocusBg
	title := m.listTitle()
	listPane := m.renderTitledBox(title, m.renderListRows(listWidth-2, listBg), listWidth, height, true)

	if listWidth >= m.width {
		return listPane
	}

	detailWidth := m.width - listWidth
	var content string
	if book := m.selectedBook(); book != nil {
		content = m.renderBookSummary(*book, detailWidth-4, m.theme.SurfaceAlt)
	} else {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(m.theme.SurfaceAlt)).
			Render("Select a book")
	}
	detailPane := m.renderTitledBox("Book", content, detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// listTitle returns the list box title.
func (m Model) listTitle() string {
	if m.listSource() == state.SourceWishlist {
		return fmt.Sprintf("Wishlist (%d)", len(m.saved))
	}
	var filters []string
	if m.browse.search != "" {
		filters = append(filters, fmt.Sprintf("%q", m.browse.search))
	}
	if m.browse.topic != "" {
		filters = append(filters, "genre:"+m.browse.topic)
	}
	if len(filters) == 0 {
		return "Books"
	}
	return "Books " + truncate(strings.Join(filters, " "), 40)
}

// renderListRows renders one line per book, or a placeholder.
func (m Model) renderListRows(width int, bgColor string) string {
	styles := m.theme.Styles()
	books := m.visibleBooks()
	bg := NewBgStyle(bgColor)

	if len(books) == 0 {
		var msg string
		var style lipgloss.Style
		switch {
		case m.snapshot.Loading || m.snapshot.Request.Source != m.listSource():
			msg, style = "Loading…", styles.MutedText
		case m.snapshot.LastError != nil && !errors.Is(m.snapshot.LastError, gutendex.ErrNotFound):
			msg, style = "Could not load books.", styles.DangerText
		case m.listSource() == state.SourceWishlist:
			msg, style = "Your wishlist is empty. Press w on a book to save it.", styles.MutedText
		default:
			msg, style = "No books found.", styles.MutedText
		}
		return bg.Render(msg, style)
	}

	visible := m.listRows()
	offset := listOffset(m.selectedRow, visible)
	end := min(offset+visible, len(books))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		selected := i == m.selectedRow
		rowBg := bgColor
		if selected {
			rowBg = m.theme.SelectionBg
		}
		content := m.formatBookRow(books[i], width, rowBg, selected)
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			Render(content))
	}
	return strings.Join(lines, "\n")
}

// formatBookRow formats "♥ Title · Author".
func (m Model) formatBookRow(book gutendex.Book, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)

	mark := "  "
	if m.savedSet[book.ID] {
		mark = "♥ "
	}
	author := book.PrimaryAuthor()
	authorWidth := min(lipgloss.Width(author), max(width/3, 12))
	titleWidth := max(width-lipgloss.Width(mark)-authorWidth-3, 10)

	var markStyle, titleStyle, sepStyle, authorStyle lipgloss.Style
	if selected {
		selText := m.theme.Styles().Selected
		markStyle, titleStyle, sepStyle, authorStyle = selText, selText.Bold(true), selText, selText
	} else {
		styles := m.theme.Styles()
		markStyle = styles.SavedText
		titleStyle = styles.Text
		sepStyle = styles.FaintText
		authorStyle = styles.MutedText
	}

	return bg.Render(mark, markStyle) +
		bg.Render(truncate(book.Title, titleWidth), titleStyle) +
		bg.Render(" · ", sepStyle) +
		bg.Render(truncate(author, authorWidth), authorStyle)
}

// renderBookSummary renders the card for the highlighted book.
func (m Model) renderBookSummary(book gutendex.Book, width int, bgColor string) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	label := func(name string) string {
		return bg.Render(padRight(name, 11), styles.FaintText)
	}

	lines := []string{
		bg.Render(truncate(book.Title, width), styles.Text.Bold(true)),
		"",
		label("Author") + bg.Render(truncate(book.PrimaryAuthor(), width-11), styles.AccentText),
		label("Genre") + bg.Render(truncate(book.PrimaryGenre(), width-11), styles.InfoText),
		label("Cover") + bg.Render(truncateMiddle(book.CoverURL(), width-11), styles.MutedText),
		label("Book") + bg.Render("#"+strconv.Itoa(book.ID), styles.MutedText),
	}
	if len(book.Languages) > 0 {
		lines = append(lines, label("Language")+bg.Render(strings.Join(book.Languages, ", "), styles.MutedText))
	}
	lines = append(lines, label("Downloads")+bg.Render(formatCount(book.DownloadCount), styles.MutedText))
	lines = append(lines, "")
	if m.savedSet[book.ID] {
		lines = append(lines, bg.Render("♥ On your wishlist", styles.SavedText))
	} else {
		lines = append(lines, bg.Render("w to add to wishlist", styles.FaintText))
	}
	lines = append(lines, bg.Render("enter for full details", styles.FaintText))
	return strings.Join(lines, "\n")
}
