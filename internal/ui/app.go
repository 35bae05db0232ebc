package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBrowse View = iota
	ViewWishlist
	ViewDetail
	ViewLogs
)

func (v View) String() string {
	switch v {
	case ViewWishlist:
		return "Wishlist"
	case ViewDetail:
		return "Detail"
	case ViewLogs:
		return "Log"
	default:
		return "Browse"
	}
}

// inputMode selects what the command-line input edits.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputTopic
	inputPage
	inputLogFilter
)

// Requester accepts listing requests; *app.Fetcher implements it.
type Requester interface {
	Submit(req state.Request)
	SubmitDebounced(req state.Request)
	Updates() <-chan struct{}
}

// Wishlist is the persisted set of saved book ids.
type Wishlist interface {
	List() ([]int, error)
	Toggle(id int) (bool, error)
	Remove(id int) (bool, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Catalog   gutendex.Catalog
	Store     *state.Store
	Requests  Requester
	Wishlist  Wishlist
	Logger    *log.Logger
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	Languages []string
	Tick      time.Duration
}

// browseState is the catalog query the Browse view shows.
type browseState struct {
	search string
	topic  string
	page   int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	catalog   gutendex.Catalog
	store     *state.Store
	requests  Requester
	wishlist  Wishlist
	logger    *log.Logger
	prefsPath string
	logPath   string
	languages []string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	listView    View // last list view; esc from detail returns here
	width       int
	height      int
	ready       bool

	// Data state
	snapshot     state.Snapshot
	browse       browseState
	wishlistPage int
	saved        []int
	savedSet     map[int]bool
	selectedRow  int

	// Command-line input
	input     textinput.Model
	inputMode inputMode
	inputPrev string // value restored when input is cancelled

	// Detail state
	detailViewport viewport.Model
	detail         detailState

	// Log state
	logViewport viewport.Model
	logs        logState

	// Transient status message
	flash       string
	flashIsErr  bool
	flashExpiry time.Time

	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	page := opts.Prefs.Page
	if page < 1 {
		page = 1
	}

	ti := textinput.New()
	ti.CharLimit = 120
	ti.Prompt = ""

	return Model{
		ctx:          ctx,
		catalog:      opts.Catalog,
		store:        opts.Store,
		requests:     opts.Requests,
		wishlist:     opts.Wishlist,
		logger:       logger,
		prefsPath:    prefsPath,
		logPath:      opts.LogPath,
		languages:    opts.Languages,
		tick:         tick,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(opts.Prefs.Theme),
		currentView:  ViewBrowse,
		browse:       browseState{search: opts.Prefs.Search, topic: opts.Prefs.Topic, page: page},
		wishlistPage: 1,
		savedSet:     make(map[int]bool),
		input:        ti,
		logs:         newLogState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		loadWishlistCmd(m.wishlist),
	}
	if m.requests != nil {
		cmds = append(cmds,
			submitCmd(m.requests, m.catalogRequest()),
			waitForUpdateCmd(m.requests.Updates()),
		)
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case storeUpdatedMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			m.applySnapshot(m.store.Snapshot())
		}
		if m.requests != nil {
			cmds = append(cmds, waitForUpdateCmd(m.requests.Updates()))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case wishlistMsg:
		m.handleWishlistLoaded(msg)
		return m, nil

	case detailMsg:
		m.handleDetailLoaded(msg)
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.inputMode != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewBrowse):
		return m.showBrowse()

	case key.Matches(msg, m.keys.ViewWishlist):
		return m.showWishlist()

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, readLogCmd(m.logPath)

	case key.Matches(msg, m.keys.Escape):
		switch m.currentView {
		case ViewDetail:
			m.currentView = m.listView
		case ViewLogs:
			if m.logs.filter != "" {
				m.logs.filter = ""
				m.refreshLogContent()
			} else {
				m.currentView = m.listView
			}
		}
		return m, nil
	}

	switch m.currentView {
	case ViewBrowse, ViewWishlist:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logs.follow {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	if m.flash != "" && time.Now().After(m.flashExpiry) {
		m.flash = ""
	}

	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

// applySnapshot stores a new snapshot and keeps the selection in range.
func (m *Model) applySnapshot(snap state.Snapshot) {
	var selectedID int
	if book := m.selectedBook(); book != nil {
		selectedID = book.ID
	}
	changed := !snap.LastUpdated.Equal(m.snapshot.LastUpdated)
	m.snapshot = snap
	m.clampPage()

	books := m.visibleBooks()
	if len(books) == 0 {
		m.selectedRow = 0
		return
	}
	if selectedID > 0 {
		for i, b := range books {
			if b.ID == selectedID {
				m.selectedRow = i
				return
			}
		}
	}
	if changed {
		m.selectedRow = 0
	}
	if m.selectedRow >= len(books) {
		m.selectedRow = len(books) - 1
	}
}

// setFlash shows a transient message in the status line.
func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashIsErr = isErr
	m.flashExpiry = time.Now().Add(FlashDuration)
}

// savePrefs persists the theme and browse position.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{
		Theme:  m.theme.Name,
		Search: m.browse.search,
		Topic:  m.browse.topic,
		Page:   m.browse.page,
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "err", err)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type storeUpdatedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func submitCmd(r Requester, req state.Request) tea.Cmd {
	return func() tea.Msg {
		r.Submit(req)
		return nil
	}
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func waitForUpdateCmd(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return storeUpdatedMsg{}
	}
}

// Run starts the Bubble Tea program and saves preferences on exit.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.savePrefs()
	}
	return err
}
