package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Refresh    key.Binding

	// View switching
	ViewBrowse   key.Binding
	ViewWishlist key.Binding
	ViewLogs     key.Binding
	OpenDetail   key.Binding

	// Catalog actions
	Search         key.Binding
	Topic          key.Binding
	GotoPage       key.Binding
	ToggleWishlist key.Binding
	RemoveWishlist key.Binding

	// Pagination
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Logs actions
	ToggleFollow key.Binding
	CycleLevel   key.Binding
	FilterLogs   key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		ViewBrowse: key.NewBinding(
			key.WithKeys("b", "1"),
			key.WithHelp("b/1", "Browse"),
		),
		ViewWishlist: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Wishlist"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log"),
		),
		OpenDetail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Book details"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search titles and authors"),
		),
		Topic: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Filter by genre"),
		),
		GotoPage: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "Go to page"),
		),
		ToggleWishlist: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle wishlist"),
		),
		RemoveWishlist: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove from wishlist"),
		),

		PrevPage: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("←/[", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("→/]", "Next page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "First page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "Last page"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "First row"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "Last row"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle minimum level"),
		),
		FilterLogs: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter log lines"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewBrowse, k.ViewWishlist, k.ViewLogs, k.OpenDetail, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.HalfPageDown, k.HalfPageUp},
		{k.Search, k.Topic, k.GotoPage, k.ToggleWishlist, k.RemoveWishlist, k.Refresh},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage},
		{k.ToggleFollow, k.CycleLevel, k.FilterLogs},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
