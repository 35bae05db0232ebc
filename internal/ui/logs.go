package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/folio/internal/logtail"
)

// logState holds all log-related state.
type logState struct {
	rawLines []string
	follow   bool
	minLevel logtail.Level
	filter   string
	shown    int
	err      error
}

func newLogState() logState {
	return logState{follow: true}
}

type logLinesMsg struct {
	lines []string
	err   error
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logs.err = msg.err
	if msg.err == nil {
		m.logs.rawLines = msg.lines
	}
	m.refreshLogContent()
}

// refreshLogContent re-renders the log viewport from the buffered lines.
func (m *Model) refreshLogContent() {
	m.updateLogViewport()
	if m.logs.follow {
		m.logViewport.GotoBottom()
	}
}

// updateLogViewport sizes the viewport and renders the filtered lines.
func (m *Model) updateLogViewport() {
	width := max(m.width-4, 10)
	height := max(m.contentHeight()-boxBorderRows, 1)
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent(width))
}

// renderLogContent colors each entry by level.
func (m *Model) renderLogContent(width int) string {
	bgColor := m.theme.FocusBg
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if m.logs.err != nil {
		m.logs.shown = 0
		return bg.Render("Could not read log: "+m.logs.err.Error(), styles.DangerText)
	}
	entries := logtail.Filter(m.logs.rawLines, m.logs.minLevel, m.logs.filter)
	m.logs.shown = len(entries)
	if len(entries) == 0 {
		return bg.Render("No log lines.", styles.MutedText)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.renderLogEntry(e, width, styles, bg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLogEntry(e logtail.Entry, width int, styles Styles, bg BgStyle) string {
	if e.Level == logtail.LevelUnknown {
		return bg.Render(truncate(e.Raw, width), styles.Text)
	}
	var parts []string
	parts = append(parts, bg.Render(e.Timestamp, styles.FaintText))
	parts = append(parts, bg.Render(padRight(e.Level.String(), 5), m.levelStyle(e.Level, styles)))
	if e.Component != "" {
		parts = append(parts, bg.Render("["+e.Component+"]", styles.AccentText))
	}
	used := lipgloss.Width(strings.Join(parts, " ")) + 1
	msg := truncate(e.Message, max(width-used, 10))
	parts = append(parts, bg.Render(msg, styles.Text))
	if e.Fields != "" {
		used += lipgloss.Width(msg) + 1
		if room := width - used; room > 8 {
			parts = append(parts, bg.Render(truncate(e.Fields, room), styles.MutedText))
		}
	}
	return strings.Join(parts, bg.Space())
}

func (m *Model) levelStyle(level logtail.Level, styles Styles) lipgloss.Style {
	switch level {
	case logtail.LevelError:
		return styles.DangerText
	case logtail.LevelWarn:
		return styles.WarningText.Bold(true)
	case logtail.LevelDebug:
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}

// handleLogsKey processes keyboard input for the Log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logViewport.GotoBottom()
			return m, readLogCmd(m.logPath)
		}
		return m, nil
	case key.Matches(msg, m.keys.CycleLevel):
		m.logs.minLevel = nextLevel(m.logs.minLevel)
		m.refreshLogContent()
		return m, nil
	case key.Matches(msg, m.keys.FilterLogs):
		return m.openInput(inputLogFilter)
	case key.Matches(msg, m.keys.Refresh):
		return m, readLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

// nextLevel cycles all → debug → info → warn → error → all.
func nextLevel(l logtail.Level) logtail.Level {
	if l >= logtail.LevelError {
		return logtail.LevelUnknown
	}
	return l + 1
}

// renderLogs renders the Log view.
func (m Model) renderLogs() string {
	title := "Log"
	if m.logs.minLevel != logtail.LevelUnknown {
		title += " ≥" + m.logs.minLevel.String()
	}
	if m.logs.filter != "" {
		title += fmt.Sprintf(" %q", truncate(m.logs.filter, 20))
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

// renderLogStatus summarizes the Log view for the status line.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	follow := "off"
	if m.logs.follow {
		follow = "on"
	}
	text := fmt.Sprintf("%d of %d lines  auto-tail %s", m.logs.shown, len(m.logs.rawLines), follow)
	if m.logPath != "" {
		text += "  " + truncateMiddle(m.logPath, 50)
	}
	return bg.Render(text, styles.FaintText)
}
