package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSectionTitles names the groups returned by keyMap.FullHelp.
var helpSectionTitles = []string{
	"Views",
	"Navigation",
	"Catalog",
	"Pages",
	"Log",
	"General",
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 76)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(10)

	groups := m.keys.FullHelp()
	half := (len(groups) + 1) / 2
	columns := make([]string, 0, 2)
	for start := 0; start < len(groups); start += half {
		end := min(start+half, len(groups))
		var col strings.Builder
		for i := start; i < end; i++ {
			title := "More"
			if i < len(helpSectionTitles) {
				title = helpSectionTitles[i]
			}
			col.WriteString(styles.AccentText.Bold(true).Render(title))
			col.WriteString("\n")
			for _, line := range helpLines(groups[i]) {
				col.WriteString(keyStyle.Render(line.key))
				col.WriteString(styles.Text.Render(line.desc))
				col.WriteString("\n")
			}
			if i < end-1 {
				col.WriteString("\n")
			}
		}
		columns = append(columns, lipgloss.NewStyle().Width(38).Render(col.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Click a page number to jump to it"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(84)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpItem struct {
	key  string
	desc string
}

// helpLines returns the enabled bindings of a group.
func helpLines(bindings []key.Binding) []helpItem {
	items := make([]helpItem, 0, len(bindings))
	for _, kb := range bindings {
		if !kb.Enabled() {
			continue
		}
		h := kb.Help()
		items = append(items, helpItem{key: h.Key, desc: h.Desc})
	}
	return items
}
