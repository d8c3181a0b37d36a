package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Navigation", "Sync", "Display", "General"}

const helpKeyWidth = 12

// renderHelp draws the key map as two columns of sections in a centered
// box, followed by a hint on accepted time formats.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(helpKeyWidth)

	section := func(title string, bindings []key.Binding) string {
		lines := []string{styles.AccentText.Bold(true).Render(title)}
		for _, b := range bindings {
			h := b.Help()
			lines = append(lines, keyStyle.Render(h.Key)+styles.Text.Render(h.Desc))
		}
		return strings.Join(lines, "\n")
	}

	var left, right []string
	for i, group := range m.keys.FullHelp() {
		title := ""
		if i < len(helpSectionTitles) {
			title = helpSectionTitles[i]
		}
		if i%2 == 0 {
			left = append(left, section(title, group))
		} else {
			right = append(right, section(title, group))
		}
	}
	column := lipgloss.NewStyle().Width(30).PaddingRight(2)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		column.Render(strings.Join(left, "\n\n")),
		column.Render(strings.Join(right, "\n\n")),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render("Keyboard Shortcuts"),
		styles.FaintText.Render(strings.Repeat("─", 30)),
		"",
		body,
		"",
		styles.FaintText.Render("Times accept 05:30, 5:30 am, 530 or 17h45."),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		box.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
