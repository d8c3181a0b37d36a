package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/state"
	"github.com/five82/iqama/internal/syncer"
)

const labelWidth = 9

// renderMain renders the header, the masjid cards, sunrise and the footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderCards())
	b.WriteString("\n")
	b.WriteString(m.renderSunrise())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader shows the title, the sync badge and the latest notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	status := m.snap.Sync

	parts := []string{
		styles.Logo.Render("iqama"),
		styles.StatusStyle(status.State.String()).Render(status.State.String()),
	}

	switch status.State {
	case syncer.Synced, syncer.Pending, syncer.InFlight:
		parts = append(parts, styles.MutedText.Render("last sync "+humanizeSince(status.LastSyncedAt, m.clock)))
	case syncer.Unavailable:
		if status.LastError != nil {
			parts = append(parts, styles.DangerText.Render(oneLine(status.LastError.Error(), 60)))
		}
	}

	if m.prefs.KeypadTyping {
		parts = append(parts, styles.FaintText.Render("keypad"))
	}
	if m.notice != "" {
		parts = append(parts, styles.AccentText.Render(m.notice))
	}
	return styles.Header.Render(strings.Join(parts, "  "))
}

// renderCards lays the masjid cards side by side when the terminal is wide
// enough, stacked otherwise.
func (m Model) renderCards() string {
	cards := make([]string, 0, len(m.snap.State.Masjids))
	for i := range m.snap.State.Masjids {
		cards = append(cards, m.renderCard(i))
	}
	if len(cards) == 0 {
		return ""
	}

	if lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Top, cards...)) <= m.width {
		return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderCard(loc int) string {
	styles := m.theme.Styles()
	focused := m.cardOf(m.focus) == loc

	var rows []string
	for i, f := range m.fields {
		if f.loc != loc {
			continue
		}
		if f.key == state.FieldName {
			rows = append(rows, m.renderInput(i, styles.AccentText.Bold(true)))
			rows = append(rows, "")
			continue
		}
		label := styles.MutedText.Render(padRight(f.key, labelWidth))
		rows = append(rows, label+m.renderInput(i, styles.Text))
	}

	rows = append(rows, "", m.renderNext(loc))

	box := styles.Card
	if focused {
		box = styles.FocusedCard
	}
	return box.Render(strings.Join(rows, "\n"))
}

// renderInput draws field idx. Rejected text is shown in the danger color
// until the field is left.
func (m Model) renderInput(idx int, base lipgloss.Style) string {
	f := m.fields[idx]
	styles := m.theme.Styles()
	if idx == m.focus {
		return styles.FocusedInput.Render(f.input.View())
	}
	if !f.valid {
		return styles.DangerText.Render(f.input.Value())
	}
	value := f.input.Value()
	if value == "" {
		return styles.FaintText.Render(f.input.Placeholder)
	}
	if f.isTime() && m.prefs.Clock12h {
		value = displayTime(value, true)
	}
	return base.Render(value)
}

func (m Model) renderNext(loc int) string {
	styles := m.theme.Styles()
	if loc >= len(m.next) || m.next[loc].Name == "" {
		return styles.FaintText.Render("No valid times")
	}
	n := m.next[loc]
	return fmt.Sprintf("%s %s %s %s",
		styles.MutedText.Render("Next"),
		styles.SuccessText.Render(string(n.Name)),
		styles.Text.Render(displayTime(n.Time, m.prefs.Clock12h)),
		styles.WarningText.Render("in "+n.Remaining()),
	)
}

func (m Model) renderSunrise() string {
	styles := m.theme.Styles()
	for i, f := range m.fields {
		if f.loc == sunriseLocSlot {
			label := styles.MutedText.Render(padRight("Sunrise", labelWidth))
			return " " + label + m.renderInput(i, styles.Text)
		}
	}
	return ""
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	return styles.Footer.Render(m.help.View(m.keys))
}

// RenderSummary renders a read-only table of the dataset and each masjid's
// next prayer, for non-interactive output.
func RenderSummary(app prayer.AppState, next []prayer.Next, clock12h bool) string {
	styles := GetTheme("").Styles()

	headers := []string{""}
	for _, loc := range app.Masjids {
		headers = append(headers, loc.Name)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.FaintText).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(styles.AccentText).Bold(true)
			case col == 0:
				return cell.Inherit(styles.MutedText)
			default:
				return cell
			}
		})

	for _, name := range prayer.Names {
		cells := []string{string(name)}
		for _, loc := range app.Masjids {
			cells = append(cells, displayTime(loc.Prayers[name], clock12h))
		}
		t.Row(cells...)
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	if app.Sunrise != "" {
		fmt.Fprintf(&b, "Sunrise %s\n", displayTime(app.Sunrise, clock12h))
	}
	for i, loc := range app.Masjids {
		if i >= len(next) || next[i].Name == "" {
			continue
		}
		n := next[i]
		fmt.Fprintf(&b, "%s: next %s at %s (in %s)\n",
			loc.Name, n.Name, displayTime(n.Time, clock12h), n.Remaining())
	}
	return b.String()
}
