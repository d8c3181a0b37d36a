package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the resolved colors for one palette.
type Theme struct {
	Name string

	Background string
	Surface    string // header bar
	FocusBg    string // focused input

	Border      string
	BorderFocus string // card holding the focused field

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Keyed by syncer.State.String().
	StatusColors map[string]string
}

// palette is the minimal set of colors a theme is derived from.
type palette struct {
	bg, surface, raised, line string
	fg, dim, faint            string
	accent, green, gold, red  string
	cyan, violet              string
}

func (p palette) theme(name string) Theme {
	return Theme{
		Name:        name,
		Background:  p.bg,
		Surface:     p.surface,
		FocusBg:     p.raised,
		Border:      p.line,
		BorderFocus: p.accent,
		Text:        p.fg,
		Muted:       p.dim,
		Faint:       p.faint,
		Accent:      p.accent,
		Success:     p.green,
		Warning:     p.gold,
		Danger:      p.red,
		Info:        p.cyan,

		StatusColors: map[string]string{
			"idle":        p.faint,
			"pending":     p.gold,
			"syncing":     p.cyan,
			"synced":      p.green,
			"unavailable": p.red,
			"local only":  p.violet,
		},
	}
}

var themeOrder = []string{"Night", "Dawn", "Dusk"}

var themes = map[string]Theme{
	"Night": palette{
		bg: "#0b1020", surface: "#141a2e", raised: "#26304d", line: "#33406a",
		fg: "#d8dcec", dim: "#8a93b2", faint: "#5d6787",
		accent: "#7aa2f7", green: "#7fc8a9", gold: "#e0c080", red: "#e06c75",
		cyan: "#6cc5d6", violet: "#a98be0",
	}.theme("Night"),
	"Dawn": palette{
		bg: "#1b1726", surface: "#251f35", raised: "#3a3050", line: "#4c4166",
		fg: "#f1e6dc", dim: "#b7a6b5", faint: "#7c6f86",
		accent: "#f2a27a", green: "#9bc995", gold: "#f4cf7a", red: "#e5707e",
		cyan: "#86c3d0", violet: "#c29be0",
	}.theme("Dawn"),
	"Dusk": palette{
		bg: "#1a1210", surface: "#261a16", raised: "#3d2a22", line: "#57392c",
		fg: "#efdfcf", dim: "#b39a86", faint: "#7d6759",
		accent: "#e88b4a", green: "#a3c279", gold: "#e8b659", red: "#d9584f",
		cyan: "#79b8b0", violet: "#b48ab8",
	}.theme("Dusk"),
}

// GetTheme returns a theme by name, falling back to Night.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// Styles contains the lipgloss styles built from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header       lipgloss.Style
	Footer       lipgloss.Style
	Logo         lipgloss.Style
	Card         lipgloss.Style
	FocusedCard  lipgloss.Style
	FocusedInput lipgloss.Style

	theme Theme
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func card(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1)
}

// Styles builds the lipgloss styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Header: fg(t.Text).Background(lipgloss.Color(t.Surface)).Padding(0, 1),
		Footer: fg(t.Muted).Padding(0, 1),
		Logo:   fg(t.Warning).Bold(true),

		Card:         card(t.Border),
		FocusedCard:  card(t.BorderFocus),
		FocusedInput: fg(t.Text).Background(lipgloss.Color(t.FocusBg)),

		theme: t,
	}
}

// StatusStyle returns the badge style for a sync status label.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color, ok := s.theme.StatusColors[status]
	if !ok {
		color = s.theme.Muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}
