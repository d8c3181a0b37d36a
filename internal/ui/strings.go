package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/iqama/internal/prayer"
)

// oneLine collapses whitespace runs (newlines included) and shortens the
// result to limit runes with a trailing ellipsis. Error strings from the
// HTTP client go through here before landing in the header.
func oneLine(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// humanizeSince renders how long ago t was, for the sync header.
func humanizeSince(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// displayTime renders a stored HH:MM value, in 12-hour form when clock12h
// is set.
func displayTime(hhmm string, clock12h bool) string {
	if hhmm == "" {
		return "--:--"
	}
	if clock12h {
		return prayer.Format12h(hhmm)
	}
	return hhmm
}
