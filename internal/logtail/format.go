package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Palette colors the parts of a formatted line. The zero value renders
// plain text.
type Palette struct {
	Time    lipgloss.Style
	Message lipgloss.Style
	Field   lipgloss.Style
	Levels  map[string]lipgloss.Style
}

// DefaultPalette is used by `iqama logs` on a color terminal.
func DefaultPalette() Palette {
	return Palette{
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		Message: lipgloss.NewStyle(),
		Field:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF")),
		Levels: map[string]lipgloss.Style{
			"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
			"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
			"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
			"error": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		},
	}
}

var levelAbbrev = map[string]string{
	"trace": "TRC",
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
}

// FormatLine renders one JSON log line as
// "15:04:05 INF message key=value ...". Lines that are not JSON objects are
// returned unchanged.
func FormatLine(line string, p Palette) string {
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line
	}

	var b strings.Builder
	if ts, ok := entry["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			ts = parsed.Local().Format("15:04:05")
		}
		b.WriteString(p.Time.Render(ts))
		b.WriteByte(' ')
	}

	level, _ := entry["level"].(string)
	abbrev := levelAbbrev[level]
	if abbrev == "" {
		abbrev = "???"
	}
	if style, ok := p.Levels[level]; ok {
		abbrev = style.Render(abbrev)
	}
	b.WriteString(abbrev)

	if msg, ok := entry["message"].(string); ok && msg != "" {
		b.WriteByte(' ')
		b.WriteString(p.Message.Render(msg))
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "time", "level", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(p.Field.Render(k + "="))
		b.WriteString(fmt.Sprint(entry[k]))
	}
	return b.String()
}

// FormatLines applies FormatLine to every line.
func FormatLines(lines []string, p Palette) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = FormatLine(line, p)
	}
	return out
}
