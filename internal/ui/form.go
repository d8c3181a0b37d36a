package ui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/state"
)

const (
	nameWidth      = 22
	timeWidth      = 8
	nameCharLimit  = 40
	timeCharLimit  = 10
	fieldsPerCard  = 1 + 5 // name + prayers
	sunriseLocSlot = -1
)

// field binds one text input to a location and key in the dataset.
type field struct {
	loc   int
	key   string
	input textinput.Model
	// valid is false while the input holds text the session rejected.
	valid bool
}

func (f field) isTime() bool {
	return f.key != state.FieldName
}

// buildFields lays out the inputs in tab order: each card's name and prayers,
// then the shared sunrise.
func buildFields(app prayer.AppState) []field {
	fields := make([]field, 0, len(app.Masjids)*fieldsPerCard+1)
	for i := range app.Masjids {
		fields = append(fields, newField(i, state.FieldName))
		for _, name := range prayer.Names {
			fields = append(fields, newField(i, string(name)))
		}
	}
	fields = append(fields, newField(sunriseLocSlot, state.FieldSunrise))
	for i := range fields {
		fields[i].input.SetValue(canonicalValue(app, fields[i].loc, fields[i].key))
	}
	return fields
}

func newField(loc int, key string) field {
	ti := textinput.New()
	ti.Prompt = ""
	if key == state.FieldName {
		ti.CharLimit = nameCharLimit
		ti.Width = nameWidth
		ti.Placeholder = prayer.DefaultName(loc)
	} else {
		ti.CharLimit = timeCharLimit
		ti.Width = timeWidth
		ti.Placeholder = "HH:MM"
	}
	return field{loc: loc, key: key, input: ti, valid: true}
}

// canonicalValue is what a field shows when it is not being edited.
func canonicalValue(app prayer.AppState, loc int, key string) string {
	if key == state.FieldSunrise {
		return app.Sunrise
	}
	if loc < 0 || loc >= len(app.Masjids) {
		return ""
	}
	if key == state.FieldName {
		return app.Masjids[loc].Name
	}
	return app.Masjids[loc].Prayers[prayer.Name(key)]
}

// sessionFields collects every on-screen value for CommitFields.
func (m Model) sessionFields() []state.Field {
	out := make([]state.Field, len(m.fields))
	for i, f := range m.fields {
		out[i] = state.Field{Loc: f.loc, Key: f.key, Raw: f.input.Value()}
	}
	return out
}

// reload resets every input to the session's canonical values.
func (m *Model) reload() {
	app := m.snap.State
	for i := range m.fields {
		f := &m.fields[i]
		f.input.SetValue(canonicalValue(app, f.loc, f.key))
		f.input.CursorEnd()
		f.valid = true
	}
	m.rev = m.snap.Revision
}

// setFocus moves focus to idx, re-displaying the canonical value of the field
// being left.
func (m *Model) setFocus(idx int) {
	if len(m.fields) == 0 {
		return
	}
	idx = (idx%len(m.fields) + len(m.fields)) % len(m.fields)

	prev := &m.fields[m.focus]
	prev.input.Blur()
	prev.input.SetValue(canonicalValue(m.snap.State, prev.loc, prev.key))
	prev.valid = true

	m.focus = idx
	next := &m.fields[idx]
	next.input.Focus()
	next.input.CursorEnd()
}

// cardOf returns the location the focused field belongs to, or
// sunriseLocSlot.
func (m Model) cardOf(idx int) int {
	if idx < 0 || idx >= len(m.fields) {
		return sunriseLocSlot
	}
	return m.fields[idx].loc
}
