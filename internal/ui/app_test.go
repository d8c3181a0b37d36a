package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/iqama/internal/localstore"
	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/prefs"
	"github.com/five82/iqama/internal/state"
)

func newTestSession(t *testing.T, structured localstore.Tier) *state.Session {
	t.Helper()
	store := localstore.New(localstore.NewMemoryTier("local"), localstore.NewMemoryTier("cookie"), structured)
	sess := state.Open(state.Options{Store: store})
	t.Cleanup(func() { _ = sess.Close(time.Second) })
	return sess
}

func newTestModel(t *testing.T, p prefs.Prefs) (Model, *state.Session) {
	t.Helper()
	sess := newTestSession(t, localstore.NewMemoryTier("structured"))
	m := New(Options{
		Session:   sess,
		Prefs:     p,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local) },
	})
	return m, sess
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	clearAll = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func TestModel_FieldLayout(t *testing.T) {
	m, _ := newTestModel(t, prefs.Default())

	want := prayer.LocationCount*fieldsPerCard + 1
	if len(m.fields) != want {
		t.Fatalf("fields = %d, want %d", len(m.fields), want)
	}
	if m.fields[0].key != state.FieldName || m.fields[0].input.Value() != prayer.DefaultName(0) {
		t.Fatalf("first field = %q %q", m.fields[0].key, m.fields[0].input.Value())
	}
	if m.fields[1].key != string(prayer.Fajr) || m.fields[1].input.Value() != "05:30" {
		t.Fatalf("second field = %q %q", m.fields[1].key, m.fields[1].input.Value())
	}
	last := m.fields[len(m.fields)-1]
	if last.key != state.FieldSunrise || last.loc != sunriseLocSlot {
		t.Fatalf("last field = %+v", last)
	}
	if m.focus != 0 || !m.fields[0].input.Focused() {
		t.Fatalf("initial focus = %d", m.focus)
	}
}

func TestModel_TypingTimeUpdatesSession(t *testing.T) {
	m, sess := newTestModel(t, prefs.Default())

	m = press(t, m, tab, clearAll)
	if m.fields[1].valid {
		t.Fatalf("blank time should be marked invalid")
	}
	if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "05:30" {
		t.Fatalf("rejected input changed state to %q", got)
	}

	m = press(t, m, runes("0445"))
	if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "04:45" {
		t.Fatalf("Fajr = %q, want 04:45", got)
	}
	if got := m.fields[1].input.Value(); got != "0445" {
		t.Fatalf("input while editing = %q, want raw text", got)
	}

	m = press(t, m, tab)
	if got := m.fields[1].input.Value(); got != "04:45" {
		t.Fatalf("input after blur = %q, want canonical 04:45", got)
	}
	if m.focus != 2 {
		t.Fatalf("focus = %d, want 2", m.focus)
	}
}

func TestModel_RejectedTimeRestoredOnBlur(t *testing.T) {
	m, sess := newTestModel(t, prefs.Default())

	m = press(t, m, tab, clearAll, runes("25:99"))
	if m.fields[1].valid {
		t.Fatalf("25:99 should be invalid")
	}
	m = press(t, m, tab)
	if got := m.fields[1].input.Value(); got != "05:30" {
		t.Fatalf("input after blur = %q, want prior 05:30", got)
	}
	if !m.fields[1].valid {
		t.Fatalf("field should be valid again after blur")
	}
	if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "05:30" {
		t.Fatalf("Fajr = %q", got)
	}
}

func TestModel_KeypadTyping(t *testing.T) {
	m, sess := newTestModel(t, prefs.Prefs{Theme: "Dusk", KeypadTyping: true})

	m = press(t, m, tab, clearAll, runes("4"), runes("4"), runes("5"))
	if got := m.fields[1].input.Value(); got != "4:45" {
		t.Fatalf("keypad display = %q, want 4:45", got)
	}
	if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "04:45" {
		t.Fatalf("Fajr = %q, want 04:45", got)
	}
}

func TestModel_BlankNameFallsBackToDefault(t *testing.T) {
	m, sess := newTestModel(t, prefs.Default())

	m = press(t, m, clearAll, runes("Al Noor"))
	if got := sess.Snapshot().State.Masjids[0].Name; got != "Al Noor" {
		t.Fatalf("name = %q", got)
	}

	m = press(t, m, clearAll)
	if got := sess.Snapshot().State.Masjids[0].Name; got != prayer.DefaultName(0) {
		t.Fatalf("blank name = %q, want default", got)
	}
	if got := m.fields[0].input.Value(); got != "" {
		t.Fatalf("input while editing = %q, want blank", got)
	}

	m = press(t, m, tab)
	if got := m.fields[0].input.Value(); got != prayer.DefaultName(0) {
		t.Fatalf("name after blur = %q, want default", got)
	}
}

func TestModel_SunriseWrapAround(t *testing.T) {
	m, sess := newTestModel(t, prefs.Default())

	m = press(t, m, shiftTab)
	if m.focus != len(m.fields)-1 {
		t.Fatalf("shift+tab from first field focus = %d, want last", m.focus)
	}

	m = press(t, m, runes("zz"))
	if got := sess.Snapshot().State.Sunrise; got != "" {
		t.Fatalf("garbage sunrise stored %q", got)
	}

	m = press(t, m, clearAll, runes("6:05 am"))
	if got := sess.Snapshot().State.Sunrise; got != "06:05" {
		t.Fatalf("sunrise = %q, want 06:05", got)
	}

	m = press(t, m, tab)
	if m.focus != 0 {
		t.Fatalf("tab from last field focus = %d, want 0", m.focus)
	}
	if got := m.fields[len(m.fields)-1].input.Value(); got != "06:05" {
		t.Fatalf("sunrise input = %q", got)
	}
}

func TestModel_QuitCommits(t *testing.T) {
	m, _ := newTestModel(t, prefs.Default())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("esc command did not quit")
	}
	if _, ok := next.(Model); !ok {
		t.Fatalf("Update returned %T", next)
	}
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t, prefs.Default())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.theme.Name != "Dawn" {
		t.Fatalf("theme = %q, want Dawn", m.theme.Name)
	}
	saved, _ := prefs.Load(m.prefsPath)
	if saved.Theme != "Dawn" {
		t.Fatalf("saved theme = %q", saved.Theme)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	saved, _ = prefs.Load(m.prefsPath)
	if !saved.Clock12h || saved.Theme != "Dawn" {
		t.Fatalf("saved prefs = %+v", saved)
	}
}

func TestModel_HydrateReloadsInputs(t *testing.T) {
	structured := localstore.NewMemoryTier("structured")
	newer := prayer.Defaults()
	newer.Masjids[0].Prayers[prayer.Fajr] = "04:00"
	if err := structured.Set(localstore.RecordKey, prayer.Snapshot(newer)); err != nil {
		t.Fatal(err)
	}

	sess := newTestSession(t, structured)
	m := New(Options{Session: sess, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	if got := m.fields[1].input.Value(); got != "05:30" {
		t.Fatalf("before hydrate = %q", got)
	}

	next, _ := m.Update(hydrateCmd(sess)())
	m = next.(Model)
	if got := m.fields[1].input.Value(); got != "04:00" {
		t.Fatalf("after hydrate = %q, want 04:00", got)
	}
	if m.notice == "" {
		t.Fatalf("expected a notice after hydrate")
	}
}

func TestModel_CommitBeforeReloadKeepsReplacedState(t *testing.T) {
	structured := localstore.NewMemoryTier("structured")
	newer := prayer.Defaults()
	newer.Masjids[0].Prayers[prayer.Fajr] = "04:00"
	if err := structured.Set(localstore.RecordKey, prayer.Snapshot(newer)); err != nil {
		t.Fatal(err)
	}
	sess := newTestSession(t, structured)
	m := New(Options{Session: sess, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	if got := m.fields[1].input.Value(); got != "05:30" {
		t.Fatalf("before hydrate = %q", got)
	}

	// The replacement lands in the session before its message reaches Update.
	msg := hydrateCmd(sess)()

	for _, early := range []tea.Msg{commitTickMsg(time.Now()), tea.BlurMsg{}, tea.FocusMsg{}} {
		next, _ := m.Update(early)
		m = next.(Model)
		if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "04:00" {
			t.Fatalf("%T overwrote replaced Fajr with %q", early, got)
		}
	}

	next, _ := m.Update(msg)
	m = next.(Model)
	if got := m.fields[1].input.Value(); got != "04:00" {
		t.Fatalf("input after reload = %q, want 04:00", got)
	}

	m = press(t, m, tab, clearAll, runes("0410"))
	next, _ = m.Update(commitTickMsg(time.Now()))
	m = next.(Model)
	if got := sess.Snapshot().State.Masjids[0].Prayers[prayer.Fajr]; got != "04:10" {
		t.Fatalf("Fajr after reload and edit = %q, want 04:10", got)
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, prefs.Default())
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)
	out := m.View()
	for _, want := range []string{"iqama", "local only", "Masjid B1", "Maghrib", "Next", "Sunrise"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View missing %q:\n%s", want, out)
		}
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyF1})
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = press(t, m, runes("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}
