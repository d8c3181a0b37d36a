package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/five82/iqama/internal/prayer"
	"github.com/five82/iqama/internal/prefs"
	"github.com/five82/iqama/internal/state"
)

const (
	defaultCommitTick = 5 * time.Second
	statusTick        = time.Second
	clockTick         = 30 * time.Second
	bootstrapTimeout  = 10 * time.Second
	flushTimeout      = 5 * time.Second
)

// Options configures the UI. Session is required.
type Options struct {
	Context   context.Context
	Session   *state.Session
	Prefs     prefs.Prefs
	PrefsPath string
	// CommitTick is how often every on-screen value is re-committed.
	CommitTick time.Duration
	// Now overrides the wall clock for next-prayer calculation.
	Now func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	session    *state.Session
	prefs      prefs.Prefs
	prefsPath  string
	commitTick time.Duration
	now        func() time.Time

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Data state
	snap   state.Snapshot
	rev    uint64 // session revision the inputs were loaded from
	next   []prayer.Next
	clock  time.Time
	fields []field
	focus  int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	commitTick := opts.CommitTick
	if commitTick <= 0 {
		commitTick = defaultCommitTick
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:        ctx,
		session:    opts.Session,
		prefs:      opts.Prefs,
		prefsPath:  prefsPath,
		commitTick: commitTick,
		now:        now,
		theme:      GetTheme(opts.Prefs.Theme),
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}
	m.refresh()
	m.clock = now()
	m.next = m.session.NextPrayers(m.clock)
	m.fields = buildFields(m.snap.State)
	m.rev = m.snap.Revision
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
		m.fields[0].input.CursorEnd()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		statusTickCmd(),
		commitTickCmd(m.commitTick),
		clockTickCmd(),
		tea.Sequence(hydrateCmd(m.session), bootstrapCmd(m.ctx, m.session)),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tea.BlurMsg:
		// Terminal lost focus: persist and push now.
		m.Commit()
		return m, flushCmd(m.ctx, m.session)

	case tea.FocusMsg:
		m.Commit()
		m.session.Retry()
		return m, nil

	case statusTickMsg:
		m.refresh()
		return m, statusTickCmd()

	case commitTickMsg:
		m.Commit()
		return m, commitTickCmd(m.commitTick)

	case clockTickMsg:
		m.clock = m.now()
		m.next = m.session.NextPrayers(m.clock)
		return m, clockTickCmd()

	case hydratedMsg:
		if msg.changed {
			m.refresh()
			m.reload()
			m.notice = "Loaded newer local copy"
		}
		return m, nil

	case bootstrapMsg:
		m.refresh()
		switch {
		case msg.err != nil:
			m.notice = "Remote unavailable; working offline"
		case msg.replaced:
			m.reload()
			m.notice = "Loaded shared times"
		}
		return m, nil

	case syncDoneMsg:
		m.refresh()
		switch {
		case errors.Is(msg.err, context.Canceled):
		case msg.err != nil:
			m.notice = "Sync failed: " + msg.err.Error()
		case m.snap.Remote:
			m.notice = "Synced"
		}
		return m, nil
	}

	// Cursor blink and anything else the focused input understands.
	var cmd tea.Cmd
	if len(m.fields) > 0 {
		f := &m.fields[m.focus]
		f.input, cmd = f.input.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Commit re-derives the dataset from every on-screen value. It is called on
// the periodic tick, on focus changes and before exit. Values loaded before
// the session state was replaced are dropped until the inputs are reloaded.
func (m Model) Commit() {
	m.session.CommitFields(m.rev, m.sessionFields())
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Commit()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.refresh()
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.refresh()
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.SyncNow):
		m.Commit()
		m.notice = ""
		return m, flushCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleKeypad):
		m.prefs.KeypadTyping = !m.prefs.KeypadTyping
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleClock):
		m.prefs.Clock12h = !m.prefs.Clock12h
		m.savePrefs()
		return m, nil
	}

	return m.handleInputKey(msg)
}

// handleInputKey forwards a keystroke to the focused field and applies the
// resulting text to the session.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}

	f := &m.fields[m.focus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	after := f.input.Value()
	if after == before {
		return m, cmd
	}

	if m.prefs.KeypadTyping && f.isTime() {
		if formatted := prayer.FormatTimeForTyping(after); formatted != after {
			f.input.SetValue(formatted)
			f.input.CursorEnd()
			after = formatted
		}
	}

	_, ok := m.session.OnFieldChange(f.loc, f.key, after)
	f.valid = ok
	m.notice = ""
	m.refresh()
	m.next = m.session.NextPrayers(m.clock)
	return m, cmd
}

func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		log.Warn().Err(err).Msg("save prefs failed")
	}
}

// Messages

type statusTickMsg time.Time

type commitTickMsg time.Time

type clockTickMsg time.Time

type hydratedMsg struct {
	changed bool
}

type bootstrapMsg struct {
	replaced bool
	err      error
}

type syncDoneMsg struct {
	err error
}

// Commands

func statusTickCmd() tea.Cmd {
	return tea.Tick(statusTick, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func commitTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return commitTickMsg(t)
	})
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(clockTick, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func hydrateCmd(s *state.Session) tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg{changed: s.Hydrate()}
	}
}

func bootstrapCmd(ctx context.Context, s *state.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()
		replaced, err := s.Bootstrap(ctx)
		return bootstrapMsg{replaced: replaced, err: err}
	}
}

func flushCmd(ctx context.Context, s *state.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, flushTimeout)
		defer cancel()
		return syncDoneMsg{err: s.FlushNow(ctx)}
	}
}

// Run starts the Bubble Tea program and returns the final model so the caller
// can commit what was on screen when the program stopped.
func Run(opts Options) (Model, error) {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return m, err
}
