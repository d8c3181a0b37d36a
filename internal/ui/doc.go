// Package ui provides the terminal form editor for iqama.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds one textinput per editable
// value: for each masjid a name and the five prayer times, followed by the
// shared sunrise time. All data lives in a state.Session; the model only
// keeps what the user is typing and a Snapshot for rendering.
//
// # Package Structure
//
//   - app.go: Model, Update loop, lifecycle messages and the Run function
//   - form.go: field layout, focus movement and canonical values
//   - view.go: header, masjid cards, footer, and RenderSummary for `iqama show`
//   - keys.go, help.go: key bindings and the help overlay
//   - theme.go: the Night, Dawn and Dusk palettes, with badge colors per
//     sync state
//
// # Field Contract
//
// Every keystroke that changes an input is handed to Session.OnFieldChange.
// Accepted values are saved locally and scheduled for sync at once; rejected
// text stays on screen in the danger color while the previous value is kept.
// Leaving a field replaces its text with the canonical value: "530" becomes
// "05:30", a blank name becomes the default name.
//
// With keypad typing enabled, time inputs are reshaped as digits arrive
// ("445" shows as "4:45").
//
// # Lifecycle
//
//	Init          hydrate from the structured tier, then bootstrap remote
//	every 1s      refresh the sync badge
//	every 5s      commit all inputs
//	every 30s     recompute next prayers
//	focus lost    commit all inputs, push now
//	focus gained  commit all inputs, retry pending push
//	esc / ctrl+c  commit all inputs, quit
//
// Run returns the final Model so the caller can commit once more and close the
// session with a bounded final push.
//
// # Key Bindings
//
//   - tab, down, enter: Next field
//   - shift+tab, up: Previous field
//   - ctrl+s: Sync now
//   - ctrl+k: Toggle keypad typing
//   - ctrl+l: Toggle 12/24h clock
//   - ctrl+t: Cycle theme
//   - f1: Help
//   - esc or ctrl+c: Save and quit
package ui
