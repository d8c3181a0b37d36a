// Package state provides the thread-safe application session for iqama.
//
// # Overview
//
// A Session is constructed once per process. It owns the in-memory dataset
// and is the only place where the dataset changes. The UI, the periodic
// poller and the headless commands all go through it:
//
//	UI keystroke / tick:           Session:                     Side effects:
//	┌──────────────────┐          ┌──────────────────┐         ┌─────────────────┐
//	│ OnFieldChange()  │─────────→│ parse / validate │────────→│ localstore.Save │
//	│ CommitFields()   │ (mutex)  │ update AppState  │         │ syncer.Schedule │
//	└──────────────────┘          └──────────────────┘         └─────────────────┘
//	                                       ↑
//	startup: Hydrate(), Bootstrap() ───────┘
//
// # Update Semantics
//
// OnFieldChange never rejects loudly. Bad time input keeps the prior value
// and reports false so the UI can show the canonical value on blur. Names
// are trimmed; a blank name becomes the slot's default name. A blank sunrise
// clears it.
//
// Local writes always happen before the corresponding push is scheduled, and
// only when the value actually changed.
//
// # Startup
//
// Two catch-up steps run after the first render:
//
//   - Hydrate reads the structured local tier and replaces state if it
//     differs (another process wrote more recently).
//   - Bootstrap fetches the remote record. A row replaces local state
//     unconditionally; a missing row is seeded from local state; a failure
//     leaves local state alone and marks sync unavailable. No push starts
//     while the fetch is outstanding.
//
// # Snapshots
//
// Snapshot returns deep copies so renderers can hold them across goroutines
// without locking. Its Revision changes when either startup step replaces
// state; CommitFields ignores values read under an older revision.
//
// # Teardown
//
// Close saves locally, waits out any in-flight push, then makes one push
// attempt bounded by its own timeout so a cancelled app context cannot cut
// it short.
package state
