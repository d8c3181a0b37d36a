// Package syncer coalesces local edits into debounced remote pushes.
//
// The Coordinator holds a single pending snapshot and a single in-flight flag.
// Schedule overwrites the pending snapshot and re-arms a debounce timer; when
// it fires the newest snapshot is pushed. A failed push leaves the snapshot
// pending (unless a newer edit replaced it) and moves to Unavailable until
// the next Tick or Flush succeeds. Nothing here retries on its own in a loop;
// the caller's periodic tick is the retry schedule.
//
//	Schedule ──► Pending ──(debounce)──► InFlight ──ok──► Synced
//	                ▲                       │
//	                └──── newer edit ◄──────┤
//	                                        └─fail─► Unavailable
package syncer
