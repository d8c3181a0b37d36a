// Package localstore persists the iqama dataset across restarts.
//
// Three independent tiers hold the same serialized payload:
//
//  1. FileTier, a synchronous JSON key-value file (local.json)
//  2. CookieTier, Set-Cookie lines with a 365-day lifetime (cookies.txt)
//  3. SQLiteTier, a kv table in mpt-storage.db
//
// Reads try tier 1, then tier 2. Tier 3 is only read by Hydrate, which the UI
// runs once after the first render to catch up with writes from another
// process. Writes go to every tier; tiers 1 and 2 are skipped when nothing
// changed since the last save, tier 3 is written asynchronously every time.
//
// No tier failure is ever returned to the caller. A broken tier is skipped and
// the dataset falls back to the next tier, then to the defaults.
package localstore
