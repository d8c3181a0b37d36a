// Package prayer holds the iqama data model and the pure functions around it.
//
// # Overview
//
// An AppState is a fixed list of LocationCount masjids, each carrying the five
// canonical prayers (Fajr, Dhuhr, Asr, Maghrib, Isha) as 24-hour "HH:MM"
// strings, plus an optional shared sunrise time.
//
// Nothing in this package performs I/O. Storage tiers, the remote client and
// the UI all funnel untrusted data through Decode or Normalize and get back a
// state that satisfies the invariants:
//
//   - exactly LocationCount locations, matched to the seed dataset by position
//   - every prayer present and valid; invalid values fall back to the seed
//     value for the same (slot, prayer)
//   - names trimmed and never blank
//
// # Payload shapes
//
// Two persisted shapes are accepted for backward compatibility:
//
//	[{"name": "...", "prayers": {"Fajr": "05:30", ...}}, ...]
//	{"masjids": [...], "sunrise": "06:10"}
//
// "data" is accepted in place of "masjids" and "sunriseTime" in place of
// "sunrise". Encode always writes the object form.
//
// # Time input
//
// ParseTimeValue accepts strict "HH:MM", 12-hour input with an AM/PM suffix,
// "HH:MM:SS", and 3–4 digit runs typed on a numeric keypad. It is total: bad
// input returns false and never panics.
//
// Locations have no stable identifier, so positional matching is the only
// merge rule. Reordering locations independently on two devices swaps their
// identities.
package prayer
