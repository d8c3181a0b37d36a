// Package logtail reads and formats the iqama log file for `iqama logs`.
//
// # Reading Log Files
//
// Read seeks to the end of the file and reads backwards in fixed chunks until
// it has the last maxLines lines, so a long-lived log is never read in full.
// Lines come back in chronological order. A non-positive maxLines returns the
// whole file.
//
//	lines, err := logtail.Read(cfg.LogFile, 200)
//
// Read returns nil, nil for a missing file. Other errors are wrapped.
//
// # Formatting
//
// The editor writes zerolog JSON lines. FormatLine turns each one into a
// compact console line:
//
//	10:11:12 WRN remote push failed error=remote returned status 401
//
// The time is shortened to the local clock, the level abbreviated, and the
// remaining fields appended in key order. Lines that are not JSON (a panic
// trace, for instance) pass through unchanged. Colors come from a Palette of
// lipgloss styles; the zero Palette renders plain text, which is what the
// tests and non-terminal output use.
package logtail
