package prayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	strictPattern   = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	meridiemPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s?(am|pm)$`)
	secondsPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)
)

// ParseTimeValue converts user input into canonical 24-hour "HH:MM".
//
// Accepted forms, in order: strict "HH:MM"; "H:MM AM" / "HH:MM pm" (optional
// space, any case); "HH:MM:SS" with the seconds dropped; and bare digit runs of
// length 3 or 4 ("530" -> "05:30", "1745" -> "17:45") after stripping every
// non-digit. The second result is false for anything else, including
// out-of-range hours or minutes. Callers keep their prior value on false.
func ParseTimeValue(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if strictPattern.MatchString(trimmed) {
		return trimmed, true
	}

	if m := meridiemPattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 {
			return "", false
		}
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case hour == 12 && !pm:
			hour = 0
		case hour != 12 && pm:
			hour += 12
		}
		return clock(hour, minute)
	}

	if m := secondsPattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second, _ := strconv.Atoi(m[3])
		if second > 59 {
			return "", false
		}
		return clock(hour, minute)
	}

	digits := digitsOnly(trimmed, 4)
	var candidate string
	switch len(digits) {
	case 3:
		candidate = "0" + digits[:1] + ":" + digits[1:]
	case 4:
		candidate = digits[:2] + ":" + digits[2:]
	default:
		return "", false
	}
	if !strictPattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// FormatTimeForTyping shapes in-progress keypad input: non-digits are dropped,
// at most four digits are kept and a colon is inserted once a third digit
// arrives. It is a display aid only and never feeds storage directly.
func FormatTimeForTyping(raw string) string {
	digits := digitsOnly(raw, 4)
	switch len(digits) {
	case 0, 1, 2:
		return digits
	case 3:
		return digits[:1] + ":" + digits[1:]
	default:
		return digits[:2] + ":" + digits[2:]
	}
}

// ToMinutes returns minutes since midnight for a canonical "HH:MM" value.
func ToMinutes(hhmm string) (int, bool) {
	m := strictPattern.FindStringSubmatch(strings.TrimSpace(hhmm))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute, true
}

// Format12h renders a canonical time as "1:05 PM". Non-canonical input is
// returned unchanged.
func Format12h(hhmm string) string {
	total, ok := ToMinutes(hhmm)
	if !ok {
		return hhmm
	}
	hour, minute := total/60, total%60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, suffix)
}

func clock(hour, minute int) (string, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func digitsOnly(s string, limit int) string {
	var b strings.Builder
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == limit {
			break
		}
	}
	return b.String()
}
