package prayer

import (
	"encoding/json"
	"strings"
)

// Name identifies one of the five daily prayers.
type Name string

const (
	Fajr    Name = "Fajr"
	Dhuhr   Name = "Dhuhr"
	Asr     Name = "Asr"
	Maghrib Name = "Maghrib"
	Isha    Name = "Isha"
)

// Names lists the prayers in canonical order. Iteration order matters for
// tie-breaking in NextPrayer and for rendering.
var Names = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// ParseName reports whether s is one of the canonical prayer names.
// Matching is exact; "fajr" is not a prayer name.
func ParseName(s string) (Name, bool) {
	for _, n := range Names {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// Location is one masjid and its configured prayer times.
type Location struct {
	Name    string          `json:"name"`
	Prayers map[Name]string `json:"prayers"`
}

// AppState is the canonical dataset: a fixed number of locations plus an
// optional shared sunrise time ("" when absent).
type AppState struct {
	Masjids []Location `json:"masjids"`
	Sunrise string     `json:"sunrise,omitempty"`
}

// Clone returns a deep copy so callers can hand state across goroutines.
func (s AppState) Clone() AppState {
	out := AppState{Sunrise: s.Sunrise}
	if s.Masjids != nil {
		out.Masjids = make([]Location, len(s.Masjids))
		for i, loc := range s.Masjids {
			out.Masjids[i] = loc.clone()
		}
	}
	return out
}

// Equal compares two states by their canonical serialization.
func (s AppState) Equal(other AppState) bool {
	return Snapshot(s) == Snapshot(other)
}

func (l Location) clone() Location {
	out := Location{Name: l.Name}
	if l.Prayers != nil {
		out.Prayers = make(map[Name]string, len(l.Prayers))
		for k, v := range l.Prayers {
			out.Prayers[k] = v
		}
	}
	return out
}

// Encode serializes state in the persisted payload shape. Map keys are emitted
// in sorted order, so equal states always encode to identical bytes.
func Encode(s AppState) []byte {
	data, err := json.Marshal(s)
	if err != nil {
		// AppState holds only strings; Marshal cannot fail on it.
		return []byte("{}")
	}
	return data
}

// Snapshot is Encode as a string, used for dedupe and equality checks.
func Snapshot(s AppState) string {
	return string(Encode(s))
}

// Decode parses a persisted payload from any tier and normalizes it. Invalid
// JSON yields the defaults. A JSON string whose content is itself a payload is
// unwrapped once.
func Decode(raw []byte) AppState {
	var candidate any
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return Defaults()
	}
	if text, ok := candidate.(string); ok {
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var inner any
			if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
				candidate = inner
			}
		}
	}
	return Normalize(candidate)
}
