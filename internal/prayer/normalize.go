package prayer

import (
	"encoding/json"
	"strings"
)

// Normalize reconciles an untrusted decoded payload against the defaults.
//
// The payload shape is detected first: a bare list of locations (legacy) or an
// object carrying the list under "masjids" or "data" and the sunrise under
// "sunrise" or "sunriseTime". Locations are then matched to defaults by
// position only. Every missing or invalid piece takes the default for the same
// slot, so the result always has LocationCount locations with all five prayers
// set to valid "HH:MM" values.
func Normalize(candidate any) AppState {
	list, sunrise := detectShape(candidate)

	out := AppState{Masjids: make([]Location, LocationCount)}
	for i := 0; i < LocationCount; i++ {
		var saved map[string]any
		if i < len(list) {
			saved, _ = list[i].(map[string]any)
		}
		out.Masjids[i] = normalizeLocation(i, saved)
	}

	if text, ok := sunrise.(string); ok {
		if parsed, ok := ParseTimeValue(text); ok {
			out.Sunrise = parsed
		}
	}
	return out
}

func detectShape(candidate any) ([]any, any) {
	switch v := candidate.(type) {
	case []any:
		return v, nil
	case map[string]any:
		list, ok := v["masjids"].([]any)
		if !ok {
			list, _ = v["data"].([]any)
		}
		sunrise := v["sunrise"]
		if _, ok := sunrise.(string); !ok {
			sunrise = v["sunriseTime"]
		}
		return list, sunrise
	case AppState, *AppState, []Location:
		// Typed values go through the wire form so they get the same checks.
		data, err := json.Marshal(v)
		if err != nil {
			return nil, nil
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, nil
		}
		return detectShape(generic)
	}
	return nil, nil
}

func normalizeLocation(i int, saved map[string]any) Location {
	loc := Location{
		Name:    DefaultName(i),
		Prayers: make(map[Name]string, len(Names)),
	}
	if name, ok := saved["name"].(string); ok {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			loc.Name = trimmed
		}
	}

	prayers, _ := saved["prayers"].(map[string]any)
	for _, p := range Names {
		loc.Prayers[p] = DefaultTime(i, p)
		if text, ok := prayers[string(p)].(string); ok {
			if parsed, ok := ParseTimeValue(text); ok {
				loc.Prayers[p] = parsed
			}
		}
	}
	return loc
}
