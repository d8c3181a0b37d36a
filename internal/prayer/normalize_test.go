package prayer

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func assertWellFormed(t *testing.T, s AppState) {
	t.Helper()
	if len(s.Masjids) != LocationCount {
		t.Fatalf("len(Masjids) = %d, want %d", len(s.Masjids), LocationCount)
	}
	for i, loc := range s.Masjids {
		if loc.Name == "" {
			t.Fatalf("masjid %d has empty name", i)
		}
		if len(loc.Prayers) != len(Names) {
			t.Fatalf("masjid %d has %d prayers, want %d", i, len(loc.Prayers), len(Names))
		}
		for _, p := range Names {
			if _, ok := ToMinutes(loc.Prayers[p]); !ok {
				t.Fatalf("masjid %d %s = %q, want HH:MM", i, p, loc.Prayers[p])
			}
		}
	}
}

func TestNormalize_MalformedCandidates(t *testing.T) {
	candidates := map[string]any{
		"nil":             nil,
		"number":          42.0,
		"string":          "hello",
		"empty list":      []any{},
		"short list":      []any{map[string]any{"name": "Only One"}},
		"missing prayers": []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}},
		"non-string name": []any{map[string]any{"name": 7.0, "prayers": map[string]any{"Fajr": "04:00"}}},
		"prayers wrong type": []any{
			map[string]any{"name": "A", "prayers": []any{"05:00"}},
		},
		"entries wrong type": []any{"x", 1.0, nil, true},
		"object no list":     map[string]any{"sunrise": "06:00"},
		"long list": []any{
			map[string]any{}, map[string]any{}, map[string]any{}, map[string]any{}, map[string]any{},
		},
	}

	for name, c := range candidates {
		t.Run(name, func(t *testing.T) {
			assertWellFormed(t, Normalize(c))
		})
	}
}

func TestNormalize_PositionalDefaults(t *testing.T) {
	candidate := []any{
		map[string]any{
			"name": "  Al-Noor  ",
			"prayers": map[string]any{
				"Fajr":  "4:55 am",
				"Dhuhr": "garbage",
				"Asr":   12.0,
			},
		},
		map[string]any{"name": "   "},
	}

	got := Normalize(candidate)
	assertWellFormed(t, got)

	if got.Masjids[0].Name != "Al-Noor" {
		t.Fatalf("name = %q, want trimmed Al-Noor", got.Masjids[0].Name)
	}
	if got.Masjids[0].Prayers[Fajr] != "04:55" {
		t.Fatalf("Fajr = %q, want 04:55", got.Masjids[0].Prayers[Fajr])
	}
	if got.Masjids[0].Prayers[Dhuhr] != DefaultTime(0, Dhuhr) {
		t.Fatalf("Dhuhr = %q, want slot default %q", got.Masjids[0].Prayers[Dhuhr], DefaultTime(0, Dhuhr))
	}
	if got.Masjids[0].Prayers[Asr] != DefaultTime(0, Asr) {
		t.Fatalf("Asr = %q, want slot default", got.Masjids[0].Prayers[Asr])
	}
	if got.Masjids[1].Name != DefaultName(1) {
		t.Fatalf("blank name = %q, want default %q", got.Masjids[1].Name, DefaultName(1))
	}
	if diff := cmp.Diff(Defaults().Masjids[2], got.Masjids[2]); diff != "" {
		t.Fatalf("missing slot should equal defaults (-want +got):\n%s", diff)
	}
}

func TestNormalize_ObjectShapes(t *testing.T) {
	list := []any{map[string]any{"name": "X", "prayers": map[string]any{"Isha": "20:00"}}}

	withMasjids := Normalize(map[string]any{"masjids": list, "sunrise": "6:10 am"})
	withData := Normalize(map[string]any{"data": list, "sunriseTime": "06:10"})

	if diff := cmp.Diff(withMasjids, withData); diff != "" {
		t.Fatalf("masjids/data shapes differ (-masjids +data):\n%s", diff)
	}
	if withMasjids.Sunrise != "06:10" {
		t.Fatalf("Sunrise = %q, want 06:10", withMasjids.Sunrise)
	}
	if withMasjids.Masjids[0].Name != "X" || withMasjids.Masjids[0].Prayers[Isha] != "20:00" {
		t.Fatalf("first masjid = %#v", withMasjids.Masjids[0])
	}

	bad := Normalize(map[string]any{"masjids": list, "sunrise": "later"})
	if bad.Sunrise != "" {
		t.Fatalf("invalid sunrise = %q, want absent", bad.Sunrise)
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	inputs := []string{
		`null`,
		`[]`,
		`[{"name":" A ","prayers":{"Fajr":"530","Isha":"7:45 pm"}}]`,
		`{"masjids":[{"name":"B"}],"sunrise":"06:01:30"}`,
		`{"data":"nope"}`,
	}
	for _, in := range inputs {
		var candidate any
		if err := json.Unmarshal([]byte(in), &candidate); err != nil {
			t.Fatalf("bad fixture %s: %v", in, err)
		}
		first := Normalize(candidate)
		second := Decode(Encode(first))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("round trip of %s changed state (-first +second):\n%s", in, diff)
		}
	}
}

func TestNormalize_TypedState(t *testing.T) {
	s := Defaults()
	s.Masjids[1].Prayers[Asr] = "nonsense"
	s.Masjids = s.Masjids[:2]

	got := Normalize(s)
	assertWellFormed(t, got)
	if got.Masjids[1].Prayers[Asr] != DefaultTime(1, Asr) {
		t.Fatalf("Asr = %q, want default", got.Masjids[1].Prayers[Asr])
	}
}

func TestDecode(t *testing.T) {
	if diff := cmp.Diff(Defaults(), Decode([]byte("{not json"))); diff != "" {
		t.Fatalf("invalid JSON should decode to defaults:\n%s", diff)
	}

	wrapped, err := json.Marshal(`{"masjids":[{"name":"Wrapped"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if got := Decode(wrapped); got.Masjids[0].Name != "Wrapped" {
		t.Fatalf("string-wrapped payload name = %q, want Wrapped", got.Masjids[0].Name)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := Defaults()
	c := s.Clone()
	c.Masjids[0].Prayers[Fajr] = "01:00"
	c.Masjids[0].Name = "Changed"
	if s.Masjids[0].Prayers[Fajr] == "01:00" || s.Masjids[0].Name == "Changed" {
		t.Fatalf("Clone shares memory with its source")
	}
	if s.Equal(c) {
		t.Fatalf("Equal reported modified clone as equal")
	}
	if !s.Equal(s.Clone()) {
		t.Fatalf("Equal reported fresh clone as different")
	}
}
