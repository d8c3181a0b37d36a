package prayer

// LocationCount is the fixed number of locations in every AppState.
const LocationCount = 3

var seed = []Location{
	{
		Name: "Thaqwa Masjid",
		Prayers: map[Name]string{
			Fajr:    "05:30",
			Dhuhr:   "13:15",
			Asr:     "16:45",
			Maghrib: "18:20",
			Isha:    "19:45",
		},
	},
	{
		Name: "Masjid B1",
		Prayers: map[Name]string{
			Fajr:    "05:40",
			Dhuhr:   "13:10",
			Asr:     "16:35",
			Maghrib: "18:15",
			Isha:    "19:35",
		},
	},
	{
		Name: "Masjid B2",
		Prayers: map[Name]string{
			Fajr:    "05:35",
			Dhuhr:   "13:20",
			Asr:     "16:50",
			Maghrib: "18:25",
			Isha:    "19:50",
		},
	},
}

// Defaults returns a fresh copy of the seed dataset.
func Defaults() AppState {
	return AppState{Masjids: seedCopy()}
}

// DefaultName returns the seed name for slot i, or "" when out of range.
func DefaultName(i int) string {
	if i < 0 || i >= len(seed) {
		return ""
	}
	return seed[i].Name
}

// DefaultTime returns the seed time for (slot, prayer).
func DefaultTime(i int, name Name) string {
	if i < 0 || i >= len(seed) {
		return ""
	}
	return seed[i].Prayers[name]
}

func seedCopy() []Location {
	out := make([]Location, len(seed))
	for i, loc := range seed {
		out[i] = loc.clone()
	}
	return out
}
