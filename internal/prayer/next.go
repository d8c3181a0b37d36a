package prayer

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Next describes the upcoming prayer relative to a wall-clock time.
type Next struct {
	Name         Name
	Time         string
	MinutesUntil int
}

// NextPrayer picks the prayer with the smallest forward distance from now,
// wrapping past midnight. A prayer at exactly now is due in 0 minutes. Ties go
// to the earlier name in Names. The second result is false only when no time
// parses.
func NextPrayer(prayers map[Name]string, now time.Time) (Next, bool) {
	nowMinutes := now.Hour()*60 + now.Minute()

	var best Next
	found := false
	for _, name := range Names {
		at, ok := ToMinutes(prayers[name])
		if !ok {
			continue
		}
		delta := (at - nowMinutes + minutesPerDay) % minutesPerDay
		if !found || delta < best.MinutesUntil {
			best = Next{Name: name, Time: prayers[name], MinutesUntil: delta}
			found = true
		}
	}
	return best, found
}

// Remaining renders MinutesUntil as "now", "45m" or "2h 05m".
func (n Next) Remaining() string {
	switch {
	case n.MinutesUntil <= 0:
		return "now"
	case n.MinutesUntil < 60:
		return fmt.Sprintf("%dm", n.MinutesUntil)
	default:
		return fmt.Sprintf("%dh %02dm", n.MinutesUntil/60, n.MinutesUntil%60)
	}
}
