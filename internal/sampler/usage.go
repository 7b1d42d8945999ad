package sampler

import "github.com/Dicklesworthstone/cpumon/internal/model"

// Utilization returns the busy share of the interval between prev and cur.
// When no counter moved (or the counters went backwards in total) last is
// returned unchanged, so a quiet tick never produces NaN.
func Utilization(cur, prev model.Counters, last float64) float64 {
	user := delta(cur.User, prev.User)
	nice := delta(cur.Nice, prev.Nice)
	system := delta(cur.System, prev.System)
	idle := delta(cur.Idle, prev.Idle)

	total := user + nice + system + idle
	if total <= 0 {
		return last
	}

	busy := user + nice + system
	return float64(busy) / float64(total) * 100
}

// delta is signed so a counter reset shows up as a negative step instead of
// wrapping to a huge unsigned value.
func delta(cur, prev uint64) int64 { return int64(cur - prev) }
