package sampler

import (
	"sync/atomic"
	"time"

	"github.com/Dicklesworthstone/cpumon/internal/model"
)

// table owns the per-unit rolling state. prev, primed and pending belong to
// the sampling goroutine; readers only ever load current.
type table struct {
	prev    []model.Counters
	primed  []bool
	pending []model.Unit
	tick    uint64

	current atomic.Pointer[model.Snapshot]
}

func newTable(units int) *table {
	t := &table{
		prev:    make([]model.Counters, units),
		primed:  make([]bool, units),
		pending: make([]model.Unit, units),
	}
	zero := model.Zero(units)
	t.current.Store(&zero)
	return t
}

func (t *table) len() int { return len(t.prev) }

// prime stores counters without deriving anything from them.
func (t *table) prime(unit int, c model.Counters) {
	t.prev[unit] = c
	t.primed[unit] = true
}

// update stages a unit's next values. Utilization is only recomputed when
// the unit had a counter line this tick and a baseline to measure against;
// the first line seen for a unit only becomes that baseline. Frequency is
// always replaced.
func (t *table) update(unit int, c model.Counters, ok bool, freq float64) {
	switch {
	case ok && !t.primed[unit]:
		t.prime(unit, c)
	case ok:
		t.pending[unit].Utilization = Utilization(c, t.prev[unit], t.pending[unit].Utilization)
		t.prev[unit] = c
	}
	t.pending[unit].Frequency = freq
}

// commit publishes every staged unit at once.
func (t *table) commit(at time.Time) {
	t.tick++
	snap := &model.Snapshot{
		Timestamp: at,
		Tick:      t.tick,
		State:     model.StateSteady,
		Units:     append([]model.Unit(nil), t.pending...),
	}
	t.current.Store(snap)
}

func (t *table) load() *model.Snapshot { return t.current.Load() }
