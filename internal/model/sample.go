package model

import "time"

// Counters is one processing unit's row of the kernel counter listing,
// in kernel ticks. Only the four fields used for utilization are kept.
type Counters struct {
	User   uint64
	Nice   uint64
	System uint64
	Idle   uint64
}

// Metric selects which per-unit value a consumer reads.
type Metric int

const (
	MetricUtilization Metric = iota
	MetricFrequency
)

func (m Metric) String() string {
	switch m {
	case MetricUtilization:
		return "utilization"
	case MetricFrequency:
		return "frequency"
	default:
		return "unknown"
	}
}

// State is the sampling loop phase.
type State int

const (
	StateWarming State = iota
	StateSteady
)

func (s State) String() string {
	if s == StateSteady {
		return "steady"
	}
	return "warming"
}

// Unit is the committed reading of a single processing unit.
type Unit struct {
	Utilization float64 `json:"utilization"` // percent 0-100
	Frequency   float64 `json:"frequency"`   // percent of scaling max, 0 when unsupported
}

// Snapshot is what consumers see. It is never mutated after it is published.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	State     State     `json:"-"`
	Units     []Unit    `json:"units"`
}

// Zero returns an all-zero snapshot sized for n units.
func Zero(n int) Snapshot { return Snapshot{Units: make([]Unit, n)} }

// Clone returns a deep copy so callers can keep it past the next tick.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Units = append([]Unit(nil), s.Units...)
	return out
}
