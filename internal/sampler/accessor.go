package sampler

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/cpumon/internal/model"
)

var (
	ErrUnitOutOfRange = errors.New("processing unit out of range")
	ErrUnknownMetric  = errors.New("unknown metric")
)

// Accessor is the read side consumers depend on. None of its methods block
// on the sampling goroutine or trigger a sample.
type Accessor interface {
	Units() int
	HasFrequencyScaling(unit int) bool
	Utilization(unit int) (float64, error)
	Frequency(unit int) (float64, error)
	Snapshot() model.Snapshot
}

var _ Accessor = (*Sampler)(nil)

// Units is the processing-unit count fixed at construction.
func (s *Sampler) Units() int { return s.table.len() }

// HasFrequencyScaling probes sysfs; consumers call it once at startup.
func (s *Sampler) HasFrequencyScaling(unit int) bool {
	if s.checkUnit(unit) != nil {
		return false
	}
	return s.freq.HasScaling(unit)
}

// Read returns the last committed value of metric for unit. Before the
// first steady tick every value is zero.
func (s *Sampler) Read(unit int, metric model.Metric) (float64, error) {
	if err := s.checkUnit(unit); err != nil {
		return 0, err
	}

	u := s.table.load().Units[unit]
	switch metric {
	case model.MetricUtilization:
		return u.Utilization, nil
	case model.MetricFrequency:
		return u.Frequency, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMetric, int(metric))
	}
}

func (s *Sampler) Utilization(unit int) (float64, error) {
	return s.Read(unit, model.MetricUtilization)
}

func (s *Sampler) Frequency(unit int) (float64, error) {
	return s.Read(unit, model.MetricFrequency)
}

// Snapshot returns a private copy of the last committed tick.
func (s *Sampler) Snapshot() model.Snapshot { return s.table.load().Clone() }

// State reports whether a steady tick has been committed yet.
func (s *Sampler) State() model.State { return s.table.load().State }

func (s *Sampler) checkUnit(unit int) error {
	if unit < 0 || unit >= s.table.len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrUnitOutOfRange, unit, s.table.len())
	}
	return nil
}
