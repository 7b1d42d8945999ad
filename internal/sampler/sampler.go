package sampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/Dicklesworthstone/cpumon/internal/config"
	"github.com/Dicklesworthstone/cpumon/internal/cpufreq"
	"github.com/Dicklesworthstone/cpumon/internal/logger"
	"github.com/Dicklesworthstone/cpumon/internal/model"
	"github.com/Dicklesworthstone/cpumon/internal/procstat"
)

var ErrNoProcessingUnits = errors.New("no processing units discovered")

// Sampler turns /proc/stat and cpufreq readings into per-unit percentages
// on a fixed interval. One goroutine drives Warm, Tick and Run; any number
// may use the read side concurrently.
type Sampler struct {
	Interval time.Duration

	source *procstat.Source
	freq   *cpufreq.Reader
	table  *table
	log    logger.Logger

	warmOnce sync.Once
	now      func() time.Time
}

// New sizes the sampler from the number of logical CPUs found under
// cfg.ProcRoot, so a mounted host procfs is counted rather than our own.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (*Sampler, error) {
	n, err := cpu.CountsWithContext(hostContext(ctx, cfg), true)
	if err != nil {
		return nil, fmt.Errorf("count processing units: %w", err)
	}
	return NewWithUnits(n, cfg, log)
}

func hostContext(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{
		common.HostProcEnvKey: cfg.ProcRoot,
		common.HostSysEnvKey:  cfg.SysRoot,
	})
}

// NewWithUnits builds a sampler for a known unit count.
func NewWithUnits(units int, cfg config.Config, log logger.Logger) (*Sampler, error) {
	if units <= 0 {
		return nil, ErrNoProcessingUnits
	}
	if log == nil {
		log = logger.Discard()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &Sampler{
		Interval: interval,
		source:   procstat.NewSource(cfg.ProcRoot, units),
		freq:     cpufreq.NewReader(cfg.SysRoot, log),
		table:    newTable(units),
		log:      log,
		now:      time.Now,
	}, nil
}

// Warm takes the bootstrap reading so the first steady tick measures one
// interval rather than time since boot. Nothing is published. Only the
// first call has any effect; units it could not read are primed by the
// first tick that sees them.
func (s *Sampler) Warm() {
	s.warmOnce.Do(func() {
		listing, err := s.source.Read()
		if err != nil {
			s.log.Debug("warm-up read failed", "error", err)
			return
		}
		for i := 0; i < s.table.len(); i++ {
			if listing.Has(i) {
				s.table.prime(i, listing.Counters[i])
			}
		}
		s.log.Debug("sampler warmed", "units", s.table.len())
	})
}

// Tick reads every source once and commits a new snapshot.
func (s *Sampler) Tick() {
	// a partial listing is still used unit by unit
	listing, err := s.source.Read()
	if err != nil {
		s.log.Debug("counter listing unavailable", "error", err)
	}

	for i := 0; i < s.table.len(); i++ {
		var c model.Counters
		ok := listing.Has(i)
		if ok {
			c = listing.Counters[i]
		}
		s.table.update(i, c, ok, s.freq.Percent(i))
	}

	s.table.commit(s.now())
}

// Run warms the sampler if needed, then ticks every Interval until ctx is
// cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	s.Warm()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.log.Info("sampler started", "units", s.table.len(), "interval", s.Interval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sampler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
