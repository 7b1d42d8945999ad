// Package cpufreq reads clock-scaling state from sysfs.
package cpufreq

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/cpumon/internal/logger"
)

// Reader probes /sys/devices/system/cpu/cpuN/cpufreq on every call; nothing
// is cached, so a driver that loads mid-run is picked up on the next tick.
type Reader struct {
	base string
	log  logger.Logger
}

func NewReader(sysRoot string, log logger.Logger) *Reader {
	return &Reader{
		base: filepath.Join(sysRoot, "devices", "system", "cpu"),
		log:  log,
	}
}

func (r *Reader) dir(unit int) string {
	return filepath.Join(r.base, fmt.Sprintf("cpu%d", unit), "cpufreq")
}

// HasScaling reports whether the unit exposes a cpufreq directory.
func (r *Reader) HasScaling(unit int) bool {
	st, err := os.Stat(r.dir(unit))
	return err == nil && st.IsDir()
}

// Percent returns scaling_cur_freq as a percentage of scaling_max_freq,
// or 0 when either is missing or max is zero.
func (r *Reader) Percent(unit int) float64 {
	dir := r.dir(unit)

	maxFreq, err := readScalar(filepath.Join(dir, "scaling_max_freq"))
	if err != nil {
		r.log.Debug("failed to read scaling_max_freq", "cpu", unit, "error", err)
		return 0
	}
	curFreq, err := readScalar(filepath.Join(dir, "scaling_cur_freq"))
	if err != nil {
		r.log.Debug("failed to read scaling_cur_freq", "cpu", unit, "error", err)
		return 0
	}
	if maxFreq == 0 {
		return 0
	}

	return float64(curFreq) / float64(maxFreq) * 100
}

func readScalar(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
