// Package procstat reads per-unit CPU time counters from the kernel's
// /proc/stat listing.
package procstat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/cpumon/internal/model"
)

// The intr line lists every interrupt source and outgrows bufio's default
// token size on large machines.
const maxLine = 4 << 20

// Listing holds one tick's counters indexed by unit. Units whose line was
// absent or malformed have Present[i] == false.
type Listing struct {
	Counters []model.Counters
	Present  []bool
}

// Has reports whether unit i was read this tick.
func (l Listing) Has(i int) bool { return i >= 0 && i < len(l.Present) && l.Present[i] }

// Source reads the listing from a procfs mount.
type Source struct {
	path  string
	units int
}

func NewSource(procRoot string, units int) *Source {
	return &Source{path: filepath.Join(procRoot, "stat"), units: units}
}

// Read opens and parses the whole listing in one pass. On a scan error the
// units parsed before it are returned alongside the error.
func (s *Source) Read() (Listing, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Listing{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	l, err := Parse(f, s.units)
	if err != nil {
		return l, fmt.Errorf("scan %s: %w", s.path, err)
	}
	return l, nil
}

// Parse scans r for "cpuN user nice system idle ..." lines. The aggregate
// "cpu" line, lines with fewer than four counters, unparsable counters and
// unit numbers outside [0, units) are skipped.
func Parse(r io.Reader, units int) (Listing, error) {
	l := Listing{
		Counters: make([]model.Counters, units),
		Present:  make([]bool, units),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		id, c, ok := parseLine(sc.Text())
		if !ok || id < 0 || id >= units {
			continue
		}
		l.Counters[id] = c
		l.Present[id] = true
	}
	return l, sc.Err()
}

func parseLine(line string) (int, model.Counters, bool) {
	if len(line) < 4 || !strings.HasPrefix(line, "cpu") || !isDigit(line[3]) {
		return 0, model.Counters{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, model.Counters{}, false
	}

	id, err := strconv.Atoi(strings.TrimPrefix(fields[0], "cpu"))
	if err != nil {
		return 0, model.Counters{}, false
	}

	var vals [4]uint64
	for i := range vals {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return 0, model.Counters{}, false
		}
		vals[i] = v
	}

	return id, model.Counters{User: vals[0], Nice: vals[1], System: vals[2], Idle: vals[3]}, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
