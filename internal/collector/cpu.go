package collector

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prabalesh/healthtop/internal/logger"
)

const (
	procStatPath = "/proc/stat"

	// DefaultCPUWindow is the pause between the two counter reads.
	DefaultCPUWindow = 360 * time.Millisecond
)

// CPUEstimator measures instantaneous CPU utilization from two reads of
// the aggregate counter line, one window apart. Estimate blocks for the
// whole window.
type CPUEstimator struct {
	Window time.Duration

	readLine func() (string, error)
	sleep    func(time.Duration)
}

func NewCPUEstimator(window time.Duration) *CPUEstimator {
	if window <= 0 {
		window = DefaultCPUWindow
	}
	return &CPUEstimator{
		Window:   window,
		readLine: func() (string, error) { return readFirstLine(procStatPath) },
		sleep:    time.Sleep,
	}
}

// Estimate returns utilization in percent. Any failure yields 0. The
// pause is not interruptible; a tick in flight always completes.
func (e *CPUEstimator) Estimate() float64 {
	first, err := e.readLine()
	if err != nil {
		logger.Debug().Err(err).Str("component", "cpu").Msg("read counters")
		return 0
	}
	busy1, idle1, ok := ParseCPUCounters(first)
	if !ok {
		return 0
	}

	e.sleep(e.Window)

	second, err := e.readLine()
	if err != nil {
		logger.Debug().Err(err).Str("component", "cpu").Msg("read counters")
		return 0
	}
	busy2, idle2, ok := ParseCPUCounters(second)
	if !ok {
		return 0
	}

	return CPUUsage(busy1, idle1, busy2, idle2)
}

// ParseCPUCounters splits an aggregate "cpu user nice system idle ..." line
// into busy (user+nice+system) and idle ticks. Lines with fewer than five
// fields are rejected; unparsable numbers count as zero.
func ParseCPUCounters(line string) (busy, idle uint64, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, 0, false
	}
	for _, f := range fields[1:4] {
		busy += parseTicks(f)
	}
	idle = parseTicks(fields[4])
	return busy, idle, true
}

// CPUUsage is Δbusy / (Δbusy + Δidle) * 100, or 0 when the counters did
// not advance.
func CPUUsage(busy1, idle1, busy2, idle2 uint64) float64 {
	busyDelta := int64(busy2) - int64(busy1)
	idleDelta := int64(idle2) - int64(idle1)
	total := busyDelta + idleDelta
	if total <= 0 {
		return 0
	}
	return float64(busyDelta) / float64(total) * 100
}

func parseTicks(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: empty", path)
	}
	return scanner.Text(), nil
}
