package ui

import "fmt"

const byteUnits = "kMGTPE"

// FormatBytes renders a byte count with one decimal and binary (1024)
// steps: 500 -> "500 B", 2048 -> "2.0 kB". The unit is only promoted once
// the value reaches 999 950, so "1000.0 kB" never appears.
func FormatBytes(b uint64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	unit := 0
	for b >= 999_950 && unit < len(byteUnits)-1 {
		b /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/1024.0, byteUnits[unit])
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
