package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

func readUptime(ctx context.Context) (time.Duration, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}

// FormatUptime renders elapsed time since boot as "<h>h <m>m". Hours wrap
// at 24, so a device up for 26 hours shows "2h 0m".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int64(d/time.Hour) % 24
	minutes := int64(d/time.Minute) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
