package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// DefaultStoragePath is the partition reported as device storage.
const DefaultStoragePath = "/"

// StorageStats is total and used space of one filesystem, in bytes.
type StorageStats struct {
	Total uint64
	Used  uint64
}

func readStorage(ctx context.Context, path string) (StorageStats, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return StorageStats{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	// Free is the space available to unprivileged users (f_bavail), so
	// reserved blocks count as used.
	return storageFrom(usage.Total, usage.Free), nil
}

func storageFrom(total, available uint64) StorageStats {
	if available > total {
		available = total
	}
	return StorageStats{Total: total, Used: total - available}
}
