package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryStats is the process-wide view of physical memory, in bytes.
type MemoryStats struct {
	Total uint64
	Used  uint64
}

func readMemory(ctx context.Context) (MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}, fmt.Errorf("virtual memory: %w", err)
	}
	return memoryFrom(vm.Total, vm.Available), nil
}

// memoryFrom derives used bytes from total and available, keeping
// Used <= Total even if the OS reports inconsistent numbers.
func memoryFrom(total, available uint64) MemoryStats {
	if available > total {
		available = total
	}
	return MemoryStats{Total: total, Used: total - available}
}
