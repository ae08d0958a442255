package collector

import (
	"context"
	"time"

	"github.com/prabalesh/healthtop/internal/health"
	"github.com/prabalesh/healthtop/internal/logger"
	"github.com/prabalesh/healthtop/internal/models"
)

// StatsCollector performs one synchronous sampling tick: it reads every
// polled OS source and scores the result.
type StatsCollector struct {
	storagePath string
	cpu         *CPUEstimator
	thermal     ThermalProbe

	memory  func(ctx context.Context) (MemoryStats, error)
	storage func(ctx context.Context, path string) (StorageStats, error)
	uptime  func(ctx context.Context) (time.Duration, error)
	now     func() time.Time
}

func NewStatsCollector(storagePath string, cpu *CPUEstimator, thermal ThermalProbe) *StatsCollector {
	if storagePath == "" {
		storagePath = DefaultStoragePath
	}
	if cpu == nil {
		cpu = NewCPUEstimator(DefaultCPUWindow)
	}
	if thermal == nil {
		thermal = NewSysfsThermalProbe()
	}
	return &StatsCollector{
		storagePath: storagePath,
		cpu:         cpu,
		thermal:     thermal,
		memory:      readMemory,
		storage:     readStorage,
		uptime:      readUptime,
		now:         time.Now,
	}
}

// Sample reads memory, storage, uptime, CPU and thermal state, carries the
// battery fields over from prev and returns the scored snapshot. Failed
// reads leave their fields at zero.
func (s *StatsCollector) Sample(ctx context.Context, prev models.DeviceHealthState) models.DeviceHealthState {
	next := prev.Clone()

	mem, err := s.memory(ctx)
	if err != nil {
		logger.Debug().Err(err).Str("component", "collector").Msg("memory")
	}
	next.TotalRAM, next.UsedRAM = mem.Total, mem.Used

	storage, err := s.storage(ctx, s.storagePath)
	if err != nil {
		logger.Debug().Err(err).Str("component", "collector").Msg("storage")
	}
	next.TotalStorage, next.UsedStorage = storage.Total, storage.Used

	up, err := s.uptime(ctx)
	if err != nil {
		logger.Debug().Err(err).Str("component", "collector").Msg("uptime")
	}
	next.Uptime = FormatUptime(up)

	next.CPUUsage = s.cpu.Estimate()
	next.ThermalState = s.thermal.ThermalStatus(ctx).Resolve()
	next.SampledAt = s.now()

	return health.Apply(next)
}
