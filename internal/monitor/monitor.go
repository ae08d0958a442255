// Package monitor owns the device snapshot for the lifetime of a view: it
// runs the periodic sampler and the battery listener and tears both down
// together.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prabalesh/healthtop/internal/collector"
	"github.com/prabalesh/healthtop/internal/health"
	"github.com/prabalesh/healthtop/internal/logger"
	"github.com/prabalesh/healthtop/internal/models"
	"github.com/prabalesh/healthtop/internal/state"
)

// DefaultInterval is the pause between the end of one tick and the start
// of the next.
const DefaultInterval = 2 * time.Second

// Sampler performs one synchronous sampling tick.
type Sampler interface {
	Sample(ctx context.Context, prev models.DeviceHealthState) models.DeviceHealthState
}

type Monitor struct {
	store    *state.Store
	sampler  Sampler
	battery  collector.BatterySource
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a monitor over a fresh store holding the default snapshot.
// battery may be nil when the platform has no battery broadcasts.
func New(sampler Sampler, battery collector.BatterySource, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		store:    state.NewStore(models.DefaultState()),
		sampler:  sampler,
		battery:  battery,
		interval: interval,
	}
}

// Store exposes the observable snapshot.
func (m *Monitor) Store() *state.Store {
	return m.store
}

// Start registers the battery listener and launches the sampling loop.
// Both stop when ctx is done or Stop is called. Start is a no-op on an
// already running monitor.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)

	if m.battery != nil {
		m.wg.Add(1)
		go m.listen(ctx)
	}
	m.wg.Add(1)
	go m.loop(ctx)

	logger.Info().Dur("interval", m.interval).Msg("monitor started")
}

// Stop unregisters the listener and cancels the loop. A tick in flight
// completes; no further tick is scheduled. Stop waits for both to exit and
// then closes the store's subscriptions.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.store.Close()
}

// Wait blocks until the loop and listener have exited.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// OnBatteryChanged handles one battery notification: it replaces the
// four battery fields and leaves the rest of the snapshot as it was.
func (m *Monitor) OnBatteryChanged(intent collector.BatteryIntent) {
	reading := collector.ParseBatteryIntent(intent)
	m.store.Update(reading.ApplyTo)
	logger.Debug().
		Float64("pct", reading.Pct).
		Bool("charging", reading.IsCharging).
		Float64("temp", reading.Temp).
		Str("health", reading.Health.String()).
		Msg("battery changed")
}

// Tick runs one sampling pass and publishes the result.
func (m *Monitor) Tick(ctx context.Context) models.DeviceHealthState {
	sampled := m.sampler.Sample(ctx, m.store.Load())

	// A battery broadcast may have landed while sampling; keep its fields
	// and rescore rather than overwrite them with the stale copy.
	return m.store.Update(func(cur models.DeviceHealthState) models.DeviceHealthState {
		next := sampled.Clone()
		next.BatteryPct = cur.BatteryPct
		next.IsCharging = cur.IsCharging
		next.BatteryTemp = cur.BatteryTemp
		next.BatteryHealth = cur.BatteryHealth
		return health.Apply(next)
	})
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("sampler stopped")
			return
		case <-timer.C:
		}

		started := time.Now()
		snap := m.Tick(context.WithoutCancel(ctx))
		logger.Debug().
			Dur("took", time.Since(started)).
			Int("score", snap.HealthScore).
			Float64("cpu", snap.CPUUsage).
			Msg("tick")

		timer.Reset(m.interval)
	}
}

func (m *Monitor) listen(ctx context.Context) {
	defer m.wg.Done()

	err := m.battery.Watch(ctx, m.OnBatteryChanged)
	switch {
	case errors.Is(err, collector.ErrNoBattery):
		logger.Info().Msg("no battery source available")
	case err != nil:
		logger.Warn().Err(err).Msg("battery listener stopped")
	}
}
