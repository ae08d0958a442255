package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabalesh/healthtop/internal/collector"
	"github.com/prabalesh/healthtop/internal/health"
	"github.com/prabalesh/healthtop/internal/models"
)

type fakeSampler struct {
	calls atomic.Int32
	cpu   float64
	// during runs inside Sample, before it returns
	during func()
}

func (f *fakeSampler) Sample(_ context.Context, prev models.DeviceHealthState) models.DeviceHealthState {
	f.calls.Add(1)
	if f.during != nil {
		f.during()
	}
	next := prev.Clone()
	next.CPUUsage = f.cpu
	next.ThermalState = models.ThermalNormal
	next.TotalRAM, next.UsedRAM = 100, 10
	next.Uptime = "1h 2m"
	return health.Apply(next)
}

type chanBattery struct {
	intents chan collector.BatteryIntent
}

func (c *chanBattery) Watch(ctx context.Context, fn func(collector.BatteryIntent)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-c.intents:
			fn(in)
		}
	}
}

type noBattery struct{}

func (noBattery) Watch(context.Context, func(collector.BatteryIntent)) error {
	return collector.ErrNoBattery
}

func lowBattery() collector.BatteryIntent {
	return collector.BatteryIntent{Extras: map[string]int{
		collector.ExtraLevel:       10,
		collector.ExtraScale:       100,
		collector.ExtraStatus:      collector.StatusDischarging,
		collector.ExtraTemperature: 300,
		collector.ExtraHealth:      collector.HealthGood,
	}}
}

func TestOnBatteryChangedReplacesOnlyBatteryFields(t *testing.T) {
	m := New(&fakeSampler{}, nil, time.Second)
	m.Tick(context.Background())
	before := m.Store().Load()

	m.OnBatteryChanged(lowBattery())

	got := m.Store().Load()
	assert.InDelta(t, 10, got.BatteryPct, 1e-9)
	assert.False(t, got.IsCharging)
	assert.InDelta(t, 30, got.BatteryTemp, 1e-9)
	assert.Equal(t, models.BatteryHealthGood, got.BatteryHealth)

	assert.Equal(t, before.Uptime, got.Uptime)
	assert.Equal(t, before.TotalRAM, got.TotalRAM)
	assert.Equal(t, before.HealthScore, got.HealthScore)
	assert.Equal(t, before.Recommendations, got.Recommendations)
}

func TestTickScoresWithLatestBattery(t *testing.T) {
	m := New(&fakeSampler{cpu: 90}, nil, time.Second)
	m.OnBatteryChanged(lowBattery())

	got := m.Tick(context.Background())

	assert.Equal(t, 100-10-15, got.HealthScore)
	assert.Equal(t, []string{health.RecBatteryLow, health.RecCPUHigh}, got.Recommendations)
	assert.Equal(t, got, m.Store().Load())
}

func TestTickKeepsBatteryBroadcastDuringSample(t *testing.T) {
	sampler := &fakeSampler{}
	m := New(sampler, nil, time.Second)
	sampler.during = func() { m.OnBatteryChanged(lowBattery()) }

	got := m.Tick(context.Background())

	assert.InDelta(t, 10, got.BatteryPct, 1e-9)
	assert.Equal(t, []string{health.RecBatteryLow}, got.Recommendations)
}

func TestStartSamplesImmediatelyAndPublishes(t *testing.T) {
	sampler := &fakeSampler{cpu: 12}
	m := New(sampler, nil, time.Hour)
	ch, cancel := m.Store().Subscribe()
	defer cancel()

	m.Start(context.Background())
	defer m.Stop()

	select {
	case snap := <-ch:
		assert.InDelta(t, 12, snap.CPUUsage, 1e-9)
		assert.Equal(t, "1h 2m", snap.Uptime)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot published")
	}
	assert.EqualValues(t, 1, sampler.calls.Load())
}

func TestLoopRepeatsOnInterval(t *testing.T) {
	sampler := &fakeSampler{}
	m := New(sampler, nil, 5*time.Millisecond)

	m.Start(context.Background())
	assert.Eventually(t, func() bool { return sampler.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	m.Stop()

	after := sampler.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, sampler.calls.Load(), "ticks must stop after Stop")
}

func TestStopLetsInFlightTickFinish(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	sampler := &fakeSampler{cpu: 50}
	var once sync.Once
	sampler.during = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	m := New(sampler, nil, time.Hour)
	m.Start(context.Background())
	<-entered

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a tick was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	assert.InDelta(t, 50, m.Store().Load().CPUUsage, 1e-9)
	assert.EqualValues(t, 1, sampler.calls.Load())
}

func TestBatteryListenerFeedsStore(t *testing.T) {
	src := &chanBattery{intents: make(chan collector.BatteryIntent)}
	m := New(&fakeSampler{}, src, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	m.Start(ctx)
	src.intents <- lowBattery()

	assert.Eventually(t, func() bool {
		return m.Store().Load().BatteryPct == 10
	}, 2*time.Second, time.Millisecond)

	cancel()
	m.Wait()
}

func TestMissingBatteryDoesNotStopSampler(t *testing.T) {
	sampler := &fakeSampler{}
	m := New(sampler, noBattery{}, 5*time.Millisecond)

	m.Start(context.Background())
	defer m.Stop()

	assert.Eventually(t, func() bool { return sampler.calls.Load() >= 2 }, 2*time.Second, time.Millisecond)
}

func TestStartTwiceIsNoop(t *testing.T) {
	sampler := &fakeSampler{}
	m := New(sampler, nil, time.Hour)
	ch, unsubscribe := m.Store().Subscribe()
	defer unsubscribe()

	m.Start(context.Background())
	m.Start(context.Background())
	<-ch
	m.Stop()

	assert.EqualValues(t, 1, sampler.calls.Load())
	_, open := <-ch
	require.False(t, open)
}

func TestNewDefaultsInterval(t *testing.T) {
	m := New(&fakeSampler{}, nil, 0)
	assert.Equal(t, DefaultInterval, m.interval)
	assert.Equal(t, models.DefaultState(), m.Store().Load())
}
