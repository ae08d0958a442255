package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabalesh/healthtop/internal/models"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1023, "1023 B"},
		{1024, "1.0 kB"},
		{2048, "2.0 kB"},
		{999_949, "976.5 kB"},
		{999_950, "1.0 MB"},
		{1 << 30, "1.0 GB"},
		{8 << 30, "8.0 GB"},
		{^uint64(0), "16.0 EB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "%d", tt.in)
	}
}

func TestColors(t *testing.T) {
	assert.Equal(t, colorGreen, batteryColor(61))
	assert.Equal(t, colorYellow, batteryColor(60))
	assert.Equal(t, colorRed, batteryColor(20))

	assert.Equal(t, colorRed, temperatureColor(46))
	assert.Equal(t, colorYellow, temperatureColor(36))
	assert.Equal(t, colorBlue, temperatureColor(35))

	assert.Equal(t, colorRed, usageColor(0.86, 0.65, 0.85))
	assert.Equal(t, colorYellow, usageColor(0.70, 0.65, 0.85))
	assert.Equal(t, colorGreen, usageColor(0.10, 0.65, 0.85))
}

func sized(a *App) *App {
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 200})
	return a
}

func TestAppRendersSnapshot(t *testing.T) {
	updates := make(chan models.DeviceHealthState, 1)
	app := sized(NewApp(models.DefaultState(), updates, nil))
	app.now = func() time.Time { return time.Unix(1000, 0) }

	s := models.DefaultState()
	s.BatteryPct = 55
	s.IsCharging = true
	s.BatteryHealth = models.BatteryHealthGood
	s.ThermalState = models.ThermalLightThrottling
	s.TotalRAM, s.UsedRAM = 8<<30, 2<<30
	s.Uptime = "4h 20m"
	s.HealthScore = 90
	s.Recommendations = []string{"Device is running well!"}
	s.SampledAt = time.Unix(990, 0)

	_, cmd := app.Update(snapshotMsg(s))
	require.NotNil(t, cmd)

	view := app.View()
	for _, want := range []string{
		"Device Health Dashboard",
		"55%",
		"Charging | Good",
		"Light Throttling",
		"2.0 GB / 8.0 GB",
		"4h 20m",
		"90/100",
		"• Device is running well!",
		"updated 10 seconds ago",
	} {
		assert.Contains(t, view, want)
	}
}

func TestAppWaitsForSnapshots(t *testing.T) {
	updates := make(chan models.DeviceHealthState, 1)
	app := NewApp(models.DefaultState(), updates, nil)

	s := models.DefaultState()
	s.HealthScore = 42
	updates <- s

	msg := app.Init()()
	got, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, 42, got.HealthScore)

	close(updates)
	assert.IsType(t, updatesClosedMsg{}, app.waitForSnapshot()())
}

func TestAppQuitStopsMonitor(t *testing.T) {
	stopped := 0
	app := NewApp(models.DefaultState(), nil, func() { stopped++ })

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, stopped)
}

func TestAppQuitsWhenUpdatesClose(t *testing.T) {
	app := NewApp(models.DefaultState(), nil, nil)

	_, cmd := app.Update(updatesClosedMsg{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppLoadingBeforeResize(t *testing.T) {
	app := NewApp(models.DefaultState(), nil, nil)
	assert.Equal(t, "Loading...", app.View())
}

func TestAppWaitingForFirstSample(t *testing.T) {
	app := sized(NewApp(models.DefaultState(), nil, nil))
	assert.Contains(t, app.View(), "waiting for first sample")
}

func TestAppVerticalScrollClamps(t *testing.T) {
	app := NewApp(models.DefaultState(), nil, nil)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	app.View()

	for i := 0; i < 500; i++ {
		app.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, app.getMaxScrollOffset(), app.verticalScrollOffset)
	assert.Contains(t, app.View(), "More above")

	app.Update(tea.KeyMsg{Type: tea.KeyHome})
	assert.Zero(t, app.verticalScrollOffset)
}
