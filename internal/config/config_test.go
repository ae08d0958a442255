package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prabalesh/healthtop/internal/config"
)

// isolate keeps the user's real config out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("HEALTHTOP_CONFIG", "")
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "healthtop.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, config.Default(), *cfg)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 360*time.Millisecond, cfg.CPUWindow)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
interval = "5s"
cpu_window = "500ms"
storage_path = "/data"
battery_source = "dumpsys"
thermal_source = "dumpsys"
log_level = "debug"
log_file = "/tmp/healthtop.log"
`)

	cfg, err := config.Load(flags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.CPUWindow)
	assert.Equal(t, "/data", cfg.StoragePath)
	assert.Equal(t, config.BatteryDumpsys, cfg.BatterySource)
	assert.Equal(t, config.ThermalDumpsys, cfg.ThermalSource)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/healthtop.log", cfg.LogFile)
}

func TestLoadFindsFileInUserConfigDir(t *testing.T) {
	dir := isolate(t)
	sub := filepath.Join(dir, "healthtop")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeConfig(t, sub, `storage_path = "/home"`)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/home", cfg.StoragePath)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
interval = "5s"
storage_path = "/from-file"
log_level = "info"
`)
	t.Setenv("HEALTHTOP_CONFIG", path)
	t.Setenv("HEALTHTOP_STORAGE_PATH", "/from-env")
	t.Setenv("HEALTHTOP_LOG_LEVEL", "error")

	cfg, err := config.Load(flags(t, "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Interval, "file beats default")
	assert.Equal(t, "/from-env", cfg.StoragePath, "env beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "flag beats env")
}

func TestLoadInvalidFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "This is not a valid TOML file\n")

	_, err := config.Load(flags(t, "--config", path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(flags(t, "--config", filepath.Join(dir, "nope.toml")))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"zero interval", []string{"--interval", "0s"}, config.ErrInvalidInterval},
		{"negative cpu window", []string{"--cpu-window", "-1s"}, config.ErrInvalidInterval},
		{"bad battery source", []string{"--battery-source", "bluetooth"}, config.ErrInvalidSource},
		{"bad thermal source", []string{"--thermal-source", "guess"}, config.ErrInvalidSource},
		{"bad log level", []string{"--log-level", "loud"}, config.ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := config.Load(flags(t, tt.args...))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
