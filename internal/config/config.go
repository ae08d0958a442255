package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/prabalesh/healthtop/internal/logger"
)

const (
	envPrefix  = "HEALTHTOP"
	configName = "healthtop"

	BatterySysfs   = "sysfs"
	BatteryDumpsys = "dumpsys"
	BatteryNone    = "none"

	ThermalSysfs   = "sysfs"
	ThermalDumpsys = "dumpsys"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidSource   = errors.New("invalid source")
)

type Config struct {
	Interval      time.Duration `mapstructure:"interval"`
	CPUWindow     time.Duration `mapstructure:"cpu_window"`
	StoragePath   string        `mapstructure:"storage_path"`
	BatterySource string        `mapstructure:"battery_source"`
	BatteryPoll   time.Duration `mapstructure:"battery_poll"`
	ThermalSource string        `mapstructure:"thermal_source"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
}

// Default is the configuration used when no file, env or flag says
// otherwise.
func Default() Config {
	return Config{
		Interval:      2 * time.Second,
		CPUWindow:     360 * time.Millisecond,
		StoragePath:   "/",
		BatterySource: BatterySysfs,
		BatteryPoll:   5 * time.Second,
		ThermalSource: ThermalSysfs,
		LogLevel:      "warn",
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"interval":       "interval",
	"cpu-window":     "cpu_window",
	"storage-path":   "storage_path",
	"battery-source": "battery_source",
	"battery-poll":   "battery_poll",
	"thermal-source": "thermal_source",
	"log-level":      "log_level",
	"log-file":       "log_file",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a healthtop.toml config file")
	fs.Duration("interval", d.Interval, "pause between sampling ticks")
	fs.Duration("cpu-window", d.CPUWindow, "pause between the two CPU counter reads")
	fs.String("storage-path", d.StoragePath, "filesystem reported as device storage")
	fs.String("battery-source", d.BatterySource, "battery broadcasts: sysfs, dumpsys or none")
	fs.Duration("battery-poll", d.BatteryPoll, "how often the battery source is polled")
	fs.String("thermal-source", d.ThermalSource, "thermal status: sysfs or dumpsys")
	fs.String("log-level", d.LogLevel, "debug, info, warn, error or off")
	fs.String("log-file", d.LogFile, "append logs to this file")
}

// Load merges defaults, the config file, HEALTHTOP_* environment variables
// and flags, in increasing order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("interval", d.Interval)
	v.SetDefault("cpu_window", d.CPUWindow)
	v.SetDefault("storage_path", d.StoragePath)
	v.SetDefault("battery_source", d.BatterySource)
	v.SetDefault("battery_poll", d.BatteryPoll)
	v.SetDefault("thermal_source", d.ThermalSource)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := readConfigFile(v, explicitPath(fs)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func explicitPath(fs *pflag.FlagSet) string {
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	return os.Getenv(envPrefix + "_CONFIG")
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("toml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}
	v.AddConfigPath("/etc/" + configName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}
	return nil
}

// Validate rejects values the monitor cannot run with.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	if c.CPUWindow <= 0 {
		return fmt.Errorf("%w: cpu window %s", ErrInvalidInterval, c.CPUWindow)
	}
	if c.BatteryPoll <= 0 {
		return fmt.Errorf("%w: battery poll %s", ErrInvalidInterval, c.BatteryPoll)
	}
	switch c.BatterySource {
	case BatterySysfs, BatteryDumpsys, BatteryNone:
	default:
		return fmt.Errorf("%w: battery source %q", ErrInvalidSource, c.BatterySource)
	}
	switch c.ThermalSource {
	case ThermalSysfs, ThermalDumpsys:
	default:
		return fmt.Errorf("%w: thermal source %q", ErrInvalidSource, c.ThermalSource)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogLevel, err)
	}
	return nil
}
