package collector

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prabalesh/healthtop/internal/logger"
	"github.com/prabalesh/healthtop/internal/models"
)

// Battery broadcast extras.
const (
	ExtraLevel       = "level"
	ExtraScale       = "scale"
	ExtraStatus      = "status"
	ExtraTemperature = "temperature" // tenths of a degree Celsius
	ExtraHealth      = "health"
)

// Battery status codes.
const (
	StatusUnknown     = 1
	StatusCharging    = 2
	StatusDischarging = 3
	StatusNotCharging = 4
	StatusFull        = 5
)

// Battery health codes.
const (
	HealthUnknown            = 1
	HealthGood               = 2
	HealthOverheat           = 3
	HealthDead               = 4
	HealthOverVoltage        = 5
	HealthUnspecifiedFailure = 6
	HealthCold               = 7
)

// DefaultBatteryPoll is how often polled sources look for changes.
const DefaultBatteryPoll = 5 * time.Second

var ErrNoBattery = errors.New("no battery found")

var batteryHealthCodes = map[int]models.BatteryHealth{
	HealthGood:               models.BatteryHealthGood,
	HealthOverheat:           models.BatteryHealthOverheat,
	HealthDead:               models.BatteryHealthDead,
	HealthOverVoltage:        models.BatteryHealthOverVoltage,
	HealthUnspecifiedFailure: models.BatteryHealthUnspecifiedFailure,
	HealthCold:               models.BatteryHealthCold,
}

// BatteryIntent is one battery-change notification: a bag of integer
// extras, any of which may be missing.
type BatteryIntent struct {
	Extras map[string]int
}

// IntExtra returns the extra named key, or def when it is absent.
func (i BatteryIntent) IntExtra(key string, def int) int {
	if v, ok := i.Extras[key]; ok {
		return v
	}
	return def
}

func (i BatteryIntent) equal(o BatteryIntent) bool {
	return maps.Equal(i.Extras, o.Extras)
}

// BatteryReading is the part of the device snapshot a battery broadcast
// owns.
type BatteryReading struct {
	Pct        float64
	IsCharging bool
	Temp       float64
	Health     models.BatteryHealth
}

// ParseBatteryIntent decodes a notification. Missing or malformed extras
// degrade to zero and Unknown.
func ParseBatteryIntent(intent BatteryIntent) BatteryReading {
	level := intent.IntExtra(ExtraLevel, -1)
	scale := intent.IntExtra(ExtraScale, -1)

	var pct float64
	if level >= 0 && scale > 0 {
		pct = float64(level) * 100 / float64(scale)
	}

	status := intent.IntExtra(ExtraStatus, -1)
	health, ok := batteryHealthCodes[intent.IntExtra(ExtraHealth, -1)]
	if !ok {
		health = models.BatteryHealthUnknown
	}

	return BatteryReading{
		Pct:        pct,
		IsCharging: status == StatusCharging || status == StatusFull,
		Temp:       float64(intent.IntExtra(ExtraTemperature, 0)) / 10,
		Health:     health,
	}
}

// ApplyTo returns s with the four battery fields replaced.
func (r BatteryReading) ApplyTo(s models.DeviceHealthState) models.DeviceHealthState {
	s.BatteryPct = r.Pct
	s.IsCharging = r.IsCharging
	s.BatteryTemp = r.Temp
	s.BatteryHealth = r.Health
	return s
}

// BatterySource delivers battery-change notifications to fn until ctx is
// done.
type BatterySource interface {
	Watch(ctx context.Context, fn func(BatteryIntent)) error
}

// pollIntents calls read every interval and forwards intents that differ
// from the previous one. The first successful read is always forwarded.
func pollIntents(ctx context.Context, interval time.Duration, read func(context.Context) (BatteryIntent, error), fn func(BatteryIntent)) error {
	if interval <= 0 {
		interval = DefaultBatteryPoll
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last BatteryIntent
	sent := false
	for {
		intent, err := read(ctx)
		switch {
		case errors.Is(err, ErrNoBattery):
			return err
		case err != nil:
			logger.Debug().Err(err).Str("component", "battery").Msg("read battery")
		case !sent || !intent.equal(last):
			fn(intent)
			last, sent = intent, true
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

const sysPowerSupplyRoot = "/sys/class/power_supply"

var sysfsStatusCodes = map[string]int{
	"unknown":      StatusUnknown,
	"charging":     StatusCharging,
	"discharging":  StatusDischarging,
	"not charging": StatusNotCharging,
	"full":         StatusFull,
}

var sysfsHealthCodes = map[string]int{
	"unknown":             HealthUnknown,
	"good":                HealthGood,
	"overheat":            HealthOverheat,
	"dead":                HealthDead,
	"over voltage":        HealthOverVoltage,
	"unspecified failure": HealthUnspecifiedFailure,
	"cold":                HealthCold,
}

// SysfsBatterySource polls the kernel power_supply class.
type SysfsBatterySource struct {
	Root     string
	Interval time.Duration
}

func NewSysfsBatterySource(interval time.Duration) *SysfsBatterySource {
	return &SysfsBatterySource{Root: sysPowerSupplyRoot, Interval: interval}
}

func (s *SysfsBatterySource) Watch(ctx context.Context, fn func(BatteryIntent)) error {
	return pollIntents(ctx, s.Interval, func(context.Context) (BatteryIntent, error) {
		return s.Read()
	}, fn)
}

// Read builds an intent from the first battery under Root.
func (s *SysfsBatterySource) Read() (BatteryIntent, error) {
	dir, err := s.batteryDir()
	if err != nil {
		return BatteryIntent{}, err
	}

	extras := make(map[string]int)
	if level, ok := readSysfsInt(filepath.Join(dir, "capacity")); ok {
		extras[ExtraLevel] = level
		extras[ExtraScale] = 100
	}
	if status, ok := readSysfsCode(filepath.Join(dir, "status"), sysfsStatusCodes); ok {
		extras[ExtraStatus] = status
	}
	// power_supply reports temp in tenths of a degree already
	if temp, ok := readSysfsInt(filepath.Join(dir, "temp")); ok {
		extras[ExtraTemperature] = temp
	}
	if health, ok := readSysfsCode(filepath.Join(dir, "health"), sysfsHealthCodes); ok {
		extras[ExtraHealth] = health
	}
	return BatteryIntent{Extras: extras}, nil
}

func (s *SysfsBatterySource) batteryDir() (string, error) {
	for _, pattern := range []string{"BAT*", "battery"} {
		dirs, err := filepath.Glob(filepath.Join(s.Root, pattern))
		if err == nil && len(dirs) > 0 {
			return dirs[0], nil
		}
	}
	return "", ErrNoBattery
}

func readSysfsInt(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func readSysfsCode(path string, codes map[string]int) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	code, ok := codes[strings.ToLower(strings.TrimSpace(string(content)))]
	return code, ok
}

// DumpsysBatterySource polls the Android battery service.
type DumpsysBatterySource struct {
	Interval time.Duration
	run      commandRunner
}

func NewDumpsysBatterySource(interval time.Duration) *DumpsysBatterySource {
	return &DumpsysBatterySource{Interval: interval, run: execCommand}
}

func (s *DumpsysBatterySource) Watch(ctx context.Context, fn func(BatteryIntent)) error {
	return pollIntents(ctx, s.Interval, s.Read, fn)
}

// Read runs `dumpsys battery` once and keeps the broadcast extras.
func (s *DumpsysBatterySource) Read(ctx context.Context) (BatteryIntent, error) {
	out, err := s.run(ctx, "dumpsys", "battery")
	if err != nil {
		if isMissingCommand(err) {
			return BatteryIntent{}, ErrNoBattery
		}
		return BatteryIntent{}, err
	}

	values := parseDumpsys(out)
	extras := make(map[string]int)
	for _, key := range []string{ExtraLevel, ExtraScale, ExtraStatus, ExtraTemperature, ExtraHealth} {
		if v, ok := values[key]; ok {
			extras[key] = v
		}
	}
	return BatteryIntent{Extras: extras}, nil
}
