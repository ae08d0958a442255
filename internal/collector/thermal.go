package collector

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prabalesh/healthtop/internal/logger"
	"github.com/prabalesh/healthtop/internal/models"
)

// ThermalProbe reports the platform throttling state, or Unsupported when
// the platform exposes no thermal API.
type ThermalProbe interface {
	ThermalStatus(ctx context.Context) models.ThermalReading
}

const sysThermalRoot = "/sys/class/thermal"

// tripSeverity maps kernel trip point types to the throttling level
// reached once the zone temperature crosses them.
var tripSeverity = map[string]models.ThermalState{
	"active":   models.ThermalLightThrottling,
	"passive":  models.ThermalModerateThrottling,
	"hot":      models.ThermalSevereThrottling,
	"critical": models.ThermalCritical,
}

// SysfsThermalProbe derives a throttling state from the kernel thermal
// zones and their trip points.
type SysfsThermalProbe struct {
	Root string
}

func NewSysfsThermalProbe() *SysfsThermalProbe {
	return &SysfsThermalProbe{Root: sysThermalRoot}
}

func (p *SysfsThermalProbe) ThermalStatus(ctx context.Context) models.ThermalReading {
	zones, err := filepath.Glob(filepath.Join(p.Root, "thermal_zone*"))
	if err != nil || len(zones) == 0 {
		return models.Unsupported()
	}

	worst := models.ThermalUnknown
	for _, zone := range zones {
		state, ok := zoneState(zone)
		if !ok {
			logger.Debug().Str("component", "thermal").Str("zone", zone).Msg("unreadable zone")
			continue
		}
		if worst == models.ThermalUnknown || severity(state) > severity(worst) {
			worst = state
		}
	}
	return models.Supported(worst)
}

func zoneState(zone string) (models.ThermalState, bool) {
	temp, ok := readMilli(filepath.Join(zone, "temp"))
	if !ok {
		return models.ThermalUnknown, false
	}

	state := models.ThermalNormal
	trips, _ := filepath.Glob(filepath.Join(zone, "trip_point_*_type"))
	for _, typePath := range trips {
		raw, err := os.ReadFile(typePath)
		if err != nil {
			continue
		}
		level, known := tripSeverity[strings.TrimSpace(string(raw))]
		if !known {
			continue
		}
		limit, ok := readMilli(strings.TrimSuffix(typePath, "_type") + "_temp")
		if !ok || limit <= 0 {
			continue
		}
		if temp >= limit && severity(level) > severity(state) {
			state = level
		}
	}
	return state, true
}

func readMilli(path string) (int64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// severity orders states from harmless to worst. Unknown and NotAvailable
// rank below Normal.
func severity(s models.ThermalState) int {
	switch s {
	case models.ThermalNormal:
		return 1
	case models.ThermalLightThrottling:
		return 2
	case models.ThermalModerateThrottling:
		return 3
	case models.ThermalSevereThrottling:
		return 4
	case models.ThermalCritical:
		return 5
	case models.ThermalEmergency:
		return 6
	case models.ThermalShutdown:
		return 7
	}
	return 0
}

// thermalStatusCodes is the Android PowerManager THERMAL_STATUS_* table.
var thermalStatusCodes = map[int]models.ThermalState{
	0: models.ThermalNormal,
	1: models.ThermalLightThrottling,
	2: models.ThermalModerateThrottling,
	3: models.ThermalSevereThrottling,
	4: models.ThermalCritical,
	5: models.ThermalEmergency,
	6: models.ThermalShutdown,
}

// ThermalFromCode maps an OS thermal status code; unmapped codes are Unknown.
func ThermalFromCode(code int) models.ThermalState {
	if s, ok := thermalStatusCodes[code]; ok {
		return s
	}
	return models.ThermalUnknown
}

// DumpsysThermalProbe asks the Android thermal service for its status.
type DumpsysThermalProbe struct {
	run commandRunner
}

func NewDumpsysThermalProbe() *DumpsysThermalProbe {
	return &DumpsysThermalProbe{run: execCommand}
}

func (p *DumpsysThermalProbe) ThermalStatus(ctx context.Context) models.ThermalReading {
	out, err := p.run(ctx, "dumpsys", "thermalservice")
	if err != nil {
		if isMissingCommand(err) {
			return models.Unsupported()
		}
		logger.Debug().Err(err).Str("component", "thermal").Msg("dumpsys thermalservice")
		return models.Supported(models.ThermalUnknown)
	}

	values := parseDumpsys(out)
	code, ok := values["thermal status"]
	if !ok {
		return models.Supported(models.ThermalUnknown)
	}
	return models.Supported(ThermalFromCode(code))
}
