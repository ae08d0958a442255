package models

import "time"

// DeviceHealthState is one consistent snapshot of every observed device
// metric. Values are replaced wholesale; a published state is never mutated.
type DeviceHealthState struct {
	BatteryPct    float64       `json:"battery_pct"`
	IsCharging    bool          `json:"is_charging"`
	BatteryTemp   float64       `json:"battery_temp"`
	BatteryHealth BatteryHealth `json:"battery_health"`

	CPUUsage     float64      `json:"cpu_usage"`
	ThermalState ThermalState `json:"thermal_state"`

	TotalRAM     uint64 `json:"total_ram"`
	UsedRAM      uint64 `json:"used_ram"`
	TotalStorage uint64 `json:"total_storage"`
	UsedStorage  uint64 `json:"used_storage"`

	Uptime          string    `json:"uptime"`
	HealthScore     int       `json:"health_score"`
	Recommendations []string  `json:"recommendations"`
	SampledAt       time.Time `json:"sampled_at"`
}

// DefaultState is the state before any battery broadcast or sampler tick.
func DefaultState() DeviceHealthState {
	return DeviceHealthState{
		BatteryHealth:   BatteryHealthUnknown,
		ThermalState:    ThermalUnknown,
		Uptime:          "0h 0m",
		HealthScore:     100,
		Recommendations: []string{},
	}
}

// Clone returns a copy that shares no memory with s.
func (s DeviceHealthState) Clone() DeviceHealthState {
	c := s
	if s.Recommendations != nil {
		c.Recommendations = make([]string, len(s.Recommendations))
		copy(c.Recommendations, s.Recommendations)
	}
	return c
}

// RAMRatio is UsedRAM/TotalRAM, or 0 when the total is unknown.
func (s DeviceHealthState) RAMRatio() float64 {
	return ratio(s.UsedRAM, s.TotalRAM)
}

// StorageRatio is UsedStorage/TotalStorage, or 0 when the total is unknown.
func (s DeviceHealthState) StorageRatio() float64 {
	return ratio(s.UsedStorage, s.TotalStorage)
}

func ratio(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}
