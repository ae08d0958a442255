// Package health derives the health score and recommendations from a
// device snapshot.
package health

import "github.com/prabalesh/healthtop/internal/models"

const (
	baseScore = 100

	RecBatteryHot  = "Battery temperature is high. Close heavy apps."
	RecBatteryLow  = "Battery is low. Consider charging."
	RecRAMHigh     = "RAM usage is high. Close unused apps."
	RecStorageFull = "Storage is almost full. Clean up space."
	RecCPUHigh     = "CPU usage is high. Check running apps."
	RecAllGood     = "Device is running well!"
)

// rule is one row of the scoring table. Penalty and recommendation have
// separate thresholds and are evaluated independently.
type rule struct {
	penalize  func(s models.DeviceHealthState) bool
	penalty   int
	recommend func(s models.DeviceHealthState) bool
	message   string
}

// Order matters: recommendations are emitted in table order.
var rules = []rule{
	{
		penalize:  func(s models.DeviceHealthState) bool { return s.BatteryTemp > 45 },
		penalty:   20,
		recommend: func(s models.DeviceHealthState) bool { return s.BatteryTemp > 40 },
		message:   RecBatteryHot,
	},
	{
		penalize:  func(s models.DeviceHealthState) bool { return s.BatteryPct < 20 },
		penalty:   10,
		recommend: func(s models.DeviceHealthState) bool { return s.BatteryPct < 20 },
		message:   RecBatteryLow,
	},
	{
		penalize:  func(s models.DeviceHealthState) bool { return s.RAMRatio() > 0.90 },
		penalty:   15,
		recommend: func(s models.DeviceHealthState) bool { return s.RAMRatio() > 0.85 },
		message:   RecRAMHigh,
	},
	{
		penalize:  func(s models.DeviceHealthState) bool { return s.StorageRatio() > 0.95 },
		penalty:   10,
		recommend: func(s models.DeviceHealthState) bool { return s.StorageRatio() > 0.90 },
		message:   RecStorageFull,
	},
	{
		penalize:  func(s models.DeviceHealthState) bool { return s.CPUUsage > 85 },
		penalty:   15,
		recommend: func(s models.DeviceHealthState) bool { return s.CPUUsage > 80 },
		message:   RecCPUHigh,
	},
	{
		penalize: func(s models.DeviceHealthState) bool {
			return s.ThermalState != models.ThermalNormal && s.ThermalState != models.ThermalUnknown
		},
		penalty: 10,
	},
}

// Evaluate scores s and lists the advice that applies to it. The
// recommendation list is never empty.
func Evaluate(s models.DeviceHealthState) (int, []string) {
	score := baseScore
	var recs []string

	for _, r := range rules {
		if r.penalize(s) {
			score -= r.penalty
		}
		if r.recommend != nil && r.recommend(s) {
			recs = append(recs, r.message)
		}
	}

	if len(recs) == 0 {
		recs = []string{RecAllGood}
	}
	return clamp(score, 0, 100), recs
}

// Apply returns a copy of s carrying its own score and recommendations.
func Apply(s models.DeviceHealthState) models.DeviceHealthState {
	out := s.Clone()
	out.HealthScore, out.Recommendations = Evaluate(s)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
