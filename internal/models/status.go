package models

import "encoding/json"

type BatteryHealth int

const (
	BatteryHealthUnknown BatteryHealth = iota
	BatteryHealthGood
	BatteryHealthOverheat
	BatteryHealthDead
	BatteryHealthOverVoltage
	BatteryHealthUnspecifiedFailure
	BatteryHealthCold
)

var batteryHealthNames = map[BatteryHealth]string{
	BatteryHealthUnknown:            "Unknown",
	BatteryHealthGood:               "Good",
	BatteryHealthOverheat:           "Overheat",
	BatteryHealthDead:               "Dead",
	BatteryHealthOverVoltage:        "Over Voltage",
	BatteryHealthUnspecifiedFailure: "Unspecified Failure",
	BatteryHealthCold:               "Cold",
}

func (h BatteryHealth) String() string {
	if name, ok := batteryHealthNames[h]; ok {
		return name
	}
	return "Unknown"
}

func (h BatteryHealth) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// ThermalState is the OS-reported throttling severity.
type ThermalState int

const (
	ThermalUnknown ThermalState = iota
	ThermalNormal
	ThermalLightThrottling
	ThermalModerateThrottling
	ThermalSevereThrottling
	ThermalCritical
	ThermalEmergency
	ThermalShutdown
	ThermalNotAvailable
)

var thermalNames = map[ThermalState]string{
	ThermalUnknown:            "Unknown",
	ThermalNormal:             "Normal",
	ThermalLightThrottling:    "Light Throttling",
	ThermalModerateThrottling: "Moderate Throttling",
	ThermalSevereThrottling:   "Severe Throttling",
	ThermalCritical:           "Critical",
	ThermalEmergency:          "Emergency",
	ThermalShutdown:           "Shutdown",
	ThermalNotAvailable:       "Not Available",
}

func (t ThermalState) String() string {
	if name, ok := thermalNames[t]; ok {
		return name
	}
	return "Unknown"
}

func (t ThermalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ThermalReading is the result of a thermal capability check: either the
// platform reports a status, or it has no thermal API at all.
type ThermalReading struct {
	State     ThermalState
	Supported bool
}

// Supported wraps a status reported by a platform that has a thermal API.
func Supported(state ThermalState) ThermalReading {
	return ThermalReading{State: state, Supported: true}
}

// Unsupported is the reading for platforms without a thermal API.
func Unsupported() ThermalReading {
	return ThermalReading{}
}

// Resolve collapses the reading into the state shown to users.
func (r ThermalReading) Resolve() ThermalState {
	if !r.Supported {
		return ThermalNotAvailable
	}
	return r.State
}
