package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SensorReading holds one scalar value per machine sensor.
type SensorReading struct {
	Temperature float64 `json:"temperature"` // °C
	Vibration   float64 `json:"vibration"`   // mm/s
	RPM         int     `json:"rpm"`
	Power       float64 `json:"power"` // A
}

// MachineStatus represents overall machine health for one tick.
type MachineStatus int

const (
	StatusHealthy  MachineStatus = 0
	StatusWarning  MachineStatus = 1
	StatusCritical MachineStatus = 2
)

func (s MachineStatus) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusWarning:
		return "Warning"
	case StatusCritical:
		return "Critical"
	}
	return "Unknown"
}

// MarshalJSON encodes the status by name.
func (s MachineStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the status name, case-insensitively.
func (s *MachineStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "healthy":
		*s = StatusHealthy
	case "warning":
		*s = StatusWarning
	case "critical":
		*s = StatusCritical
	default:
		return fmt.Errorf("unknown machine status %q", name)
	}
	return nil
}

// State is the read surface polled by the dashboard after every tick.
// All slices are copies owned by the caller.
type State struct {
	Tick       uint64                   `json:"tick"`
	Timestamp  time.Time                `json:"timestamp"`
	Reading    SensorReading            `json:"reading"`
	Status     MachineStatus            `json:"status"`
	Alerts     []AlertRecord            `json:"alerts"`
	History    map[Metric][]MetricPoint `json:"history"`
	RUL        float64                  `json:"rul"`
	Efficiency float64                  `json:"efficiency"`
	EcoMode    bool                     `json:"eco_mode"`
	Tasks      []MaintenanceTask        `json:"tasks"`
	Logs       []LogEntry               `json:"logs"`
}

// Series returns the chart values for one metric, oldest first.
func (s *State) Series(m Metric) []float64 {
	pts := s.History[m]
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}

// RULBand classifies a remaining-useful-life percentage for display.
type RULBand int

const (
	RULOptimal RULBand = iota
	RULWarning
	RULCritical
)

func (b RULBand) String() string {
	switch b {
	case RULOptimal:
		return "optimal"
	case RULWarning:
		return "warning"
	case RULCritical:
		return "critical"
	}
	return "unknown"
}

// BandForRUL maps a RUL percentage to its display band.
func BandForRUL(pct float64) RULBand {
	switch {
	case pct < 40:
		return RULCritical
	case pct < 70:
		return RULWarning
	default:
		return RULOptimal
	}
}

// RULVerdict is the one-line prediction label shown beside the gauge.
func RULVerdict(pct float64) string {
	if pct > 50 {
		return "Optimal Performance"
	}
	return "Immediate Action Required"
}

// EcoSuggestion is the energy panel hint for the current eco flag.
func EcoSuggestion(eco bool) string {
	if eco {
		return "Power consumption reduced by ~12%."
	}
	return "Suggested: Switch to Eco Mode during idle cycles."
}
