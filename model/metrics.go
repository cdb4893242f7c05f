package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownMetric is returned when a metric name cannot be parsed.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric names one charted sensor series.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricVibration   Metric = "vibration"
	MetricRPM         Metric = "rpm"
	MetricPower       Metric = "power"
)

// Metrics lists every charted metric in display order.
var Metrics = []Metric{MetricTemperature, MetricVibration, MetricRPM, MetricPower}

// ParseMetric resolves a metric by name.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricTemperature:
		return "°C"
	case MetricVibration:
		return "mm/s"
	case MetricRPM:
		return "rpm"
	case MetricPower:
		return "A"
	}
	return ""
}

// Value extracts the metric from a reading.
func (m Metric) Value(r SensorReading) float64 {
	switch m {
	case MetricTemperature:
		return r.Temperature
	case MetricVibration:
		return r.Vibration
	case MetricRPM:
		return float64(r.RPM)
	case MetricPower:
		return r.Power
	}
	return 0
}

// MetricPoint is one chart sample. Time is the wall-clock label.
type MetricPoint struct {
	Time      string    `json:"time"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"-"`
}

// TimeLabel formats a tick timestamp the way chart axes show it.
func TimeLabel(t time.Time) string {
	return t.Format("15:04:05")
}
