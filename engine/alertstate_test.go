package engine

import (
	"testing"
	"time"

	"github.com/ftahirops/twinmon/model"
)

func TestEvaluate(t *testing.T) {
	th := DefaultParams().Thresholds
	now := time.Date(2026, 1, 30, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		temp     float64
		vib      float64
		anomaly  bool
		status   model.MachineStatus
		messages []string
	}{
		{"nominal", 70, 2.0, false, model.StatusHealthy, nil},
		{"overheat", 90, 2.0, false, model.StatusCritical, []string{MsgOverheat}},
		{"overheat_anomaly", 90, 2.0, true, model.StatusCritical, []string{MsgAnomalyTemp}},
		{"warming", 80, 2.0, false, model.StatusWarning, []string{MsgTempRising}},
		{"warming_anomaly_silent", 80, 2.0, true, model.StatusHealthy, nil},
		{"warming_and_vibration", 80, 5.0, false, model.StatusCritical, []string{MsgTempRising, MsgVibration}},
		{"double_anomaly", 90, 5.0, true, model.StatusCritical, []string{MsgAnomalyTemp, MsgAnomalyVib}},
		{"vibration_anomaly_only", 70, 4.6, true, model.StatusCritical, []string{MsgAnomalyVib}},
		{"temp_critical_boundary", 85, 2.0, false, model.StatusWarning, []string{MsgTempRising}},
		{"temp_warning_boundary", 75, 2.0, false, model.StatusHealthy, nil},
		{"vibration_boundary", 70, 4.5, false, model.StatusHealthy, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := model.SensorReading{Temperature: c.temp, Vibration: c.vib, RPM: 3000, Power: 80}
			status, alerts := Evaluate(r, c.anomaly, th, now)
			if status != c.status {
				t.Fatalf("expected status %s, got %s", c.status, status)
			}
			if len(alerts) != len(c.messages) {
				t.Fatalf("expected %d alerts, got %d: %+v", len(c.messages), len(alerts), alerts)
			}
			for i, a := range alerts {
				if a.Message != c.messages[i] {
					t.Fatalf("alert %d: expected %q, got %q", i, c.messages[i], a.Message)
				}
				if a.IsAnomaly != c.anomaly {
					t.Fatalf("alert %d: expected IsAnomaly=%v", i, c.anomaly)
				}
				if c.anomaly && a.Kind != model.AlertCritical {
					t.Fatalf("anomaly alerts must be critical, got %s", a.Kind)
				}
				if !a.CreatedAt.Equal(now) {
					t.Fatalf("alert %d: expected CreatedAt %v, got %v", i, now, a.CreatedAt)
				}
				if a.ID == "" {
					t.Fatalf("alert %d has empty ID", i)
				}
			}
		})
	}
}

func TestEvaluateUniqueIDs(t *testing.T) {
	th := DefaultParams().Thresholds
	seen := make(map[string]bool)
	r := model.SensorReading{Temperature: 90, Vibration: 5}
	for i := 0; i < 200; i++ {
		_, alerts := Evaluate(r, i%2 == 0, th, time.Now())
		for _, a := range alerts {
			if seen[a.ID] {
				t.Fatalf("duplicate alert ID %s", a.ID)
			}
			seen[a.ID] = true
		}
	}
}

func TestAggregateStatus(t *testing.T) {
	if got := AggregateStatus(nil); got != model.StatusHealthy {
		t.Fatalf("no alerts: expected healthy, got %s", got)
	}
	mixed := []model.AlertRecord{{Kind: model.AlertWarning}, {Kind: model.AlertCritical}}
	if got := AggregateStatus(mixed); got != model.StatusCritical {
		t.Fatalf("critical must dominate, got %s", got)
	}
	if got := AggregateStatus(mixed[:1]); got != model.StatusWarning {
		t.Fatalf("warning only: got %s", got)
	}
}

func TestStressed(t *testing.T) {
	th := DefaultParams().Thresholds
	cases := []struct {
		temp, vib float64
		want      bool
	}{
		{70, 2, false},
		{80, 4, false},
		{80.1, 2, true},
		{70, 4.01, true},
	}
	for _, c := range cases {
		got := Stressed(model.SensorReading{Temperature: c.temp, Vibration: c.vib}, th)
		if got != c.want {
			t.Fatalf("Stressed(%v, %v) = %v, want %v", c.temp, c.vib, got, c.want)
		}
	}
}
