package engine

import (
	"time"

	"github.com/ftahirops/twinmon/model"
	"github.com/google/uuid"
)

// Alert messages raised by the evaluator.
const (
	MsgAnomalyTemp = "Anomaly Detected: Sudden Temperature Spike"
	MsgAnomalyVib  = "Anomaly Detected: Abnormal Vibration Pattern"
	MsgOverheat    = "Overheating Risk detected"
	MsgTempRising  = "Temp rising above normal"
	MsgVibration   = "Abnormal Vibration (Unbalance)"
)

// Evaluate classifies an observed reading against the thresholds.
//
// Anomaly ticks only raise critical-tier alerts, framed as anomalies and
// eligible for voice. Ordinary ticks raise the regular warning and critical
// alerts, which never reach the voice channel. Temperature is checked before
// vibration, so when both fire the temperature alert comes first.
// The status is the highest severity raised; Critical dominates Warning.
func Evaluate(r model.SensorReading, isAnomaly bool, th Thresholds, now time.Time) (model.MachineStatus, []model.AlertRecord) {
	var alerts []model.AlertRecord
	raise := func(kind model.AlertKind, msg string) {
		alerts = append(alerts, model.AlertRecord{
			ID:        uuid.NewString(),
			Kind:      kind,
			Message:   msg,
			CreatedAt: now,
			IsAnomaly: isAnomaly,
		})
	}

	if isAnomaly {
		if r.Temperature > th.TempCritical {
			raise(model.AlertCritical, MsgAnomalyTemp)
		}
		if r.Vibration > th.VibCritical {
			raise(model.AlertCritical, MsgAnomalyVib)
		}
	} else {
		switch {
		case r.Temperature > th.TempCritical:
			raise(model.AlertCritical, MsgOverheat)
		case r.Temperature > th.TempWarning:
			raise(model.AlertWarning, MsgTempRising)
		}
		if r.Vibration > th.VibCritical {
			raise(model.AlertCritical, MsgVibration)
		}
	}

	return AggregateStatus(alerts), alerts
}

// AggregateStatus returns the highest severity across alerts.
func AggregateStatus(alerts []model.AlertRecord) model.MachineStatus {
	status := model.StatusHealthy
	for _, a := range alerts {
		if s := a.Kind.Status(); s > status {
			status = s
		}
	}
	return status
}

// Stressed reports whether an observed reading accelerates wear.
func Stressed(r model.SensorReading, th Thresholds) bool {
	return r.Temperature > th.StressTemp || r.Vibration > th.StressVib
}
