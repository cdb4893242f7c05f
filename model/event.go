package model

import "time"

// AlertKind is the severity tier of an alert.
type AlertKind string

const (
	AlertWarning  AlertKind = "warning"
	AlertCritical AlertKind = "critical"
)

// Status returns the machine status implied by an alert of this kind.
func (k AlertKind) Status() MachineStatus {
	if k == AlertCritical {
		return StatusCritical
	}
	return StatusWarning
}

// AlertRecord is one threshold crossing raised during a tick.
// Records are immutable once created.
type AlertRecord struct {
	ID        string    `json:"id"`
	Kind      AlertKind `json:"type"`
	Message   string    `json:"msg"`
	CreatedAt time.Time `json:"created_at"`
	IsAnomaly bool      `json:"is_anomaly"`
}

// LogType groups system log entries for display.
type LogType string

const (
	LogNormal   LogType = "normal"
	LogCritical LogType = "critical"
	LogAnomaly  LogType = "anomaly"
)

// LogEntry is one line of the system log panel.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Type    LogType   `json:"type"`
}

// LogTypeFor maps an alert to the log category it is shown under.
func LogTypeFor(a AlertRecord) LogType {
	switch {
	case a.IsAnomaly:
		return LogAnomaly
	case a.Kind == AlertCritical:
		return LogCritical
	default:
		return LogNormal
	}
}
