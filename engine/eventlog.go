package engine

import (
	"sync"
	"time"

	"github.com/ftahirops/twinmon/model"
)

// SystemLog is a bounded, newest-first list of operator-facing log lines.
type SystemLog struct {
	mu      sync.Mutex
	entries []model.LogEntry
	cap     int
	now     func() time.Time
}

// NewSystemLog creates a log that keeps at most capacity entries.
func NewSystemLog(capacity int) *SystemLog {
	return &SystemLog{cap: capacity, now: time.Now}
}

// SetClock sets the time source used by Log.
func (l *SystemLog) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Log records one line stamped with the log's clock.
func (l *SystemLog) Log(typ model.LogType, msg string) {
	l.mu.Lock()
	now := l.now
	l.mu.Unlock()
	l.Add(now(), typ, msg)
}

// Add records one line.
func (l *SystemLog) Add(at time.Time, typ model.LogType, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]model.LogEntry{{Time: at, Message: msg, Type: typ}}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// AddAlerts records every alert raised in a tick, in raise order.
func (l *SystemLog) AddAlerts(alerts []model.AlertRecord) {
	for i := len(alerts) - 1; i >= 0; i-- {
		a := alerts[i]
		l.Add(a.CreatedAt, model.LogTypeFor(a), a.Message)
	}
}

// Entries returns a copy, newest first.
func (l *SystemLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of stored lines.
func (l *SystemLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
