package engine

import (
	"sync"
	"time"

	"github.com/ftahirops/twinmon/model"
)

// AlertHistory keeps the most recent alerts, newest first.
// Entries leave only when pushed out by newer ones.
type AlertHistory struct {
	items []model.AlertRecord
	cap   int
	mu    sync.RWMutex
}

// NewAlertHistory creates an alert buffer with the given capacity.
func NewAlertHistory(capacity int) *AlertHistory {
	return &AlertHistory{
		items: make([]model.AlertRecord, 0, capacity),
		cap:   capacity,
	}
}

// Push prepends this tick's alerts, keeping their order, and evicts the
// oldest entries beyond capacity. An empty push leaves the buffer unchanged.
func (h *AlertHistory) Push(alerts []model.AlertRecord) {
	if len(alerts) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	combined := make([]model.AlertRecord, 0, len(alerts)+len(h.items))
	combined = append(combined, alerts...)
	combined = append(combined, h.items...)
	if len(combined) > h.cap {
		combined = combined[:h.cap]
	}
	h.items = combined
}

// Len returns the number of alerts stored.
func (h *AlertHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Head returns a copy of the newest alert.
func (h *AlertHistory) Head() (model.AlertRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.items) == 0 {
		return model.AlertRecord{}, false
	}
	return h.items[0], true
}

// Items returns a copy of the buffer, newest first.
func (h *AlertHistory) Items() []model.AlertRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.AlertRecord, len(h.items))
	copy(out, h.items)
	return out
}

// MetricSeries is a ring buffer of chart points for one metric.
type MetricSeries struct {
	buf  []model.MetricPoint
	head int
	size int
	cap  int
	mu   sync.RWMutex
}

// NewMetricSeries creates a ring buffer with the given capacity.
func NewMetricSeries(capacity int) *MetricSeries {
	return &MetricSeries{
		buf: make([]model.MetricPoint, capacity),
		cap: capacity,
	}
}

// Append adds a point at the tail, dropping the oldest once full.
func (s *MetricSeries) Append(p model.MetricPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf[s.head] = p
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}
}

// Len returns the number of points stored.
func (s *MetricSeries) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Latest returns a copy of the most recent point.
func (s *MetricSeries) Latest() (model.MetricPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.size == 0 {
		return model.MetricPoint{}, false
	}
	return s.buf[(s.head-1+s.cap)%s.cap], true
}

// Points returns a copy of the window, oldest first.
func (s *MetricSeries) Points() []model.MetricPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MetricPoint, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.buf[(s.head-s.size+i+s.cap)%s.cap]
	}
	return out
}

// MetricHistory holds one independent series per charted metric.
type MetricHistory struct {
	series map[model.Metric]*MetricSeries
}

// NewMetricHistory creates a series for every metric.
func NewMetricHistory(capacity int) *MetricHistory {
	h := &MetricHistory{series: make(map[model.Metric]*MetricSeries, len(model.Metrics))}
	for _, m := range model.Metrics {
		h.series[m] = NewMetricSeries(capacity)
	}
	return h
}

// Record appends one point per metric from the observed reading.
func (h *MetricHistory) Record(r model.SensorReading, at time.Time) {
	label := model.TimeLabel(at)
	for _, m := range model.Metrics {
		h.series[m].Append(model.MetricPoint{Time: label, Value: m.Value(r), Timestamp: at})
	}
}

// Series returns the buffer for a metric, or nil if unknown.
func (h *MetricHistory) Series(m model.Metric) *MetricSeries {
	return h.series[m]
}

// Snapshot copies every series, oldest first.
func (h *MetricHistory) Snapshot() map[model.Metric][]model.MetricPoint {
	out := make(map[model.Metric][]model.MetricPoint, len(h.series))
	for m, s := range h.series {
		out[m] = s.Points()
	}
	return out
}
