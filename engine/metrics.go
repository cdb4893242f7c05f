package engine

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ftahirops/twinmon/model"
)

// MetricsStore holds the latest state for exporters.
type MetricsStore struct {
	mu    sync.RWMutex
	state *model.State
	ts    time.Time
	ticks uint64
	anoms uint64
	raise uint64
}

// NewMetricsStore creates a new store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{}
}

// Update stores the latest state and tick counters.
func (s *MetricsStore) Update(st model.State, res TickResult) {
	s.mu.Lock()
	s.state = &st
	s.ts = time.Now()
	s.ticks++
	if res.IsAnomaly {
		s.anoms++
	}
	s.raise += uint64(len(res.Alerts))
	s.mu.Unlock()
}

// Snapshot returns the latest stored state.
func (s *MetricsStore) Snapshot() (*model.State, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.ts
}

// Handler exposes Prometheus metrics for the latest state.
func (s *MetricsStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		st := s.state
		ticks, anoms, raised := s.ticks, s.anoms, s.raise
		s.mu.RUnlock()
		if st == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("# no data yet\n"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writePrometheus(w, st, ticks, anoms, raised)
	})
}

// instrumentedTicker updates a metrics store on each tick.
type instrumentedTicker struct {
	inner Ticker
	store *MetricsStore
}

// NewInstrumentedTicker wraps a ticker and updates the metrics store.
func NewInstrumentedTicker(inner Ticker, store *MetricsStore) Ticker {
	return &instrumentedTicker{inner: inner, store: store}
}

func (t *instrumentedTicker) Tick() TickResult {
	res := t.inner.Tick()
	t.store.Update(t.inner.Base().State(), res)
	return res
}

func (t *instrumentedTicker) Base() *Engine {
	return t.inner.Base()
}

func writePrometheus(w io.Writer, st *model.State, ticks, anoms, raised uint64) {
	write := func(format string, args ...interface{}) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	write("# TYPE twinmon_up gauge\n")
	write("twinmon_up 1\n")
	write("# TYPE twinmon_status gauge\n")
	write("twinmon_status{status=%q} %d\n", st.Status.String(), st.Status)

	write("# TYPE twinmon_temperature_celsius gauge\n")
	write("twinmon_temperature_celsius %f\n", st.Reading.Temperature)
	write("# TYPE twinmon_vibration_mm_s gauge\n")
	write("twinmon_vibration_mm_s %f\n", st.Reading.Vibration)
	write("# TYPE twinmon_rpm gauge\n")
	write("twinmon_rpm %d\n", st.Reading.RPM)
	write("# TYPE twinmon_power_amps gauge\n")
	write("twinmon_power_amps %f\n", st.Reading.Power)

	write("# TYPE twinmon_rul_percent gauge\n")
	write("twinmon_rul_percent %f\n", st.RUL)
	write("# TYPE twinmon_power_efficiency_percent gauge\n")
	write("twinmon_power_efficiency_percent %f\n", st.Efficiency)
	eco := 0
	if st.EcoMode {
		eco = 1
	}
	write("# TYPE twinmon_eco_mode gauge\n")
	write("twinmon_eco_mode %d\n", eco)
	write("# TYPE twinmon_alerts_buffered gauge\n")
	write("twinmon_alerts_buffered %d\n", len(st.Alerts))

	write("# TYPE twinmon_ticks_total counter\n")
	write("twinmon_ticks_total %d\n", ticks)
	write("# TYPE twinmon_anomalies_total counter\n")
	write("twinmon_anomalies_total %d\n", anoms)
	write("# TYPE twinmon_alerts_total counter\n")
	write("twinmon_alerts_total %d\n", raised)
}
