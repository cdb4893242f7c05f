package engine

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsHandlerBeforeFirstTick(t *testing.T) {
	store := NewMetricsStore()
	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsHandlerExposition(t *testing.T) {
	p := DefaultParams()
	p.Initial.Temperature = 85
	eng, _ := newTestEngine(t, p, spikeEvery())
	store := NewMetricsStore()
	tk := NewInstrumentedTicker(eng, store)
	tk.Tick()
	tk.Tick()

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"twinmon_up 1",
		`twinmon_status{status="Critical"} 2`,
		"twinmon_ticks_total 2",
		"twinmon_anomalies_total 2",
		"twinmon_alerts_total 2",
		"twinmon_rul_percent ",
		"twinmon_eco_mode 0",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
	if tk.Base() != eng {
		t.Fatal("instrumented ticker must expose the wrapped engine")
	}
}
