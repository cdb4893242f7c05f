package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

// midRand draws 0.5 for every sensor (no drift) and the given value for the
// anomaly check.
type midRand struct {
	anomaly float64
	n       int
}

func (r *midRand) Float64() float64 {
	r.n++
	if r.n%5 == 0 {
		return r.anomaly
	}
	return 0.5
}

func newTestServer(t *testing.T, initialTemp float64, anomaly float64) (*Server, *engine.Engine) {
	t.Helper()
	p := engine.DefaultParams()
	p.Initial.Temperature = initialTemp
	eng, err := engine.NewEngine(p, engine.WithRand(&midRand{anomaly: anomaly}))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	gate := engine.NewGate(eng.Alerts, nil, nil)
	eng.OnTick(gate.OnTick)
	return NewServer(eng, gate, nil, nil), eng
}

func do(t *testing.T, h http.Handler, method, path, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if role != "" {
		req.Header.Set(RoleHeader, role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestReadEndpoints(t *testing.T) {
	srv, eng := newTestServer(t, 90, 0.9)
	for i := 0; i < 3; i++ {
		eng.Tick()
	}
	h := srv.Router()

	cases := []struct {
		path string
		code int
	}{
		{"/health", http.StatusOK},
		{"/api/state", http.StatusOK},
		{"/api/readings", http.StatusOK},
		{"/api/alerts", http.StatusOK},
		{"/api/history/temperature", http.StatusOK},
		{"/api/history/RPM", http.StatusOK},
		{"/api/history/humidity", http.StatusNotFound},
		{"/api/rul", http.StatusOK},
		{"/api/power", http.StatusOK},
		{"/api/logs", http.StatusOK},
		{"/api/tasks", http.StatusOK},
		{"/api/voice", http.StatusOK},
		{"/metrics", http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, c.path, "", "")
			if rec.Code != c.code {
				t.Fatalf("expected %d, got %d: %s", c.code, rec.Code, rec.Body.String())
			}
		})
	}

	var st model.State
	decodeBody(t, do(t, h, http.MethodGet, "/api/state", "", ""), &st)
	if st.Tick != 3 || st.Status != model.StatusCritical || len(st.Alerts) != 3 {
		t.Fatalf("unexpected state tick=%d status=%s alerts=%d", st.Tick, st.Status, len(st.Alerts))
	}

	var hist struct {
		Metric string              `json:"metric"`
		Unit   string              `json:"unit"`
		Points []model.MetricPoint `json:"points"`
	}
	decodeBody(t, do(t, h, http.MethodGet, "/api/history/temperature", "", ""), &hist)
	if hist.Unit != "°C" || len(hist.Points) != 3 || hist.Points[2].Value != 90 {
		t.Fatalf("unexpected history %+v", hist)
	}

	var rul map[string]interface{}
	decodeBody(t, do(t, h, http.MethodGet, "/api/rul", "", ""), &rul)
	if rul["band"] != "optimal" || rul["verdict"] != "Optimal Performance" {
		t.Fatalf("unexpected rul payload %v", rul)
	}
}

func TestControlEndpointsRespectRole(t *testing.T) {
	srv, eng := newTestServer(t, 65, 0.9)
	h := srv.Router()

	for _, role := range []string{"", "viewer"} {
		rec := do(t, h, http.MethodPost, "/api/eco", role, `{"enabled": true}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("role %q: expected 403, got %d", role, rec.Code)
		}
		for _, path := range []string{"/api/voice/pause", "/api/voice/resume", "/api/tasks/optimize"} {
			if rec := do(t, h, http.MethodPost, path, role, ""); rec.Code != http.StatusForbidden {
				t.Fatalf("role %q %s: expected 403, got %d", role, path, rec.Code)
			}
		}
	}
	if eng.EcoMode() || srv.gate.Paused() || eng.MaintenanceTasks()[0].ID != 1 {
		t.Fatal("forbidden calls changed state")
	}

	if rec := do(t, h, http.MethodPost, "/api/eco", "intern", `{"enabled": true}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/eco", "admin", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing flag: expected 400, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/eco", "admin", `{"enabled": true}`)
	if rec.Code != http.StatusOK || !eng.EcoMode() {
		t.Fatalf("admin eco: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodPost, "/api/voice/pause", "technician", ""); rec.Code != http.StatusOK || !srv.gate.Paused() {
		t.Fatalf("technician pause: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/voice/resume", "tech", ""); rec.Code != http.StatusOK || srv.gate.Paused() {
		t.Fatalf("technician resume: %d", rec.Code)
	}

	var tasks []model.MaintenanceTask
	rec = do(t, h, http.MethodPost, "/api/tasks/optimize", "admin", "")
	decodeBody(t, rec, &tasks)
	if len(tasks) != 3 || tasks[0].ID != 4 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	var power map[string]interface{}
	decodeBody(t, do(t, h, http.MethodGet, "/api/power", "", ""), &power)
	if power["eco_mode"] != true || power["suggestion"] != model.EcoSuggestion(true) {
		t.Fatalf("unexpected power payload %v", power)
	}
}

func TestMetricsAfterTick(t *testing.T) {
	p := engine.DefaultParams()
	eng, err := engine.NewEngine(p, engine.WithRand(&midRand{anomaly: 0.9}))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	store := engine.NewMetricsStore()
	engine.NewInstrumentedTicker(eng, store).Tick()

	rec := do(t, NewServer(eng, nil, store, nil).Router(), http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "twinmon_ticks_total 1") {
		t.Fatalf("unexpected metrics %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWebSocketStream(t *testing.T) {
	srv, eng := newTestServer(t, 90, 0.9)
	eng.OnTick(srv.OnTick)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	type frame struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	read := func() frame {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		return f
	}

	if f := read(); f.Type != "state" {
		t.Fatalf("expected initial state frame, got %s", f.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	eng.Tick()
	if f := read(); f.Type != "alerts" {
		t.Fatalf("expected alerts frame, got %s", f.Type)
	}
	f := read()
	if f.Type != "state" {
		t.Fatalf("expected state frame, got %s", f.Type)
	}
	var st model.State
	if err := json.Unmarshal(f.Payload, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.Tick != 1 || st.Status != model.StatusCritical {
		t.Fatalf("unexpected streamed state tick=%d status=%s", st.Tick, st.Status)
	}
}

func TestWebSocketRejectedWithoutHub(t *testing.T) {
	tests := []struct {
		name  string
		start func(h *Hub)
	}{
		{"never_started", func(h *Hub) {}},
		{"stopped", func(h *Hub) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			h.Run(ctx)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, 65, 0.9)
			srv.registerTimeout = 50 * time.Millisecond
			tt.start(srv.Hub())

			ts := httptest.NewServer(srv.Router())
			defer ts.Close()

			conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()

			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, err = conn.ReadMessage()
			if err == nil {
				t.Fatal("expected the server to drop the connection")
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				t.Fatalf("connection left hanging: %v", err)
			}
			if srv.Hub().Clients() != 0 {
				t.Fatalf("rejected client was registered")
			}
		})
	}
}
