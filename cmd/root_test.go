package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func runJSONState(t *testing.T, args ...string) model.State {
	t.Helper()
	var out, errOut bytes.Buffer
	if err := run(append([]string{"-json", "-speech", "none"}, args...), &out, &errOut); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, errOut.String())
	}
	var st model.State
	if err := json.Unmarshal(out.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v\n%s", err, out.String())
	}
	return st
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-version"}, &out, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "twinmon v"+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestJSONModeIsDeterministicPerSeed(t *testing.T) {
	isolate(t)
	a := runJSONState(t, "-ticks", "50", "-seed", "42")
	b := runJSONState(t, "-ticks", "50", "-seed", "42")

	if a.Tick != 50 {
		t.Fatalf("tick = %d, want 50", a.Tick)
	}
	if a.Reading != b.Reading || a.RUL != b.RUL || a.Status != b.Status {
		t.Errorf("same seed diverged: %+v vs %+v", a.Reading, b.Reading)
	}
	pts := a.History[model.MetricTemperature]
	if len(pts) != 20 {
		t.Fatalf("history len = %d, want 20", len(pts))
	}
	if pts[0].Time == pts[1].Time {
		t.Errorf("chart labels not spaced: %q %q", pts[0].Time, pts[1].Time)
	}
}

func TestJSONModeEcoFlag(t *testing.T) {
	isolate(t)
	st := runJSONState(t, "-ticks", "10", "-seed", "3", "-eco")
	if !st.EcoMode {
		t.Fatal("eco flag ignored")
	}
	if st.Reading.Power > 80 {
		t.Errorf("power %.1f not shed in eco mode", st.Reading.Power)
	}
}

func TestUnknownSpeechBackendFallsBack(t *testing.T) {
	isolate(t)
	var out, errOut bytes.Buffer
	if err := run([]string{"-json", "-speech", "carrier-pigeon"}, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestBadRole(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	err := run([]string{"-json", "-role", "guest"}, &out, &out)
	if !errors.Is(err, model.ErrUnknownRole) {
		t.Fatalf("err = %v, want ErrUnknownRole", err)
	}
}

func TestBadFlag(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-nope"}, &out, &out); err == nil {
		t.Fatal("expected flag error")
	}
}

func TestRecordAndReplay(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "run.jsonl")
	runJSONState(t, "-ticks", "3", "-seed", "9", "-record", path)

	var out bytes.Buffer
	if err := run([]string{"-replay", path}, &out, &out); err != nil {
		t.Fatalf("replay: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Ticks:      3", "(2s)", "Healthy:"} {
		if !strings.Contains(got, want) {
			t.Errorf("replay output missing %q:\n%s", want, got)
		}
	}
}

func TestReplayMissingFile(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-replay", filepath.Join(t.TempDir(), "missing")}, &out, &out); err == nil {
		t.Fatal("expected error")
	}
}

func TestWatchModeStopsAfterCount(t *testing.T) {
	isolate(t)
	var out, errOut bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- run([]string{"-watch", "-count", "1", "-speech", "none", "-seed", "1"}, &out, &errOut) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop")
	}
	got := out.String()
	if !strings.Contains(got, "#1/1") || !strings.Contains(got, "SENSORS") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestWatchFrame(t *testing.T) {
	th := engine.DefaultParams().Thresholds
	at := time.Date(2026, 1, 30, 14, 0, 5, 0, time.UTC)
	st := &model.State{
		Timestamp: at,
		Reading:   model.SensorReading{Temperature: 88.2, Vibration: 5.1, RPM: 3012, Power: 80},
		Status:    model.StatusCritical,
		RUL:       35,
		Alerts: []model.AlertRecord{
			{Kind: model.AlertCritical, Message: engine.MsgAnomalyTemp, CreatedAt: at, IsAnomaly: true},
		},
	}
	got := watchFrame(st, th, "on", 2, 0, time.Second)
	for _, want := range []string{"CRITICAL", "14:00:05", "3,012", "88.2", "#2", "[anomaly]", "Immediate Action Required", "ALERTS (1)"} {
		if !strings.Contains(got, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}
