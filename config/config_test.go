package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	def := Default()
	if cfg.IntervalSec != 1 || cfg.Role != "admin" || cfg.HTTP.Addr != def.HTTP.Addr {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Params() != engine.DefaultParams() {
		t.Fatalf("default params drifted: %+v", cfg.Params())
	}
	if cfg.Speech.Timeout != 5*time.Second {
		t.Fatalf("expected 5s speech timeout, got %s", cfg.Speech.Timeout)
	}
}

func TestLoadFileJSONOverrides(t *testing.T) {
	p := writeFile(t, "config.json", `{
  "interval_sec": 2,
  "alert_capacity": 8,
  "role": "viewer",
  "simulation": {"thresholds": {"temp_critical": 90}, "initial": {"rpm": 2800}}
}`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	params := cfg.Params()
	if cfg.IntervalSec != 2 || params.AlertCapacity != 8 || cfg.Role != "viewer" {
		t.Fatalf("top-level overrides not applied: %+v", cfg)
	}
	if params.Thresholds.TempCritical != 90 || params.Thresholds.TempWarning != 75 {
		t.Fatalf("nested override lost siblings: %+v", params.Thresholds)
	}
	if params.Initial.RPM != 2800 || params.Initial.Temperature != 65 {
		t.Fatalf("initial reading override: %+v", params.Initial)
	}
}

func TestLoadFileYAML(t *testing.T) {
	p := writeFile(t, "config.yaml", "speech:\n  kind: mqtt\n  mqtt_topic: plant/voice\nhttp:\n  addr: 0.0.0.0:9000\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Speech.Kind != "mqtt" || cfg.Speech.MQTTTopic != "plant/voice" {
		t.Fatalf("speech override: %+v", cfg.Speech)
	}
	if cfg.Speech.MQTTBroker != "tcp://127.0.0.1:1883" {
		t.Fatalf("speech default lost: %+v", cfg.Speech)
	}
	if cfg.HTTP.Addr != "0.0.0.0:9000" {
		t.Fatalf("http addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Setenv("TWINMON_INTERVAL_SEC", "3")
	t.Setenv("TWINMON_SPEECH_KIND", "command")
	t.Setenv("TWINMON_SPEECH_COMMAND", "espeak")
	t.Setenv("TWINMON_SIMULATION_ECO_ANOMALY_PROBABILITY", "0.02")

	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.IntervalSec != 3 {
		t.Fatalf("expected interval 3, got %d", cfg.IntervalSec)
	}
	if cfg.Speech.Kind != "command" || cfg.Speech.Command != "espeak" {
		t.Fatalf("speech env override: %+v", cfg.Speech)
	}
	if cfg.Simulation.Eco.AnomalyProbability != 0.02 {
		t.Fatalf("nested env override: %v", cfg.Simulation.Eco.AnomalyProbability)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"zero_interval", `{"interval_sec": 0}`, engine.ErrInvalidConfig},
		{"bad_role", `{"role": "janitor"}`, model.ErrUnknownRole},
		{"bad_probability", `{"simulation": {"normal": {"anomaly_probability": 2}}}`, engine.ErrInvalidConfig},
		{"zero_history", `{"history_capacity": 0}`, engine.ErrInvalidConfig},
		{"inverted_thresholds", `{"simulation": {"thresholds": {"temp_warning": 90}}}`, engine.ErrInvalidConfig},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, "config.json", c.body))
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestLoadFileMalformed(t *testing.T) {
	if _, err := LoadFile(writeFile(t, "config.json", "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveAndPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got := Path(); got != filepath.Join(dir, "twinmon", "config.json") {
		t.Fatalf("unexpected path %s", got)
	}

	cfg := Default()
	cfg.IntervalSec = 4
	cfg.Speech.Kind = "redis"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFile(Path())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.IntervalSec != 4 || got.Speech.Kind != "redis" {
		t.Fatalf("saved config not loaded back: %+v", got)
	}
}

func TestDataPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/twinmon"
	if cfg.DataPath() != "/srv/twinmon" {
		t.Fatalf("explicit data dir ignored: %s", cfg.DataPath())
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	cfg.DataDir = ""
	if cfg.DataPath() != filepath.Join(dir, "twinmon") {
		t.Fatalf("unexpected data path %s", cfg.DataPath())
	}
}
