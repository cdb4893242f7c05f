package engine

import (
	"math"
	"testing"

	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/util"
)

func TestStepSensorsMidpointDrawKeepsReading(t *testing.T) {
	p := DefaultParams()
	got := StepSensors(p.Initial, false, p, &seqRand{})
	if got != p.Initial {
		t.Fatalf("expected unchanged reading %+v, got %+v", p.Initial, got)
	}
}

func TestStepSensorsEcoShedsPowerAboveCeiling(t *testing.T) {
	p := DefaultParams()
	got := StepSensors(p.Initial, true, p, &seqRand{})
	if got.Power != 79.5 {
		t.Fatalf("eco power above ceiling: expected 79.5, got %v", got.Power)
	}

	below := p.Initial
	below.Power = 60
	got = StepSensors(below, true, p, &seqRand{})
	if got.Power != 60 {
		t.Fatalf("eco power below ceiling: expected 60, got %v", got.Power)
	}
}

func TestStepSensorsExtremeDraws(t *testing.T) {
	p := DefaultParams()
	low := StepSensors(p.Initial, false, p, &seqRand{vals: []float64{0}})
	if low.Temperature != 64.2 || low.Vibration != 1.8 || low.RPM != 2990 || low.Power != 79 {
		t.Fatalf("lowest draw: got %+v", low)
	}
	lowEco := StepSensors(p.Initial, true, p, &seqRand{vals: []float64{0}})
	if lowEco.Temperature != 64.7 {
		t.Fatalf("eco lowest draw: expected temperature 64.7, got %v", lowEco.Temperature)
	}
	// 79.5 from the walk, then 0.5 shed.
	if lowEco.Power != 79 {
		t.Fatalf("eco lowest draw: expected power 79, got %v", lowEco.Power)
	}
}

func TestStepSensorsBoundedAndRounded(t *testing.T) {
	p := DefaultParams()
	for _, eco := range []bool{false, true} {
		rng := NewRand(42)
		prof := p.ProfileFor(eco)
		prev := p.Initial
		for i := 0; i < 2000; i++ {
			next := StepSensors(prev, eco, p, rng)
			if d := math.Abs(next.Temperature - prev.Temperature); d > prof.TempFluctuation+0.051 {
				t.Fatalf("eco=%v step %d: temperature moved %v", eco, i, d)
			}
			if next.Vibration < 0 || next.RPM < 0 || next.Power < 0 {
				t.Fatalf("eco=%v step %d: negative reading %+v", eco, i, next)
			}
			if util.Round(next.Temperature, 1) != next.Temperature {
				t.Fatalf("temperature %v not rounded to 1 decimal", next.Temperature)
			}
			if util.Round(next.Vibration, 2) != next.Vibration {
				t.Fatalf("vibration %v not rounded to 2 decimals", next.Vibration)
			}
			if util.Round(next.Power, 1) != next.Power {
				t.Fatalf("power %v not rounded to 1 decimal", next.Power)
			}
			prev = next
		}
	}
}

func TestMaybeSpike(t *testing.T) {
	p := DefaultParams()
	base := model.SensorReading{Temperature: 70, Vibration: 2.5, RPM: 3000, Power: 80}

	cases := []struct {
		name  string
		draw  float64
		eco   bool
		spike bool
	}{
		{"normal_hit", 0.04, false, true},
		{"normal_miss", 0.05, false, false},
		{"eco_miss_at_normal_rate", 0.04, true, false},
		{"eco_hit", 0.005, true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, hit := MaybeSpike(base, c.eco, p, &seqRand{vals: []float64{c.draw}})
			if hit != c.spike {
				t.Fatalf("expected spike=%v, got %v", c.spike, hit)
			}
			if !c.spike {
				if got != base {
					t.Fatalf("miss must return reading unchanged, got %+v", got)
				}
				return
			}
			if got.Temperature != 75 || got.Vibration != 4.5 {
				t.Fatalf("expected +5°C/+2mm/s spike, got %+v", got)
			}
			if got.RPM != base.RPM || got.Power != base.Power {
				t.Fatalf("spike must only touch temperature and vibration, got %+v", got)
			}
		})
	}
	if base.Temperature != 70 {
		t.Fatal("MaybeSpike modified its input")
	}
}
