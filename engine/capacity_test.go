package engine

import (
	"math"
	"testing"

	"github.com/ftahirops/twinmon/model"
)

func TestDegradeRates(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name     string
		stressed bool
		eco      bool
		want     float64
	}{
		{"base", false, false, 98.499},
		{"stressed", true, false, 98.45},
		{"eco", false, true, 98.4995},
		{"eco_ignores_stress", true, true, 98.4995},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Degrade(98.5, c.stressed, c.eco, p)
			if math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestDegradeFloorsAtZero(t *testing.T) {
	p := DefaultParams()
	if got := Degrade(0.01, true, false, p); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Degrade(0, false, false, p); got != 0 {
		t.Fatalf("expected 0 to stay 0, got %v", got)
	}
}

func TestDegradeEcoThousandTicks(t *testing.T) {
	p := DefaultParams()
	rul := p.InitialRUL
	for i := 0; i < 1000; i++ {
		rul = Degrade(rul, i%3 == 0, true, p)
	}
	if math.Abs(rul-98.0) > 1e-6 {
		t.Fatalf("expected RUL 98.0 after 1000 eco ticks, got %v", rul)
	}
}

func TestDegradeMonotonic(t *testing.T) {
	p := DefaultParams()
	rul := p.InitialRUL
	for i := 0; i < 5000; i++ {
		next := Degrade(rul, i%7 == 0, i%11 == 0, p)
		if next > rul {
			t.Fatalf("tick %d: RUL rose from %v to %v", i, rul, next)
		}
		if next < 0 || next > 100 {
			t.Fatalf("tick %d: RUL %v out of range", i, next)
		}
		rul = next
	}
}

func TestNextEfficiency(t *testing.T) {
	e := DefaultParams().Efficiency

	if got := NextEfficiency(95, model.StatusHealthy, false, e); got != 95 {
		t.Fatalf("healthy at target: expected 95, got %v", got)
	}
	if got := NextEfficiency(95, model.StatusCritical, false, e); got != 94.3 {
		t.Fatalf("degraded: expected 94.3, got %v", got)
	}

	eff := 95.0
	for i := 0; i < 200; i++ {
		next := NextEfficiency(eff, model.StatusHealthy, true, e)
		if next < eff || next > e.TargetEco {
			t.Fatalf("eco step %d: %v -> %v", i, eff, next)
		}
		eff = next
	}
	if eff < 96.9 {
		t.Fatalf("eco efficiency should settle near %v, got %v", e.TargetEco, eff)
	}
}
