package engine

import (
	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/util"
)

// Degrade applies one tick of wear to the remaining-useful-life percentage.
// Eco mode replaces both rates, so stress does not matter while it is on.
// The result never rises and never drops below zero.
func Degrade(prev float64, stressed, eco bool, p Params) float64 {
	prof := p.ProfileFor(eco)
	rate := prof.BaseDegradation
	if stressed {
		rate = prof.StressDegradation
	}
	next := util.Round(prev-rate, 4)
	if next > prev {
		next = prev
	}
	return util.Clamp(next, 0, 100)
}

// NextEfficiency eases power efficiency toward the target for this tick.
func NextEfficiency(prev float64, status model.MachineStatus, eco bool, e Efficiency) float64 {
	target := e.TargetNormal
	if eco {
		target = e.TargetEco
	}
	if status != model.StatusHealthy {
		target = e.TargetDegraded
	}
	return util.Clamp(util.Round(prev+(target-prev)*e.Rate, 1), 0, 100)
}
