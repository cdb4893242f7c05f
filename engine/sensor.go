package engine

import (
	"math"

	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/util"
)

// StepSensors advances the persistent sensor state by one random-walk step.
// Draw order is temperature, vibration, rpm, power.
func StepSensors(prev model.SensorReading, eco bool, p Params, rng Rand) model.SensorReading {
	prof := p.ProfileFor(eco)

	next := model.SensorReading{
		Temperature: util.Round(prev.Temperature+jitter(rng, prof.TempFluctuation), 1),
		Vibration:   util.Round(util.FloorAt(prev.Vibration+jitter(rng, p.VibFluctuation), 0), 2),
		RPM:         int(math.Floor(util.FloorAt(float64(prev.RPM)+jitter(rng, p.RPMFluctuation), 0))),
		Power:       util.Round(prev.Power+jitter(rng, prof.PowerFluctuation), 1),
	}

	if eco && next.Power > p.EcoPowerCeiling {
		next.Power = util.Round(next.Power-p.EcoPowerShed, 1)
	}
	next.Power = util.FloorAt(next.Power, 0)

	return next
}
