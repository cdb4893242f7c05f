package engine

import (
	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/util"
)

// MaybeSpike draws one anomaly event and, on a hit, returns the reading with
// a transient offset on temperature and vibration. The input is not modified;
// callers must keep the persistent state separate from the observed value.
func MaybeSpike(r model.SensorReading, eco bool, p Params, rng Rand) (model.SensorReading, bool) {
	if rng.Float64() >= p.ProfileFor(eco).AnomalyProbability {
		return r, false
	}
	spiked := r
	spiked.Temperature = util.Round(r.Temperature+p.SpikeTemp, 1)
	spiked.Vibration = util.Round(r.Vibration+p.SpikeVib, 2)
	return spiked, true
}
