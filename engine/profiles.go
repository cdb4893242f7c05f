package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/ftahirops/twinmon/model"
)

// ErrInvalidConfig is returned when engine parameters are out of range.
var ErrInvalidConfig = errors.New("invalid engine config")

// Profile holds the operating-envelope constants that eco mode swaps out.
type Profile struct {
	TempFluctuation    float64 `json:"temp_fluctuation" mapstructure:"temp_fluctuation"`       // ±°C per tick
	PowerFluctuation   float64 `json:"power_fluctuation" mapstructure:"power_fluctuation"`     // ±A per tick
	AnomalyProbability float64 `json:"anomaly_probability" mapstructure:"anomaly_probability"` // per tick
	BaseDegradation    float64 `json:"base_degradation" mapstructure:"base_degradation"`       // RUL % per tick
	StressDegradation  float64 `json:"stress_degradation" mapstructure:"stress_degradation"`   // RUL % per stressed tick
}

// Thresholds are the fixed classification limits.
type Thresholds struct {
	TempWarning  float64 `json:"temp_warning" mapstructure:"temp_warning"`
	TempCritical float64 `json:"temp_critical" mapstructure:"temp_critical"`
	VibCritical  float64 `json:"vib_critical" mapstructure:"vib_critical"`
	StressTemp   float64 `json:"stress_temp" mapstructure:"stress_temp"`
	StressVib    float64 `json:"stress_vib" mapstructure:"stress_vib"`
}

// Efficiency drives the power efficiency easing model.
type Efficiency struct {
	Initial        float64 `json:"initial" mapstructure:"initial"`
	TargetNormal   float64 `json:"target_normal" mapstructure:"target_normal"`
	TargetEco      float64 `json:"target_eco" mapstructure:"target_eco"`
	TargetDegraded float64 `json:"target_degraded" mapstructure:"target_degraded"`
	Rate           float64 `json:"rate" mapstructure:"rate"`
}

// Params is the full set of simulation constants.
type Params struct {
	Normal Profile `json:"normal" mapstructure:"normal"`
	Eco    Profile `json:"eco" mapstructure:"eco"`

	VibFluctuation float64 `json:"vib_fluctuation" mapstructure:"vib_fluctuation"`
	RPMFluctuation float64 `json:"rpm_fluctuation" mapstructure:"rpm_fluctuation"`

	// Eco mode sheds load while draw exceeds the ceiling.
	EcoPowerCeiling float64 `json:"eco_power_ceiling" mapstructure:"eco_power_ceiling"`
	EcoPowerShed    float64 `json:"eco_power_shed" mapstructure:"eco_power_shed"`

	SpikeTemp float64 `json:"spike_temp" mapstructure:"spike_temp"`
	SpikeVib  float64 `json:"spike_vib" mapstructure:"spike_vib"`

	Thresholds Thresholds `json:"thresholds" mapstructure:"thresholds"`
	Efficiency Efficiency `json:"efficiency" mapstructure:"efficiency"`

	Initial    model.SensorReading `json:"initial" mapstructure:"initial"`
	InitialRUL float64             `json:"initial_rul" mapstructure:"initial_rul"`

	AlertCapacity   int `json:"alert_capacity" mapstructure:"alert_capacity"`
	HistoryCapacity int `json:"history_capacity" mapstructure:"history_capacity"`
	LogCapacity     int `json:"log_capacity" mapstructure:"log_capacity"`
}

// DefaultParams returns the stock machine profile.
func DefaultParams() Params {
	return Params{
		Normal: Profile{
			TempFluctuation:    0.8,
			PowerFluctuation:   1.0,
			AnomalyProbability: 0.05,
			BaseDegradation:    0.001,
			StressDegradation:  0.05,
		},
		Eco: Profile{
			TempFluctuation:    0.3,
			PowerFluctuation:   0.5,
			AnomalyProbability: 0.01,
			BaseDegradation:    0.0005,
			StressDegradation:  0.0005,
		},
		VibFluctuation:  0.2,
		RPMFluctuation:  10,
		EcoPowerCeiling: 65,
		EcoPowerShed:    0.5,
		SpikeTemp:       5,
		SpikeVib:        2,
		Thresholds: Thresholds{
			TempWarning:  75,
			TempCritical: 85,
			VibCritical:  4.5,
			StressTemp:   80,
			StressVib:    4,
		},
		Efficiency: Efficiency{
			Initial:        95,
			TargetNormal:   95,
			TargetEco:      98,
			TargetDegraded: 80,
			Rate:           0.05,
		},
		Initial: model.SensorReading{
			Temperature: 65,
			Vibration:   2.0,
			RPM:         3000,
			Power:       80,
		},
		InitialRUL:      98.5,
		AlertCapacity:   5,
		HistoryCapacity: 20,
		LogCapacity:     50,
	}
}

// ProfileFor returns the active operating profile.
func (p Params) ProfileFor(eco bool) Profile {
	if eco {
		return p.Eco
	}
	return p.Normal
}

// minDegradation is the smallest non-zero wear rate that survives RUL
// rounding to four decimals.
const minDegradation = 0.0001

// Validate rejects parameter sets the engine cannot run with.
func (p Params) Validate() error {
	if err := p.checkFinite(); err != nil {
		return err
	}
	for name, prof := range map[string]Profile{"normal": p.Normal, "eco": p.Eco} {
		if prof.AnomalyProbability < 0 || prof.AnomalyProbability > 1 {
			return fmt.Errorf("%w: %s anomaly probability %v outside [0,1]", ErrInvalidConfig, name, prof.AnomalyProbability)
		}
		if prof.TempFluctuation < 0 || prof.PowerFluctuation < 0 {
			return fmt.Errorf("%w: %s fluctuation must not be negative", ErrInvalidConfig, name)
		}
		if prof.BaseDegradation < 0 || prof.StressDegradation < 0 {
			return fmt.Errorf("%w: %s degradation must not be negative", ErrInvalidConfig, name)
		}
		for _, rate := range []float64{prof.BaseDegradation, prof.StressDegradation} {
			if rate > 0 && rate < minDegradation {
				return fmt.Errorf("%w: %s degradation %v below resolution %v", ErrInvalidConfig, name, rate, minDegradation)
			}
		}
	}
	if p.VibFluctuation < 0 || p.RPMFluctuation < 0 || p.EcoPowerShed < 0 {
		return fmt.Errorf("%w: fluctuation must not be negative", ErrInvalidConfig)
	}
	if p.Thresholds.TempWarning >= p.Thresholds.TempCritical {
		return fmt.Errorf("%w: temperature warning %v must be below critical %v",
			ErrInvalidConfig, p.Thresholds.TempWarning, p.Thresholds.TempCritical)
	}
	if p.InitialRUL < 0 || p.InitialRUL > 100 {
		return fmt.Errorf("%w: initial RUL %v outside [0,100]", ErrInvalidConfig, p.InitialRUL)
	}
	if p.Efficiency.Rate < 0 || p.Efficiency.Rate > 1 {
		return fmt.Errorf("%w: efficiency rate %v outside [0,1]", ErrInvalidConfig, p.Efficiency.Rate)
	}
	if p.AlertCapacity <= 0 || p.HistoryCapacity <= 0 || p.LogCapacity <= 0 {
		return fmt.Errorf("%w: capacities must be positive", ErrInvalidConfig)
	}
	return nil
}

func (p Params) checkFinite() error {
	fields := map[string]float64{
		"normal.temp_fluctuation":    p.Normal.TempFluctuation,
		"normal.power_fluctuation":   p.Normal.PowerFluctuation,
		"normal.anomaly_probability": p.Normal.AnomalyProbability,
		"normal.base_degradation":    p.Normal.BaseDegradation,
		"normal.stress_degradation":  p.Normal.StressDegradation,
		"eco.temp_fluctuation":       p.Eco.TempFluctuation,
		"eco.power_fluctuation":      p.Eco.PowerFluctuation,
		"eco.anomaly_probability":    p.Eco.AnomalyProbability,
		"eco.base_degradation":       p.Eco.BaseDegradation,
		"eco.stress_degradation":     p.Eco.StressDegradation,
		"vib_fluctuation":            p.VibFluctuation,
		"rpm_fluctuation":            p.RPMFluctuation,
		"eco_power_ceiling":          p.EcoPowerCeiling,
		"eco_power_shed":             p.EcoPowerShed,
		"spike_temp":                 p.SpikeTemp,
		"spike_vib":                  p.SpikeVib,
		"thresholds.temp_warning":    p.Thresholds.TempWarning,
		"thresholds.temp_critical":   p.Thresholds.TempCritical,
		"thresholds.vib_critical":    p.Thresholds.VibCritical,
		"thresholds.stress_temp":     p.Thresholds.StressTemp,
		"thresholds.stress_vib":      p.Thresholds.StressVib,
		"efficiency.initial":         p.Efficiency.Initial,
		"efficiency.target_normal":   p.Efficiency.TargetNormal,
		"efficiency.target_eco":      p.Efficiency.TargetEco,
		"efficiency.target_degraded": p.Efficiency.TargetDegraded,
		"efficiency.rate":            p.Efficiency.Rate,
		"initial.temperature":        p.Initial.Temperature,
		"initial.vibration":          p.Initial.Vibration,
		"initial.power":              p.Initial.Power,
		"initial_rul":                p.InitialRUL,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
