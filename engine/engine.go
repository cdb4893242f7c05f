package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/model"
)

// TickResult summarises one simulation step.
type TickResult struct {
	Tick      uint64
	Timestamp time.Time
	Reading   model.SensorReading // observed, possibly spiked
	Status    model.MachineStatus
	Alerts    []model.AlertRecord // raised this tick only
	IsAnomaly bool
	Stressed  bool
	RUL       float64
}

// TickFunc is called after every completed tick, outside the engine lock.
type TickFunc func(TickResult)

// Engine owns the whole simulation context: sensor state, flags, buffers
// and derived health. Each engine is independent of every other.
type Engine struct {
	params Params
	rng    Rand
	clock  clock.Clock
	log    *zap.Logger

	mu         sync.RWMutex // serializes Tick() against controls and readers
	tick       uint64
	at         time.Time
	sensors    model.SensorReading // persistent random-walk state, never spiked
	observed   model.SensorReading
	status     model.MachineStatus
	rul        float64
	efficiency float64
	eco        bool
	tasks      []model.MaintenanceTask
	onTick     []TickFunc

	Alerts  *AlertHistory
	History *MetricHistory
	Logs    *SystemLog
}

// Option customises an engine at construction.
type Option func(*Engine)

// WithRand sets the random source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine validates params and builds an engine at its initial state.
func NewEngine(p Params, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		params:     p,
		log:        zap.NewNop(),
		sensors:    p.Initial,
		observed:   p.Initial,
		status:     model.StatusHealthy,
		rul:        p.InitialRUL,
		efficiency: p.Efficiency.Initial,
		tasks:      model.DefaultMaintenanceTasks(),
		Alerts:     NewAlertHistory(p.AlertCapacity),
		History:    NewMetricHistory(p.HistoryCapacity),
		Logs:       NewSystemLog(p.LogCapacity),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRand(0)
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	e.at = e.clock.Now()
	e.Logs.SetClock(e.clock.Now)
	return e, nil
}

// OnTick registers fn to run after every tick.
func (e *Engine) OnTick(fn TickFunc) {
	e.mu.Lock()
	e.onTick = append(e.onTick, fn)
	e.mu.Unlock()
}

// Tick advances the simulation by one step: sensors, anomaly injection,
// evaluation, wear, alert and chart buffers. Flags are read once at the start.
func (e *Engine) Tick() TickResult {
	e.mu.Lock()

	eco := e.eco
	at := e.clock.Now()
	p := e.params

	e.sensors = StepSensors(e.sensors, eco, p, e.rng)
	observed, isAnomaly := MaybeSpike(e.sensors, eco, p, e.rng)
	status, alerts := Evaluate(observed, isAnomaly, p.Thresholds, at)
	stressed := Stressed(observed, p.Thresholds)

	e.rul = Degrade(e.rul, stressed, eco, p)
	e.Alerts.Push(alerts)
	e.Logs.AddAlerts(alerts)
	e.History.Record(observed, at)
	e.efficiency = NextEfficiency(e.efficiency, status, eco, p.Efficiency)

	e.tick++
	e.at = at
	e.observed = observed
	e.status = status

	res := TickResult{
		Tick:      e.tick,
		Timestamp: at,
		Reading:   observed,
		Status:    status,
		Alerts:    alerts,
		IsAnomaly: isAnomaly,
		Stressed:  stressed,
		RUL:       e.rul,
	}
	hooks := make([]TickFunc, len(e.onTick))
	copy(hooks, e.onTick)
	e.mu.Unlock()

	if len(alerts) > 0 {
		e.log.Debug("alerts raised",
			zap.Uint64("tick", res.Tick),
			zap.Stringer("status", status),
			zap.Int("count", len(alerts)),
			zap.Bool("anomaly", isAnomaly))
	}
	for _, fn := range hooks {
		fn(res)
	}
	return res
}

// State returns a copy of the full read surface.
func (e *Engine) State() model.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tasks := make([]model.MaintenanceTask, len(e.tasks))
	copy(tasks, e.tasks)
	return model.State{
		Tick:       e.tick,
		Timestamp:  e.at,
		Reading:    e.observed,
		Status:     e.status,
		Alerts:     e.Alerts.Items(),
		History:    e.History.Snapshot(),
		RUL:        e.rul,
		Efficiency: e.efficiency,
		EcoMode:    e.eco,
		Tasks:      tasks,
		Logs:       e.Logs.Entries(),
	}
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Reading returns the observed reading of the last tick.
func (e *Engine) Reading() model.SensorReading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.observed
}

// Sensors returns the persistent sensor state the random walk continues from.
func (e *Engine) Sensors() model.SensorReading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sensors
}

// Status returns the machine status of the last tick.
func (e *Engine) Status() model.MachineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// RUL returns the remaining-useful-life percentage.
func (e *Engine) RUL() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rul
}

// Efficiency returns the power efficiency percentage.
func (e *Engine) Efficiency() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.efficiency
}

// EcoMode reports whether eco mode is on.
func (e *Engine) EcoMode() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.eco
}

// TickCount returns the number of completed ticks.
func (e *Engine) TickCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// SetEcoMode switches the operating profile. It takes effect on the next tick.
func (e *Engine) SetEcoMode(on bool) {
	e.mu.Lock()
	changed := e.eco != on
	e.eco = on
	e.mu.Unlock()
	if !changed {
		return
	}
	msg := "Eco mode disabled"
	if on {
		msg = "Eco mode enabled"
	}
	e.Logs.Log(model.LogNormal, msg)
	e.log.Info("eco mode changed", zap.Bool("eco", on))
}

// MaintenanceTasks returns a copy of the maintenance schedule.
func (e *Engine) MaintenanceTasks() []model.MaintenanceTask {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.MaintenanceTask, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// OptimizeMaintenanceTasks replaces the scheduled bearing inspection with a
// predictive replacement at the top of the list. Repeat calls are no-ops.
func (e *Engine) OptimizeMaintenanceTasks() {
	opt := model.OptimizedBearingTask
	e.mu.Lock()
	if len(e.tasks) > 0 && e.tasks[0] == opt {
		e.mu.Unlock()
		return
	}
	tasks := []model.MaintenanceTask{opt}
	for _, t := range e.tasks {
		if t.ID == 3 || t.ID == opt.ID {
			continue
		}
		tasks = append(tasks, t)
	}
	e.tasks = tasks
	e.mu.Unlock()

	e.Logs.Log(model.LogNormal, fmt.Sprintf("Maintenance optimized: %s scheduled %s", opt.Task, opt.Due))
	e.log.Info("maintenance schedule optimized", zap.Int("tasks", len(tasks)))
}
