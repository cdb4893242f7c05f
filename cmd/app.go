package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/config"
	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/speech"
)

// app is the wired simulation shared by every mode.
type app struct {
	cfg      config.Config
	opts     Options
	role     model.Role
	log      *zap.Logger
	eng      *engine.Engine
	metrics  *engine.MetricsStore
	ticker   engine.Ticker
	gate     *engine.Gate
	recorder *engine.Recorder
	clock    *clock.Mock // set for offline runs only
	closers  []func() error
}

// newApp builds the engine, tick chain and voice gate. Offline runs use a
// mock clock advanced by one interval per tick so timestamps stay spaced.
func newApp(cfg config.Config, opts Options, role model.Role, log *zap.Logger, offline bool) (*app, error) {
	a := &app{cfg: cfg, opts: opts, role: role, log: log}

	engOpts := []engine.Option{engine.WithLogger(log)}
	if cfg.Seed != 0 {
		engOpts = append(engOpts, engine.WithRand(engine.NewRand(cfg.Seed)))
	}
	if offline {
		a.clock = clock.NewMock()
		a.clock.Set(time.Now().Truncate(time.Second))
		engOpts = append(engOpts, engine.WithClock(a.clock))
	}
	eng, err := engine.NewEngine(cfg.Params(), engOpts...)
	if err != nil {
		return nil, err
	}
	a.eng = eng
	if opts.Eco {
		eng.SetEcoMode(true)
	}

	a.metrics = engine.NewMetricsStore()
	a.ticker = engine.NewInstrumentedTicker(eng, a.metrics)
	if opts.RecordPath != "" {
		f, err := os.Create(opts.RecordPath)
		if err != nil {
			return nil, fmt.Errorf("cannot create record file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		a.recorder = engine.NewRecorder(a.ticker, f, log)
		a.ticker = a.recorder
	}

	sp, err := speech.New(cfg.Speech, log)
	if err != nil {
		log.Warn("voice backend unavailable, announcing to the log instead",
			zap.String("kind", cfg.Speech.Kind), zap.Error(err))
		sp = speech.NewLogSpeaker(log)
	}
	a.closers = append(a.closers, sp.Close)

	a.gate = engine.NewGate(eng.Alerts, sp, log)
	a.gate.LogTo(eng.Logs)
	eng.OnTick(a.gate.OnTick)
	// Closers run in reverse, so the gate stops before its speaker.
	a.closers = append(a.closers, func() error {
		a.gate.Close()
		return nil
	})
	return a, nil
}

func (a *app) interval() time.Duration {
	return time.Duration(a.cfg.IntervalSec) * time.Second
}

// step runs one tick synchronously, advancing the offline clock.
func (a *app) step() engine.TickResult {
	res := a.ticker.Tick()
	if a.clock != nil {
		a.clock.Add(a.interval())
	}
	return res
}

func (a *app) scheduler() (*engine.Scheduler, error) {
	return engine.NewScheduler(a.ticker, a.interval(), engine.WithSchedulerLogger(a.log))
}

// close releases speakers and recording files, newest first.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
