package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/api"
)

// runServe drives the simulation headless and serves the HTTP API.
func runServe(ctx context.Context, a *app) error {
	srv := api.NewServer(a.eng, a.gate, a.metrics, a.log)
	a.eng.OnTick(srv.OnTick)

	sched, err := a.scheduler()
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	a.log.Info("serving",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.Duration("interval", a.interval()),
		zap.String("speech", a.cfg.Speech.Kind))
	return srv.ListenAndServe(ctx, a.cfg.HTTP.Addr)
}
