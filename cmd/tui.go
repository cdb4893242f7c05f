package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/ui"
)

// runTUI runs the dashboard. Ticks are pushed into the program as they
// complete; the scheduler stops when the program exits.
func runTUI(a *app) error {
	m := ui.NewModel(a.eng, a.gate, a.role, a.interval())
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.eng.OnTick(func(r engine.TickResult) { p.Send(ui.TickMsg(r)) })

	sched, err := a.scheduler()
	if err != nil {
		return err
	}
	if err := sched.Start(context.Background()); err != nil {
		return err
	}
	defer sched.Stop()

	_, err = p.Run()
	return err
}
