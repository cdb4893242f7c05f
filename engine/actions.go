package engine

import (
	"errors"

	"github.com/ftahirops/twinmon/model"
)

// ErrReadOnly is returned by every control of the read-only surface.
var ErrReadOnly = errors.New("control disabled for role")

// Controls is the mutating surface the dashboard calls.
type Controls interface {
	SetEcoMode(on bool) error
	PauseAnnouncements() error
	ResumeAnnouncements() error
	OptimizeMaintenanceTasks() error
	ReadOnly() bool
}

// ControlsFor returns the surface a role may use. Roles that cannot control
// the machine get a read-only variant whose calls change nothing.
func ControlsFor(role model.Role, eng *Engine, gate *Gate) Controls {
	if !role.CanControl() {
		return readOnlyControls{}
	}
	return &engineControls{eng: eng, gate: gate}
}

type engineControls struct {
	eng  *Engine
	gate *Gate
}

func (c *engineControls) SetEcoMode(on bool) error {
	c.eng.SetEcoMode(on)
	return nil
}

func (c *engineControls) PauseAnnouncements() error {
	if c.gate != nil {
		c.gate.Pause()
	}
	return nil
}

func (c *engineControls) ResumeAnnouncements() error {
	if c.gate != nil {
		c.gate.Resume()
	}
	return nil
}

func (c *engineControls) OptimizeMaintenanceTasks() error {
	c.eng.OptimizeMaintenanceTasks()
	return nil
}

func (c *engineControls) ReadOnly() bool { return false }

type readOnlyControls struct{}

func (readOnlyControls) SetEcoMode(bool) error           { return ErrReadOnly }
func (readOnlyControls) PauseAnnouncements() error       { return ErrReadOnly }
func (readOnlyControls) ResumeAnnouncements() error      { return ErrReadOnly }
func (readOnlyControls) OptimizeMaintenanceTasks() error { return ErrReadOnly }
func (readOnlyControls) ReadOnly() bool                  { return true }
