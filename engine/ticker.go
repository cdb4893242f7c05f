package engine

// Ticker abstracts something that advances the simulation one step.
type Ticker interface {
	Tick() TickResult
	Base() *Engine
}

// Base returns itself for the default engine ticker.
func (e *Engine) Base() *Engine {
	return e
}
