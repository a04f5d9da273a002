package indicator

import (
	"go.uber.org/multierr"

	"doorlock/lock"
)

// Multi drives several indicators as one.
type Multi struct {
	indicators []Indicator
}

func (m *Multi) each(f func(Indicator)) {
	for _, ind := range m.indicators {
		f(ind)
	}
}

func (m *Multi) Position(p lock.Position) { m.each(func(i Indicator) { i.Position(p) }) }
func (m *Multi) Moving(op lock.Operation) { m.each(func(i Indicator) { i.Moving(op) }) }
func (m *Multi) Obstacle()                { m.each(Indicator.Obstacle) }
func (m *Multi) Calibrating()             { m.each(Indicator.Calibrating) }
func (m *Multi) ConnectionLost()          { m.each(Indicator.ConnectionLost) }
func (m *Multi) Shutdown()                { m.each(Indicator.Shutdown) }

// Release releases every indicator and returns all failures.
func (m *Multi) Release() error {
	var errs error
	m.each(func(i Indicator) { errs = multierr.Append(errs, i.Release()) })
	return errs
}
