package indicator

import "doorlock/lock"

// Noop implements Indicator but does nothing.
// Used when no indicators are configured.
type Noop struct{}

func (n *Noop) Position(p lock.Position) {}
func (n *Noop) Moving(op lock.Operation) {}
func (n *Noop) Obstacle()                {}
func (n *Noop) Calibrating()             {}
func (n *Noop) ConnectionLost()          {}
func (n *Noop) Shutdown()                {}
func (n *Noop) Release() error           { return nil }
