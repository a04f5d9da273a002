package lock

import log "github.com/sirupsen/logrus"

// Tick runs one iteration of the control loop.
func (c *Controller) Tick() {
	now := c.clock.Now()
	pressed := c.button.update(c.pins.Button.Get(), now, c.timing.Debounce)
	if c.moving {
		c.watch(now)
		return
	}
	if c.calibration != CalibrationNone {
		c.calibrate()
		return
	}
	doorOpen := c.pins.Door.Get()
	lockMode := !c.pins.DayNight.Get()

	if pressed {
		switch c.position {
		case Released:
			c.Dispatch(OpOpen)
			return
		case Locked:
			c.Dispatch(OpUnlock)
			return
		}
	}
	switch c.position {
	case Released:
		if lockMode && !doorOpen {
			c.Dispatch(OpLock)
		}
	case Open:
		if doorOpen {
			c.Dispatch(OpRelease)
		} else if !now.Before(c.securityDeadline) {
			log.Infof("lock: door not opened within %s", c.timing.SecurityTimeout)
			// Re-armed so a refused stroke is retried once per window.
			c.securityDeadline = now.Add(c.timing.SecurityTimeout)
			c.notify(Event{Type: EventSecurityTimeout, Position: c.position})
			if lockMode {
				c.Dispatch(OpLock)
			} else {
				c.Dispatch(OpRelease)
			}
		}
	}
}

// Dispatch records op as the requested operation and starts the motor.
func (c *Controller) Dispatch(op Operation) bool {
	if c.moving {
		return false
	}
	c.operation = op
	if !c.StartMotor(op) {
		c.operation = OpNone
		return false
	}
	return true
}
