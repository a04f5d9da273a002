package lock

import log "github.com/sirupsen/logrus"

type direction int

const (
	dirNone direction = iota
	dirOpen
	dirClose
)

// StartMotor starts the motion for op. It returns false if the motor is
// already running or the operation could not be started.
func (c *Controller) StartMotor(op Operation) bool {
	if c.moving {
		return false
	}
	var dir direction
	var target int
	switch op {
	case OpOpen:
		// Run past the calibrated length so the stall at the mechanical
		// limit stops the motor and the latch spring is overpowered.
		dir, target = dirOpen, c.timing.FullTravel
	case OpRelease:
		if c.policy.SkipRelease {
			// No latch stroke to drive; the door is released in place.
			log.Printf("lock: release stroke skipped")
			c.operation = op
			c.arrive(0)
			return true
		}
		dir, target = dirClose, c.lengths.Release
	case OpLock:
		c.clock.Sleep(c.timing.LockSettle)
		if c.pins.Door.Get() {
			log.Warnln("lock: door open, lock aborted")
			c.notify(Event{Type: EventLockAborted, Operation: op, Position: c.position})
			return false
		}
		dir, target = dirClose, c.lockTravel()
	case OpUnlock:
		dir, target = dirOpen, c.lockTravel()
	default:
		return false
	}
	return c.travel(op, dir, target)
}

// lockTravel is the stroke length of the deadbolt, including the latch
// unless the release stroke is skipped.
func (c *Controller) lockTravel() int {
	n := c.lengths.Close
	if !c.policy.SkipRelease {
		n += c.lengths.Release
	}
	return n
}

// travel drives the motor in dir until target pulses have been counted or
// the obstacle detector stops it.
func (c *Controller) travel(op Operation, dir direction, target int) bool {
	if target <= 0 {
		if c.refused != op {
			log.Warnf("lock: %s has no travel (lengths not calibrated?)", op)
			c.refused = op
		}
		return false
	}
	c.refused = OpNone
	// The counter is never written here; the current count becomes zero.
	c.base = c.pins.Pulses.Pulses()
	c.lastSample = 0
	c.requested = target
	c.lastProgress = c.clock.Now()
	c.setDirection(dir)
	if dir == dirClose {
		c.clock.Sleep(c.timing.ReverseSettle)
	}
	c.set(c.pins.Enable, true, "enable")
	c.moving = true
	log.Printf("lock: start %s, %d pulses", op, target)
	c.notify(Event{Type: EventMotorStart, Operation: op, Position: c.position, Requested: target, Calibration: c.calibration})
	return true
}

// StopMotor stops the motor and records the position reached by the
// current operation.
func (c *Controller) StopMotor() {
	pulses := c.counter()
	c.release()
	c.clock.Sleep(c.timing.StopSettle)
	c.disable()
	c.moving = false
	c.arrive(pulses)
}

// arrive records the position reached by the current operation and
// clears it.
func (c *Controller) arrive(pulses int) {
	op := c.operation
	if p, ok := op.result(); ok {
		c.previous = c.position
		c.position = p
		if err := c.store.SavePosition(p); err != nil {
			log.Errorf("lock: save position: %v", err)
		}
		if p == Open {
			c.securityDeadline = c.clock.Now().Add(c.timing.SecurityTimeout)
		}
	}
	c.operation = OpNone
	log.Printf("lock: stop %s at %d pulses, %s -> %s", op, pulses, c.previous, c.position)
	c.notify(Event{Type: EventMotorStop, Operation: op, Position: c.position, Previous: c.previous, Pulses: pulses, Calibration: c.calibration})
}

// counter returns the pulses seen since the motion started.
func (c *Controller) counter() int {
	return int(c.pins.Pulses.Pulses() - c.base)
}

// setDirection asserts one direction output. The other output is always
// released first so both are never asserted together.
func (c *Controller) setDirection(d direction) {
	switch d {
	case dirOpen:
		c.set(c.pins.DirClose, false, "close")
		c.set(c.pins.DirOpen, true, "open")
	case dirClose:
		c.set(c.pins.DirOpen, false, "open")
		c.set(c.pins.DirClose, true, "close")
	default:
		c.release()
	}
}

func (c *Controller) release() {
	c.set(c.pins.DirOpen, false, "open")
	c.set(c.pins.DirClose, false, "close")
}

func (c *Controller) disable() {
	c.set(c.pins.Enable, false, "enable")
}

func (c *Controller) set(o Output, on bool, name string) {
	if err := o.Set(on); err != nil {
		log.Errorf("lock: set %s output: %v", name, err)
	}
}
