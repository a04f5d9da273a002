package lock

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// watch checks pulse progress of the running motor. It stops the motor
// when the target is reached or when no pulse has arrived within the stall
// timeout.
func (c *Controller) watch(now time.Time) {
	count := c.counter()
	if count != c.lastSample {
		c.lastSample = count
		c.lastProgress = now
		if count >= c.requested {
			c.StopMotor()
		}
		return
	}
	if now.Sub(c.lastProgress) > c.timing.StallTimeout {
		c.obstacle(count)
	}
}

// obstacle handles a stall. During calibration a stall marks the
// mechanical end of travel; otherwise it is an obstruction.
func (c *Controller) obstacle(count int) {
	op := c.operation
	c.StopMotor()
	log.Warnf("lock: obstacle during %s after %d pulses", op, count)
	c.notify(Event{Type: EventObstacle, Operation: op, Position: c.position, Pulses: count, Calibration: c.calibration})
	if c.calibration != CalibrationNone {
		c.calibrated(count)
		return
	}
	// An open always ends against the stop, so only reopen on other strokes.
	if c.policy.ReopenOnObstacle && op != OpOpen {
		c.Dispatch(OpOpen)
	}
}
