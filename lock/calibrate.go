package lock

import log "github.com/sirupsen/logrus"

// calibrate starts the travel for the current calibration step.
// Each step runs to the mechanical limit and is ended by the stall.
func (c *Controller) calibrate() {
	switch c.calibration {
	case CalibratingOpen:
		c.operation = OpOpen
		if !c.travel(OpOpen, dirOpen, c.timing.FullTravel) {
			c.operation = OpNone
		}
	case CalibratingClose:
		c.operation = OpLock
		if !c.travel(OpLock, dirClose, c.timing.FullTravel) {
			c.operation = OpNone
		}
	case CalibrationFinished:
		c.finishCalibration()
	}
}

// calibrated records the pulses measured by the stalled step and moves on
// to the next step.
func (c *Controller) calibrated(count int) {
	switch c.calibration {
	case CalibratingOpen:
		if c.policy.SkipRelease {
			c.lengths.Open = count
		} else {
			c.lengths.Release = count
		}
		c.setCalibration(CalibratingClose)
	case CalibratingClose:
		c.lengths.Close = count
		c.setCalibration(CalibrationFinished)
		c.finishCalibration()
	}
}

// finishCalibration persists the measured lengths as one record.
func (c *Controller) finishCalibration() {
	if err := c.store.SaveLengths(c.lengths); err != nil {
		log.Errorf("lock: save lengths: %v", err)
	}
	log.Printf("lock: calibrated open=%d close=%d release=%d", c.lengths.Open, c.lengths.Close, c.lengths.Release)
	c.setCalibration(CalibrationNone)
}

func (c *Controller) setCalibration(s CalibrationState) {
	c.calibration = s
	c.notify(Event{Type: EventCalibration, Position: c.position, Calibration: s, Lengths: c.lengths})
}
