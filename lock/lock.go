// Package lock implements the motor control state machine of a motorized
// door lock: operation dispatch, pulse based motion tracking, stall
// detection and self calibration.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Controller owns all of the lock state. Every method must be called from
// the single goroutine running the control loop; only the pulse source is
// updated concurrently.
type Controller struct {
	pins    Pins
	store   Store
	clock   Clock
	timing  Timing
	policy  Policy
	observe Observer

	lengths     Lengths
	position    Position
	previous    Position
	operation   Operation
	calibration CalibrationState

	// Motion state.
	moving       bool
	base         uint64 // Pulse count at motion start
	lastSample   int
	requested    int
	lastProgress time.Time

	securityDeadline time.Time
	button           debouncer

	// Last operation refused for lack of travel, so the warning is
	// logged once per cause.
	refused Operation
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(l *Controller) { l.clock = c }
}

// WithTiming replaces the default timing.
func WithTiming(t Timing) Option {
	return func(l *Controller) { l.timing = t }
}

// WithObserver registers a callback for controller events.
func WithObserver(o Observer) Option {
	return func(l *Controller) { l.observe = o }
}

// New creates a controller. Boot must be called before the first Tick.
func New(pins Pins, store Store, policy Policy, opts ...Option) (*Controller, error) {
	if pins.DirOpen == nil || pins.DirClose == nil || pins.Enable == nil {
		return nil, errors.New("lock: motor outputs not configured")
	}
	if pins.Button == nil || pins.Door == nil || pins.DayNight == nil {
		return nil, errors.New("lock: inputs not configured")
	}
	if pins.Pulses == nil {
		return nil, errors.New("lock: pulse source not configured")
	}
	if store == nil {
		return nil, errors.New("lock: store not configured")
	}
	c := &Controller{
		pins:   pins,
		store:  store,
		clock:  SystemClock(),
		timing: DefaultTiming(),
		policy: policy,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Boot loads the persisted state, drives the motor outputs to a known idle
// state and arms calibration if the policy requests it.
// Load errors are returned after the controller has been put into a usable
// state, so the caller can decide whether a missing record is fatal.
func (c *Controller) Boot() error {
	c.release()
	c.disable()
	var errs error
	l, err := c.store.LoadLengths()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load lengths: %w", err))
	}
	c.lengths = l
	p, err := c.store.LoadPosition()
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load position: %w", err))
	}
	c.position = p
	c.previous = p
	now := c.clock.Now()
	if c.position == Open {
		c.securityDeadline = now.Add(c.timing.SecurityTimeout)
	}
	c.button.reset(c.pins.Button.Get(), now)
	if c.policy.RecalibrateAtBoot {
		c.setCalibration(CalibratingOpen)
	}
	log.WithFields(log.Fields{
		"position":    c.position,
		"open":        c.lengths.Open,
		"close":       c.lengths.Close,
		"release":     c.lengths.Release,
		"calibration": c.calibration,
	}).Info("lock: boot")
	return errs
}

// Run polls the controller until the context is cancelled, then halts the
// motor. poll is the pause between ticks; zero polls continuously.
func (c *Controller) Run(ctx context.Context, poll time.Duration) {
	for ctx.Err() == nil {
		c.Tick()
		if poll > 0 {
			c.clock.Sleep(poll)
		}
	}
	c.Halt()
}

// Halt removes motor power without recording a new position.
func (c *Controller) Halt() {
	if !c.moving {
		return
	}
	log.Printf("lock: halting %s at %d pulses", c.operation, c.counter())
	c.release()
	c.disable()
	c.moving = false
	c.operation = OpNone
}

// Position returns the current position.
func (c *Controller) Position() Position { return c.position }

// Previous returns the position before the last transition.
func (c *Controller) Previous() Position { return c.previous }

// Operation returns the operation in progress.
func (c *Controller) Operation() Operation { return c.operation }

// Calibration returns the calibration step.
func (c *Controller) Calibration() CalibrationState { return c.calibration }

// Lengths returns the calibrated lengths.
func (c *Controller) Lengths() Lengths { return c.lengths }

// Moving reports whether the motor is running.
func (c *Controller) Moving() bool { return c.moving }

// Requested returns the pulse target of the current motion.
func (c *Controller) Requested() int { return c.requested }

// Counter returns the pulses counted since the current motion started.
func (c *Controller) Counter() int { return c.counter() }

func (c *Controller) notify(ev Event) {
	if c.observe != nil {
		c.observe(ev)
	}
}
