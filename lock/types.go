package lock

import (
	"fmt"
	"strings"
	"time"
)

// Position is the last settled position of the lock mechanism.
type Position int

const (
	Locked Position = iota
	Open
	Released
)

var positionNames = []string{"locked", "open", "released"}

func (p Position) String() string {
	if p < 0 || int(p) >= len(positionNames) {
		return fmt.Sprintf("position(%d)", int(p))
	}
	return positionNames[p]
}

// ParsePosition converts a stored position name back to a Position.
func ParsePosition(s string) (Position, error) {
	for i, n := range positionNames {
		if strings.EqualFold(s, n) {
			return Position(i), nil
		}
	}
	return Locked, fmt.Errorf("unknown position %q", s)
}

// Operation is the motion currently requested of the motor.
type Operation int

const (
	OpNone Operation = iota
	OpOpen
	OpRelease
	OpLock
	OpUnlock
)

var operationNames = []string{"none", "open", "release", "lock", "unlock"}

func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return fmt.Sprintf("operation(%d)", int(o))
	}
	return operationNames[o]
}

// result is the position the mechanism is in once the operation completes.
func (o Operation) result() (Position, bool) {
	switch o {
	case OpOpen, OpUnlock:
		return Open, true
	case OpRelease:
		return Released, true
	case OpLock:
		return Locked, true
	}
	return Locked, false
}

// CalibrationState is the step of the calibration sequence.
type CalibrationState int

const (
	CalibrationNone CalibrationState = iota
	CalibratingOpen
	CalibratingClose
	CalibrationFinished
)

var calibrationNames = []string{"none", "calibrating-open", "calibrating-close", "finished"}

func (c CalibrationState) String() string {
	if c < 0 || int(c) >= len(calibrationNames) {
		return fmt.Sprintf("calibration(%d)", int(c))
	}
	return calibrationNames[c]
}

// Lengths holds the calibrated travel of each stroke, in encoder pulses.
type Lengths struct {
	Open    int
	Close   int
	Release int
}

// Policy holds the jumper selected behaviour of the controller.
type Policy struct {
	ReopenOnObstacle  bool // "error-yes" jumper
	SkipRelease       bool // "no-release" jumper
	RecalibrateAtBoot bool // reset jumper
}

// Timing holds the fixed delays and limits of the controller.
type Timing struct {
	StallTimeout    time.Duration // No pulse progress for this long is a stall
	SecurityTimeout time.Duration // Time to wait for the door to be opened after unlocking
	LockSettle      time.Duration // Wait before checking the door sensor for a lock
	ReverseSettle   time.Duration // Wait between selecting close and enabling the driver
	StopSettle      time.Duration // Wait between releasing direction and disabling the driver
	Debounce        time.Duration // Button debounce interval
	FullTravel      int           // Pulse ceiling for moves that run to the mechanical limit
}

// DefaultTiming returns the timing used when no overrides are configured.
func DefaultTiming() Timing {
	return Timing{
		StallTimeout:    300 * time.Millisecond,
		SecurityTimeout: 10 * time.Second,
		LockSettle:      500 * time.Millisecond,
		ReverseSettle:   100 * time.Millisecond,
		StopSettle:      50 * time.Millisecond,
		Debounce:        50 * time.Millisecond,
		FullTravel:      30000,
	}
}
