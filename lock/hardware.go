package lock

import "time"

// Output is a digital output such as a direction or driver enable line.
type Output interface {
	Set(on bool) error
}

// Input is a polled digital input. Get returns the raw electrical level.
type Input interface {
	Get() bool
}

// PulseSource counts encoder pulses. The count is written only by the
// edge handler and must be safe to read from the control loop.
type PulseSource interface {
	Pulses() uint64
}

// Clock provides monotonic time and blocking delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Store persists the calibrated lengths and the last position.
type Store interface {
	LoadLengths() (Lengths, error)
	SaveLengths(Lengths) error
	LoadPosition() (Position, error)
	SavePosition(Position) error
}

// Pins is the set of signals wired to the lock controller.
type Pins struct {
	DirOpen  Output // Direction A
	DirClose Output // Direction B
	Enable   Output // Driver enable

	Button   Input // Active low
	Door     Input // High when the door is open
	DayNight Input // High keeps the door unlocked after closing

	Pulses PulseSource
}

type systemClock struct{}

// SystemClock returns a Clock backed by the runtime monotonic clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
