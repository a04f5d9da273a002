// Package hw connects the lock controller to the board: motor driver
// outputs, sensor and jumper inputs, and the encoder pulse counter.
package hw

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"doorlock/lock"
)

// ErrNotSupported is returned for backends that need Linux GPIO.
var ErrNotSupported = errors.New("gpio backend not supported on this platform")

// Config holds configuration for the board.
type Config struct {
	Type string `yaml:"type"` // "cdev", "mem", "periph", "rpio", "sim"
	Chip string `yaml:"chip"` // e.g. "gpiochip0"

	DirOpenPin  int `yaml:"dir_open_pin"`
	DirClosePin int `yaml:"dir_close_pin"`
	EnablePin   int `yaml:"enable_pin"`
	PulsePin    int `yaml:"pulse_pin"`
	ButtonPin   int `yaml:"button_pin"`
	DoorPin     int `yaml:"door_pin"`
	DayNightPin int `yaml:"day_night_pin"`

	// Jumper pins (nil = not fitted)
	ResetPin     *int `yaml:"reset_pin"`
	ErrorYesPin  *int `yaml:"error_yes_pin"`
	NoReleasePin *int `yaml:"no_release_pin"`

	// Optional input device replacing the button pin.
	ButtonDevice string `yaml:"button_device"` // e.g. "/dev/input/event0"
	ButtonKey    string `yaml:"button_key"`    // key name, empty = any key

	Sim SimConfig `yaml:"sim"`
}

// Board is an opened set of lock pins.
type Board struct {
	pins     lock.Pins
	jumpers  [3]lock.Input // reset, error-yes, no-release
	sim      *Sim
	closers  []func() error
	typeName string
}

// New opens the board backend selected by cfg.Type.
func New(cfg Config) (*Board, error) {
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}
	if cfg.Type == "" {
		cfg.Type = "cdev"
		if runtime.GOOS != "linux" {
			cfg.Type = "sim"
		}
	}

	var (
		b   *Board
		err error
	)
	switch cfg.Type {
	case "cdev":
		b, err = newCdev(cfg)
	case "mem":
		b, err = newMem(cfg)
	case "periph":
		b, err = newPeriph(cfg)
	case "rpio":
		b, err = newRpio(cfg)
	case "sim":
		b = newSimBoard(cfg.Sim)
	default:
		return nil, fmt.Errorf("unknown board type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s board: %w", cfg.Type, err)
	}
	b.typeName = cfg.Type

	if cfg.ButtonDevice != "" {
		btn, err := newEvdevButton(cfg.ButtonDevice, cfg.ButtonKey)
		if err != nil {
			b.Release()
			return nil, err
		}
		b.pins.Button = btn
		b.closers = append(b.closers, btn.Close)
	}
	log.Printf("hw: %s board ready", b.typeName)
	return b, nil
}

// Pins returns the pins to hand to the controller.
func (b *Board) Pins() lock.Pins { return b.pins }

// Sim returns the simulated mechanism, or nil for real hardware.
func (b *Board) Sim() *Sim { return b.sim }

// Policy reads the jumpers. Jumpers pull their pin low when fitted.
func (b *Board) Policy() lock.Policy {
	fitted := func(in lock.Input) bool {
		return in != nil && !in.Get()
	}
	return lock.Policy{
		RecalibrateAtBoot: fitted(b.jumpers[0]),
		ReopenOnObstacle:  fitted(b.jumpers[1]),
		SkipRelease:       fitted(b.jumpers[2]),
	}
}

// Release drives the motor outputs low and frees all lines.
func (b *Board) Release() error {
	var errs error
	for _, o := range []lock.Output{b.pins.Enable, b.pins.DirOpen, b.pins.DirClose} {
		if o != nil {
			errs = multierr.Append(errs, o.Set(false))
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, b.closers[i]())
	}
	b.closers = nil
	return errs
}

// counter is the pulse count. The edge handler is its only writer.
type counter struct {
	n uint64
}

func (c *counter) Pulses() uint64 { return atomic.LoadUint64(&c.n) }

func (c *counter) add(n uint64) { atomic.AddUint64(&c.n, n) }
