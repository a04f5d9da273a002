//go:build linux

package hw

import (
	"fmt"

	"github.com/hjkoskel/govattu"
	"github.com/warthog618/gpio"

	"doorlock/lock"
)

// memOut drives a pin through the BCM register block.
type memOut struct {
	hw  govattu.Vattu
	pin uint8
}

func (o memOut) Set(on bool) error {
	if on {
		o.hw.PinSet(o.pin)
	} else {
		o.hw.PinClear(o.pin)
	}
	return nil
}

type memIn struct {
	pin *gpio.Pin
}

func (i memIn) Get() bool { return i.pin.Read() == gpio.High }

// newMem opens the memory mapped backend: govattu for the motor
// outputs, warthog618/gpio for inputs and the pulse edge watch.
func newMem(cfg Config) (*Board, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	if err := gpio.Open(); err != nil {
		hw.Close()
		return nil, fmt.Errorf("open gpio mem: %w", err)
	}
	b := &Board{}
	b.closers = append(b.closers, hw.Close, gpio.Close)

	output := func(pin int) lock.Output {
		hw.PinMode(uint8(pin), govattu.ALToutput)
		hw.PinClear(uint8(pin))
		return memOut{hw: hw, pin: uint8(pin)}
	}
	input := func(pin int) *gpio.Pin {
		p := gpio.NewPin(pin)
		p.Input()
		p.PullUp()
		return p
	}

	b.pins.DirOpen = output(cfg.DirOpenPin)
	b.pins.DirClose = output(cfg.DirClosePin)
	b.pins.Enable = output(cfg.EnablePin)
	b.pins.Button = memIn{input(cfg.ButtonPin)}
	b.pins.Door = memIn{input(cfg.DoorPin)}
	b.pins.DayNight = memIn{input(cfg.DayNightPin)}
	for i, pin := range []*int{cfg.ResetPin, cfg.ErrorYesPin, cfg.NoReleasePin} {
		if pin != nil {
			b.jumpers[i] = memIn{input(*pin)}
		}
	}

	pulses := &counter{}
	pp := input(cfg.PulsePin)
	if err := pp.Watch(gpio.EdgeFalling, func(*gpio.Pin) { pulses.add(1) }); err != nil {
		b.Release()
		return nil, fmt.Errorf("watch pulse pin %d: %w", cfg.PulsePin, err)
	}
	b.closers = append(b.closers, func() error {
		pp.Unwatch()
		return nil
	})
	b.pins.Pulses = pulses
	return b, nil
}
