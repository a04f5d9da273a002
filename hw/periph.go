package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"doorlock/lock"
)

type periphOut struct {
	pin gpio.PinIO
}

func (o periphOut) Set(on bool) error { return o.pin.Out(gpio.Level(on)) }

type periphIn struct {
	pin gpio.PinIO
}

func (i periphIn) Get() bool { return i.pin.Read() == gpio.High }

// newPeriph opens the pins through the periph.io host drivers.
func newPeriph(cfg Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	b := &Board{}
	fail := func(err error) (*Board, error) {
		b.Release()
		return nil, err
	}

	pin := func(n int) (gpio.PinIO, error) {
		p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
		if p == nil {
			return nil, fmt.Errorf("no pin GPIO%d", n)
		}
		return p, nil
	}
	output := func(n int) (lock.Output, error) {
		p, err := pin(n)
		if err != nil {
			return nil, err
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("set %s output: %w", p, err)
		}
		return periphOut{p}, nil
	}
	input := func(n int, edge gpio.Edge) (gpio.PinIO, error) {
		p, err := pin(n)
		if err != nil {
			return nil, err
		}
		if err := p.In(gpio.PullUp, edge); err != nil {
			return nil, fmt.Errorf("set %s input: %w", p, err)
		}
		b.closers = append(b.closers, p.Halt)
		return p, nil
	}
	level := func(n int) (lock.Input, error) {
		p, err := input(n, gpio.NoEdge)
		if err != nil {
			return nil, err
		}
		return periphIn{p}, nil
	}

	var err error
	if b.pins.DirOpen, err = output(cfg.DirOpenPin); err != nil {
		return fail(err)
	}
	if b.pins.DirClose, err = output(cfg.DirClosePin); err != nil {
		return fail(err)
	}
	if b.pins.Enable, err = output(cfg.EnablePin); err != nil {
		return fail(err)
	}
	if b.pins.Button, err = level(cfg.ButtonPin); err != nil {
		return fail(err)
	}
	if b.pins.Door, err = level(cfg.DoorPin); err != nil {
		return fail(err)
	}
	if b.pins.DayNight, err = level(cfg.DayNightPin); err != nil {
		return fail(err)
	}
	for i, n := range []*int{cfg.ResetPin, cfg.ErrorYesPin, cfg.NoReleasePin} {
		if n == nil {
			continue
		}
		if b.jumpers[i], err = level(*n); err != nil {
			return fail(err)
		}
	}

	pp, err := input(cfg.PulsePin, gpio.FallingEdge)
	if err != nil {
		return fail(err)
	}
	pulses := &counter{}
	// Halt, registered as a closer by input, ends the wait.
	go func() {
		for pp.WaitForEdge(-1) {
			pulses.add(1)
		}
	}()
	b.pins.Pulses = pulses
	return b, nil
}
