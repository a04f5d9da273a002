//go:build linux

package hw

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"

	"doorlock/lock"
)

const inputDebounce = 2 * time.Millisecond

type cdevOut struct {
	line *gpiocdev.Line
}

func (o cdevOut) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return o.line.SetValue(v)
}

// cdevIn reads a line. A failed read reports high, which is the idle
// level of every pulled up input.
type cdevIn struct {
	line *gpiocdev.Line
}

func (i cdevIn) Get() bool {
	v, err := i.line.Value()
	if err != nil {
		log.Errorf("hw: read line %d: %v", i.line.Offset(), err)
		return true
	}
	return v != 0
}

func newCdev(cfg Config) (*Board, error) {
	b := &Board{}
	fail := func(err error) (*Board, error) {
		b.Release()
		return nil, err
	}

	output := func(pin int) (lock.Output, error) {
		l, err := gpiocdev.RequestLine(cfg.Chip, pin, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, fmt.Errorf("request output %d: %w", pin, err)
		}
		b.closers = append(b.closers, l.Close)
		return cdevOut{l}, nil
	}
	input := func(pin int) (lock.Input, error) {
		l, err := gpiocdev.RequestLine(cfg.Chip, pin,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithDebounce(inputDebounce))
		if err != nil {
			return nil, fmt.Errorf("request input %d: %w", pin, err)
		}
		b.closers = append(b.closers, l.Close)
		return cdevIn{l}, nil
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
	if b.pins.Button, err = input(cfg.ButtonPin); err != nil {
		return fail(err)
	}
	if b.pins.Door, err = input(cfg.DoorPin); err != nil {
		return fail(err)
	}
	if b.pins.DayNight, err = input(cfg.DayNightPin); err != nil {
		return fail(err)
	}
	for i, pin := range []*int{cfg.ResetPin, cfg.ErrorYesPin, cfg.NoReleasePin} {
		if pin == nil {
			continue
		}
		if b.jumpers[i], err = input(*pin); err != nil {
			return fail(err)
		}
	}

	pulses := &counter{}
	l, err := gpiocdev.RequestLine(cfg.Chip, cfg.PulsePin,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			pulses.add(1)
		}))
	if err != nil {
		return fail(fmt.Errorf("request pulse input %d: %w", cfg.PulsePin, err))
	}
	b.closers = append(b.closers, l.Close)
	b.pins.Pulses = pulses
	return b, nil
}
