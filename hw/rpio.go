//go:build linux

package hw

import (
	"fmt"
	"time"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// rpioPoll is how often the edge detect latch is sampled. The latch
// holds one edge, so this bounds the pulse rate the backend can count.
const rpioPoll = 200 * time.Microsecond

type rpioOut struct {
	pin rpio.Pin
}

func (o rpioOut) Set(on bool) error {
	if on {
		o.pin.High()
	} else {
		o.pin.Low()
	}
	return nil
}

type rpioIn struct {
	pin rpio.Pin
}

func (i rpioIn) Get() bool { return i.pin.Read() == rpio.High }

// newRpio opens the pins through /dev/gpiomem with go-rpio.
func newRpio(cfg Config) (*Board, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpiomem: %w", err)
	}
	b := &Board{}
	b.closers = append(b.closers, rpio.Close)

	output := func(n int) rpioOut {
		p := rpio.Pin(n)
		p.Output()
		p.Low()
		return rpioOut{p}
	}
	input := func(n int) rpio.Pin {
		p := rpio.Pin(n)
		p.Input()
		p.PullUp()
		return p
	}

	b.pins.DirOpen = output(cfg.DirOpenPin)
	b.pins.DirClose = output(cfg.DirClosePin)
	b.pins.Enable = output(cfg.EnablePin)
	b.pins.Button = rpioIn{input(cfg.ButtonPin)}
	b.pins.Door = rpioIn{input(cfg.DoorPin)}
	b.pins.DayNight = rpioIn{input(cfg.DayNightPin)}
	for i, n := range []*int{cfg.ResetPin, cfg.ErrorYesPin, cfg.NoReleasePin} {
		if n != nil {
			b.jumpers[i] = rpioIn{input(*n)}
		}
	}

	pp := input(cfg.PulsePin)
	pp.Detect(rpio.FallEdge)
	pulses := &counter{}
	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(rpioPoll)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if pp.EdgeDetected() {
					pulses.add(1)
				}
			}
		}
	}()
	b.closers = append(b.closers, func() error {
		close(stop)
		pp.Detect(rpio.NoEdge)
		return nil
	})
	b.pins.Pulses = pulses
	return b, nil
}
