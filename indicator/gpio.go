package indicator

import (
	"fmt"

	"github.com/hjkoskel/govattu"

	"doorlock/lock"
)

// GPIO implements Indicator using discrete GPIO LED pins.
//
//	locked     green
//	released   yellow
//	open       red
//	moving     green + yellow
//	obstacle   red + green
//	calibrate  all
//	no broker  yellow + red
type GPIO struct {
	hw        govattu.Vattu
	greenPin  *uint8
	yellowPin *uint8
	redPin    *uint8
}

// NewGPIO creates a new GPIO-based indicator.
func NewGPIO(greenPin, yellowPin, redPin *uint8) (*GPIO, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	g := &GPIO{
		hw:        hw,
		greenPin:  greenPin,
		yellowPin: yellowPin,
		redPin:    redPin,
	}
	for _, pin := range g.pins() {
		if pin != nil {
			hw.PinMode(*pin, govattu.ALToutput)
			hw.PinClear(*pin)
		}
	}
	return g, nil
}

// Position implements Indicator.Position.
func (g *GPIO) Position(p lock.Position) {
	switch p {
	case lock.Locked:
		g.show(g.greenPin)
	case lock.Released:
		g.show(g.yellowPin)
	case lock.Open:
		g.show(g.redPin)
	}
}

// Moving implements Indicator.Moving.
func (g *GPIO) Moving(op lock.Operation) { g.show(g.greenPin, g.yellowPin) }

// Obstacle implements Indicator.Obstacle.
func (g *GPIO) Obstacle() { g.show(g.redPin, g.greenPin) }

// Calibrating implements Indicator.Calibrating.
func (g *GPIO) Calibrating() { g.show(g.pins()...) }

// ConnectionLost implements Indicator.ConnectionLost.
func (g *GPIO) ConnectionLost() { g.show(g.yellowPin, g.redPin) }

// Shutdown implements Indicator.Shutdown.
func (g *GPIO) Shutdown() { g.show() }

// Release implements Indicator.Release.
func (g *GPIO) Release() error {
	g.show()
	return g.hw.Close()
}

func (g *GPIO) pins() []*uint8 {
	return []*uint8{g.greenPin, g.yellowPin, g.redPin}
}

// show lights exactly the given pins.
func (g *GPIO) show(on ...*uint8) {
	for _, pin := range g.pins() {
		if pin != nil {
			g.hw.PinClear(*pin)
		}
	}
	for _, pin := range on {
		if pin != nil {
			g.hw.PinSet(*pin)
		}
	}
}
