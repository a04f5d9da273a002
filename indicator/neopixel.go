package indicator

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"doorlock/lock"
)

// Patterns for the neopixel daemon: "@<mode> !<period µs> <rgb hex>...".
const (
	neoLocked      = "@3 !150000 400000"
	neoReleased    = "@3 !150000 404000"
	neoOpen        = "@1 !50000 004000"
	neoMoving      = "@1 !20000 8000"
	neoObstacle    = "@2 !10000 ff"
	neoCalibrating = "@2 !50000 000040"
	neoNoBroker    = "@2 !150000 001010"
	neoOff         = "@0 010101"
)

var neoPositions = map[lock.Position]string{
	lock.Locked:   neoLocked,
	lock.Released: neoReleased,
	lock.Open:     neoOpen,
}

// Neopixel writes patterns to the pipe of an external neopixel daemon.
type Neopixel struct {
	f    *os.File
	path string
}

// NewNeopixel opens the daemon's pipe. O_RDWR keeps the open from
// blocking when the daemon is not reading yet.
func NewNeopixel(path string) (*Neopixel, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", path, err)
	}
	return &Neopixel{f: f, path: path}, nil
}

func (n *Neopixel) Position(p lock.Position) {
	if pat, ok := neoPositions[p]; ok {
		n.show(pat)
	}
}

func (n *Neopixel) Moving(lock.Operation) { n.show(neoMoving) }
func (n *Neopixel) Obstacle()             { n.show(neoObstacle) }
func (n *Neopixel) Calibrating()          { n.show(neoCalibrating) }
func (n *Neopixel) ConnectionLost()       { n.show(neoNoBroker) }
func (n *Neopixel) Shutdown()             { n.show(neoOff) }

func (n *Neopixel) Release() error {
	if n.f == nil {
		return nil
	}
	err := n.f.Close()
	n.f = nil
	return err
}

func (n *Neopixel) show(pattern string) {
	if n.f == nil {
		return
	}
	if _, err := n.f.WriteString(pattern); err != nil {
		log.Warnf("indicator: neopixel %s: %v", n.path, err)
	}
}
