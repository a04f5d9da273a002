package hw

import (
	"fmt"
	"sync"
	"time"

	"doorlock/eventpipe"
	"doorlock/lock"
)

// SimConfig describes the simulated mechanism.
type SimConfig struct {
	Travel  int      `yaml:"travel"`   // pulses between the mechanical limits
	Start   int      `yaml:"start"`    // initial pulses from the closed limit
	PulseMs int      `yaml:"pulse_ms"` // time per pulse while driven
	Jumpers []string `yaml:"jumpers"`  // fitted at start, e.g. ["reset"]
}

const (
	defaultSimTravel = 200
	defaultSimPulse  = 5 * time.Millisecond
)

// Sim is a gearmotor and door between two mechanical limits. While the
// driver is enabled with one direction asserted it moves one pulse per
// period, and stops turning at a limit or while obstructed.
type Sim struct {
	mu                  sync.Mutex
	open, close, enable bool
	active              map[string]bool
	position, travel    int
	obstructed          bool

	pulses   counter
	interval time.Duration
	done     chan struct{}
	stop     sync.Once
}

// NewSim creates a stopped simulator. Call Step to advance it, or Start.
func NewSim(cfg SimConfig) *Sim {
	s := &Sim{
		active:   make(map[string]bool),
		travel:   cfg.Travel,
		position: cfg.Start,
		interval: time.Duration(cfg.PulseMs) * time.Millisecond,
		done:     make(chan struct{}),
	}
	if s.travel <= 0 {
		s.travel = defaultSimTravel
	}
	if s.interval <= 0 {
		s.interval = defaultSimPulse
	}
	s.position = max(0, min(s.position, s.travel))
	for _, j := range cfg.Jumpers {
		s.active[j] = true
	}
	return s
}

func newSimBoard(cfg SimConfig) *Board {
	s := NewSim(cfg)
	go s.Start()
	b := &Board{sim: s}
	b.pins = s.Pins()
	b.jumpers = [3]lock.Input{
		simIn{s, eventpipe.PinReset},
		simIn{s, eventpipe.PinErrorYes},
		simIn{s, eventpipe.PinNoRelease},
	}
	b.closers = append(b.closers, s.Close)
	return b
}

// Pins returns the simulated controller pins.
func (s *Sim) Pins() lock.Pins {
	return lock.Pins{
		DirOpen:  simOut{s, &s.open},
		DirClose: simOut{s, &s.close},
		Enable:   simOut{s, &s.enable},
		Button:   simIn{s, eventpipe.PinButton},
		Door:     simIn{s, eventpipe.PinDoor},
		DayNight: simIn{s, eventpipe.PinDayNight},
		Pulses:   &s.pulses,
	}
}

// Start runs the motor until Close.
func (s *Sim) Start() {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.Step()
		}
	}
}

// Close stops the motor goroutine.
func (s *Sim) Close() error {
	s.stop.Do(func() { close(s.done) })
	return nil
}

// Step advances the motor by one pulse period.
func (s *Sim) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enable || s.obstructed || s.open == s.close {
		return
	}
	next := s.position + 1
	if s.close {
		next = s.position - 1
	}
	if next < 0 || next > s.travel {
		return
	}
	s.position = next
	s.pulses.add(1)
}

// Position returns the pulses from the closed limit.
func (s *Sim) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Apply injects a stimulus.
func (s *Sim) Apply(cmd eventpipe.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch cmd.Kind {
	case eventpipe.KindPin:
		s.active[cmd.Pin] = cmd.Active
	case eventpipe.KindPulse:
		s.pulses.add(uint64(cmd.Count))
	case eventpipe.KindObstacle:
		s.obstructed = cmd.Active
	default:
		return fmt.Errorf("sim: unsupported command %s", cmd.Kind)
	}
	return nil
}

// level converts the active state of an input to its pin level. The door
// switch reads high when open, everything else is active low.
func (s *Sim) level(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == eventpipe.PinDoor {
		return s.active[name]
	}
	return !s.active[name]
}

type simOut struct {
	s *Sim
	v *bool
}

func (o simOut) Set(on bool) error {
	o.s.mu.Lock()
	*o.v = on
	o.s.mu.Unlock()
	return nil
}

type simIn struct {
	s    *Sim
	name string
}

func (i simIn) Get() bool { return i.s.level(i.name) }
