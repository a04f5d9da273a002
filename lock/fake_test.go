package lock

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// fakeBoard records the outputs and supplies the inputs of the controller.
type fakeBoard struct {
	t *testing.T

	open, close, enable bool
	starts, stops       int

	button   bool // raw level, high when released
	door     bool
	dayNight bool

	pulses uint64
}

type fakeOut struct {
	b *fakeBoard
	v *bool
}

func (o fakeOut) Set(on bool) error {
	prev := *o.v
	*o.v = on
	if o.v == &o.b.enable && prev != on {
		if on {
			o.b.starts++
		} else {
			o.b.stops++
		}
	}
	if o.b.open && o.b.close {
		o.b.t.Errorf("both direction outputs asserted")
	}
	return nil
}

type fakeIn struct {
	v *bool
}

func (i fakeIn) Get() bool { return *i.v }

type fakePulses struct {
	n *uint64
}

func (p fakePulses) Pulses() uint64 { return atomic.LoadUint64(p.n) }

func (b *fakeBoard) pins() Pins {
	return Pins{
		DirOpen:  fakeOut{b, &b.open},
		DirClose: fakeOut{b, &b.close},
		Enable:   fakeOut{b, &b.enable},
		Button:   fakeIn{&b.button},
		Door:     fakeIn{&b.door},
		DayNight: fakeIn{&b.dayNight},
		Pulses:   fakePulses{&b.pulses},
	}
}

// pulse simulates the edge handler.
func (b *fakeBoard) pulse(n int) {
	atomic.AddUint64(&b.pulses, uint64(n))
}

type memStore struct {
	lengths       Lengths
	position      Position
	lengthSaves   int
	positionSaves int
}

func (s *memStore) LoadLengths() (Lengths, error)   { return s.lengths, nil }
func (s *memStore) LoadPosition() (Position, error) { return s.position, nil }

func (s *memStore) SaveLengths(l Lengths) error {
	s.lengths = l
	s.lengthSaves++
	return nil
}

func (s *memStore) SavePosition(p Position) error {
	s.position = p
	s.positionSaves++
	return nil
}

type harness struct {
	c      *Controller
	board  *fakeBoard
	clock  *fakeClock
	store  *memStore
	events []Event
}

func newHarness(t *testing.T, l Lengths, p Position, policy Policy) *harness {
	t.Helper()
	h := &harness{
		board: &fakeBoard{t: t, button: true, dayNight: true},
		clock: &fakeClock{now: time.Unix(1000, 0)},
		store: &memStore{lengths: l, position: p},
	}
	c, err := New(h.board.pins(), h.store, policy,
		WithClock(h.clock),
		WithObserver(func(ev Event) { h.events = append(h.events, ev) }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	h.c = c
	return h
}

// tick advances the clock and runs one loop iteration.
func (h *harness) tick(d time.Duration) {
	h.clock.Sleep(d)
	h.c.Tick()
}

// stall lets the running motor sit without pulses past the stall timeout.
func (h *harness) stall() {
	h.tick(time.Millisecond)
	h.tick(h.c.timing.StallTimeout + time.Millisecond)
}

func (h *harness) count(t EventType) int {
	n := 0
	for _, ev := range h.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}
