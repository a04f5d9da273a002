package indicator

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"doorlock/lock"
)

type recorder struct {
	calls []string
}

func (r *recorder) Position(p lock.Position) { r.calls = append(r.calls, "position "+p.String()) }
func (r *recorder) Moving(op lock.Operation) { r.calls = append(r.calls, "moving "+op.String()) }
func (r *recorder) Obstacle()                { r.calls = append(r.calls, "obstacle") }
func (r *recorder) Calibrating()             { r.calls = append(r.calls, "calibrating") }
func (r *recorder) ConnectionLost()          { r.calls = append(r.calls, "connection lost") }
func (r *recorder) Shutdown()                { r.calls = append(r.calls, "shutdown") }
func (r *recorder) Release() error           { r.calls = append(r.calls, "release"); return nil }

func TestShow(t *testing.T) {
	r := &recorder{}
	for _, ev := range []lock.Event{
		{Type: lock.EventMotorStart, Operation: lock.OpUnlock},
		{Type: lock.EventMotorStop, Operation: lock.OpUnlock, Position: lock.Open},
		{Type: lock.EventMotorStart, Operation: lock.OpLock},
		{Type: lock.EventObstacle, Operation: lock.OpLock},
		{Type: lock.EventMotorStop, Position: lock.Locked},
		{Type: lock.EventCalibration, Calibration: lock.CalibratingOpen},
		{Type: lock.EventMotorStart, Operation: lock.OpOpen, Calibration: lock.CalibratingOpen},
		{Type: lock.EventObstacle, Calibration: lock.CalibratingOpen},
		{Type: lock.EventMotorStop, Position: lock.Open, Calibration: lock.CalibratingOpen},
		{Type: lock.EventCalibration, Position: lock.Locked},
		{Type: lock.EventSecurityTimeout, Position: lock.Open},
	} {
		Show(r, ev)
	}
	want := []string{
		"moving " + lock.OpUnlock.String(),
		"position " + lock.Open.String(),
		"moving " + lock.OpLock.String(),
		"obstacle",
		"position " + lock.Locked.String(),
		"calibrating",
		"calibrating",
		"position " + lock.Locked.String(),
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %q\nwant %q", r.calls, want)
	}
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := &Multi{indicators: []Indicator{a, b}}
	m.Obstacle()
	m.Shutdown()
	if err := m.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	want := []string{"obstacle", "shutdown", "release"}
	if !reflect.DeepEqual(a.calls, want) || !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls %q and %q, want %q", a.calls, b.calls, want)
	}
}

func TestNewNoop(t *testing.T) {
	ind, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := ind.(*Noop); !ok {
		t.Errorf("New(empty) = %T, want *Noop", ind)
	}
}

func TestNeopixel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neopixel")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	ind, err := New(Config{NeopixelPipe: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ind.Position(lock.Locked)
	ind.Obstacle()
	if err := ind.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), neoLocked+neoObstacle; got != want {
		t.Errorf("pipe got %q, want %q", got, want)
	}
}
