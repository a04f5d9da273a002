package diag

import (
	"bytes"
	"testing"
	"time"

	"doorlock/lock"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		ev   lock.Event
		want string
	}{
		{lock.Event{Type: lock.EventMotorStart, Operation: lock.OpUnlock, Position: lock.Locked, Requested: 100},
			"motor-start unlock from locked, 100 pulses"},
		{lock.Event{Type: lock.EventMotorStop, Operation: lock.OpLock, Pulses: 80, Previous: lock.Released, Position: lock.Locked},
			"motor-stop lock at 80 pulses, released -> locked"},
		{lock.Event{Type: lock.EventObstacle, Operation: lock.OpOpen, Pulses: 120, Calibration: lock.CalibratingOpen},
			"obstacle during open after 120 pulses [calibrating-open]"},
		{lock.Event{Type: lock.EventLockAborted, Operation: lock.OpLock},
			"lock-aborted door open"},
		{lock.Event{Type: lock.EventSecurityTimeout, Position: lock.Open},
			"security-timeout in open"},
		{lock.Event{Type: lock.EventCalibration, Calibration: lock.CalibrationFinished, Lengths: lock.Lengths{Close: 90, Release: 120}},
			"calibration finished open=0 close=90 release=120"},
	}
	for _, c := range cases {
		if got := Format(c.ev); got != c.want {
			t.Errorf("Format(%s) = %q, want %q", c.ev.Type, got, c.want)
		}
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	con := &Console{w: &buf, now: func() time.Time { return time.Date(2024, 1, 1, 12, 30, 5, 0, time.UTC) }}
	con.Event(lock.Event{Type: lock.EventLockAborted})
	if got, want := buf.String(), "12:30:05.000 lock-aborted door open\r\n"; got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
}

func TestDisabled(t *testing.T) {
	con, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	con.Event(lock.Event{})
	if err := con.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
