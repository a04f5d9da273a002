// Package diag writes a line per controller transition to a serial
// diagnostic console.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"

	"doorlock/lock"
)

// Config holds configuration for the diagnostic console.
type Config struct {
	Device string `yaml:"device"` // e.g. "/dev/ttyAMA0", "stdout", empty = disabled
	Baud   int    `yaml:"baud"`
}

// Console writes transition lines. A nil writer disables it.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	now func() time.Time
}

// New opens the console device.
func New(cfg Config) (*Console, error) {
	con := &Console{now: time.Now}
	switch cfg.Device {
	case "":
		return con, nil
	case "stdout":
		con.w = os.Stdout
		return con, nil
	}
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{Name: cfg.Device, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}
	con.w, con.c = port, port
	log.Printf("Diagnostic console on %s at %d baud", cfg.Device, cfg.Baud)
	return con, nil
}

// Event writes ev. Write errors are logged and otherwise ignored.
func (con *Console) Event(ev lock.Event) {
	con.Printf("%s", Format(ev))
}

// Printf writes one timestamped line.
func (con *Console) Printf(format string, args ...interface{}) {
	if con.w == nil {
		return
	}
	con.mu.Lock()
	defer con.mu.Unlock()
	line := con.now().Format("15:04:05.000") + " " + fmt.Sprintf(format, args...) + "\r\n"
	if _, err := io.WriteString(con.w, line); err != nil {
		log.Warnf("Diagnostic console write: %v", err)
	}
}

// Close releases the device.
func (con *Console) Close() error {
	if con.c == nil {
		return nil
	}
	return con.c.Close()
}

// Format renders ev as a console line.
func Format(ev lock.Event) string {
	var b strings.Builder
	b.WriteString(ev.Type.String())
	switch ev.Type {
	case lock.EventMotorStart:
		fmt.Fprintf(&b, " %s from %s, %d pulses", ev.Operation, ev.Position, ev.Requested)
	case lock.EventMotorStop:
		fmt.Fprintf(&b, " %s at %d pulses, %s -> %s", ev.Operation, ev.Pulses, ev.Previous, ev.Position)
	case lock.EventObstacle:
		fmt.Fprintf(&b, " during %s after %d pulses", ev.Operation, ev.Pulses)
	case lock.EventLockAborted:
		b.WriteString(" door open")
	case lock.EventSecurityTimeout:
		fmt.Fprintf(&b, " in %s", ev.Position)
	case lock.EventCalibration:
		fmt.Fprintf(&b, " %s open=%d close=%d release=%d",
			ev.Calibration, ev.Lengths.Open, ev.Lengths.Close, ev.Lengths.Release)
		return b.String()
	}
	if ev.Calibration != lock.CalibrationNone {
		fmt.Fprintf(&b, " [%s]", ev.Calibration)
	}
	return b.String()
}
