// Package eventpipe reads simulated hardware stimuli from a named pipe.
package eventpipe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Config holds configuration for the event pipe.
type Config struct {
	Path string `yaml:"path"` // Path to named pipe (e.g., "/tmp/doorlock-events")
}

// Kind identifies a stimulus.
type Kind int

const (
	KindPin Kind = iota
	KindPulse
	KindObstacle
)

func (k Kind) String() string {
	switch k {
	case KindPin:
		return "pin"
	case KindPulse:
		return "pulse"
	case KindObstacle:
		return "obstacle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pin names accepted by the pin command.
const (
	PinButton    = "button"
	PinDoor      = "door"
	PinDayNight  = "daynight"
	PinReset     = "reset"
	PinErrorYes  = "erroryes"
	PinNoRelease = "norelease"
)

// Command is one parsed stimulus line.
type Command struct {
	Kind   Kind
	Pin    string // KindPin
	Active bool   // KindPin, KindObstacle
	Count  int    // KindPulse
}

// Handler is called for each command read from the pipe.
type Handler func(Command)

// EventPipe listens for commands on a named pipe.
type EventPipe struct {
	path    string
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates an EventPipe. Returns nil if path is empty.
func New(cfg Config, handler Handler) (*EventPipe, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	os.Remove(cfg.Path)
	if err := syscall.Mkfifo(cfg.Path, 0666); err != nil {
		return nil, fmt.Errorf("create named pipe %s: %w", cfg.Path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EventPipe{
		path:    cfg.Path,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start reads commands until Close. Run it as a goroutine.
func (ep *EventPipe) Start() {
	log.Printf("Event pipe listening on %s", ep.path)

	for ep.ctx.Err() == nil {
		// Blocks until a writer connects.
		file, err := os.OpenFile(ep.path, os.O_RDONLY, 0)
		if err != nil {
			if ep.ctx.Err() != nil {
				return
			}
			log.Errorf("Event pipe open error: %v", err)
			continue
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() && ep.ctx.Err() == nil {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cmd, err := parseLine(line)
			if err != nil {
				log.Warnf("Event pipe parse error: %v", err)
				continue
			}
			if ep.handler != nil {
				ep.handler(cmd)
			}
		}
		file.Close()
	}
}

// Close stops the listener and removes the pipe.
func (ep *EventPipe) Close() error {
	ep.cancel()
	// Unblock a Start waiting in open.
	if f, err := os.OpenFile(ep.path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
		f.Close()
	}
	return os.Remove(ep.path)
}

// parseLine parses a command line.
// Command format:
//
//	pin <name> <0|1>      - Input level (1 = pressed / open / night / fitted)
//	pulse <n>             - Inject n encoder pulses
//	obstacle <on|off>     - Block or free the simulated mechanism
func parseLine(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "pin":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("pin requires <name> <0|1>")
		}
		name, err := parsePinName(parts[1])
		if err != nil {
			return Command{}, err
		}
		active, err := parseBool(parts[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindPin, Pin: name, Active: active}, nil

	case "pulse":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("pulse requires count")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return Command{}, fmt.Errorf("invalid pulse count: %s", parts[1])
		}
		return Command{Kind: KindPulse, Count: n}, nil

	case "obstacle":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("obstacle requires on|off")
		}
		active, err := parseBool(parts[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindObstacle, Active: active}, nil

	default:
		return Command{}, fmt.Errorf("unknown command: %s", cmd)
	}
}

func parsePinName(name string) (string, error) {
	switch n := strings.ToLower(name); n {
	case PinButton, PinDoor, PinDayNight, PinReset, PinErrorYes, PinNoRelease:
		return n, nil
	case "btn":
		return PinButton, nil
	default:
		return "", fmt.Errorf("unknown pin: %s", name)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid level: %s", s)
}
