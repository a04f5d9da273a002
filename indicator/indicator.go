// Package indicator shows the lock state on LEDs, a neopixel strip or a
// framebuffer display.
package indicator

import (
	"doorlock/lock"
	"doorlock/video"
)

// Indicator is the interface for status indicator implementations.
type Indicator interface {
	// Position shows the lock at rest.
	Position(p lock.Position)

	// Moving shows a motor run in progress.
	Moving(op lock.Operation)

	// Obstacle shows that the last run stalled.
	Obstacle()

	// Calibrating shows that stroke lengths are being measured.
	Calibrating()

	// ConnectionLost shows that the telemetry broker is unreachable.
	ConnectionLost()

	// Shutdown sets the indicator to shutdown state.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// Video framebuffer display
	VideoEnabled bool         `yaml:"video_enabled"`
	Video        video.Config `yaml:"video"`
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if more than one kind is configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			release(indicators)
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	if cfg.VideoEnabled {
		if !video.ScreenSupported() {
			release(indicators)
			return nil, video.ErrScreenNotCompiled
		}
		vid, err := NewVideo(cfg.Video)
		if err != nil {
			release(indicators)
			return nil, err
		}
		indicators = append(indicators, vid)
	}

	switch len(indicators) {
	case 0:
		return &Noop{}, nil
	case 1:
		return indicators[0], nil
	}
	return &Multi{indicators: indicators}, nil
}

func release(indicators []Indicator) {
	for _, ind := range indicators {
		ind.Release()
	}
}

// Show updates ind for a controller event.
func Show(ind Indicator, ev lock.Event) {
	switch ev.Type {
	case lock.EventMotorStart:
		if ev.Calibration != lock.CalibrationNone {
			ind.Calibrating()
		} else {
			ind.Moving(ev.Operation)
		}
	case lock.EventMotorStop:
		if ev.Calibration == lock.CalibrationNone {
			ind.Position(ev.Position)
		}
	case lock.EventObstacle:
		if ev.Calibration == lock.CalibrationNone {
			ind.Obstacle()
		}
	case lock.EventCalibration:
		if ev.Calibration == lock.CalibrationNone {
			ind.Position(ev.Position)
		} else {
			ind.Calibrating()
		}
	}
}
