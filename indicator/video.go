package indicator

import (
	"image/color"

	"doorlock/lock"
	"doorlock/video"
)

var (
	white  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black  = color.RGBA{0, 0, 0, 0xff}
	green  = color.RGBA{0, 0x80, 0, 0xff}
	yellow = color.RGBA{0xb3, 0xb3, 0, 0xff}
	red    = color.RGBA{0xb3, 0, 0, 0xff}
	orange = color.RGBA{0x80, 0x4d, 0, 0xff}
	blue   = color.RGBA{0, 0, 0x4d, 0xff}
)

// VideoIndicator wraps video.Video to implement Indicator.
type VideoIndicator struct {
	v *video.Video
}

// NewVideo creates a new video-based indicator.
func NewVideo(cfg video.Config) (*VideoIndicator, error) {
	v, err := video.New(cfg)
	if err != nil {
		return nil, err
	}
	return &VideoIndicator{v: v}, nil
}

// Position implements Indicator.Position.
func (vi *VideoIndicator) Position(p lock.Position) {
	switch p {
	case lock.Locked:
		vi.v.Status(green, white, "Locked", "")
	case lock.Released:
		vi.v.Status(yellow, black, "Released", "")
	case lock.Open:
		vi.v.Status(red, white, "Open", "")
	}
}

// Moving implements Indicator.Moving.
func (vi *VideoIndicator) Moving(op lock.Operation) {
	vi.v.Status(yellow, black, "Moving...", op.String())
}

// Obstacle implements Indicator.Obstacle.
func (vi *VideoIndicator) Obstacle() {
	vi.v.Status(red, white, "Obstacle", "check the door")
}

// Calibrating implements Indicator.Calibrating.
func (vi *VideoIndicator) Calibrating() {
	vi.v.Status(blue, white, "Calibrating", "")
}

// ConnectionLost implements Indicator.ConnectionLost.
func (vi *VideoIndicator) ConnectionLost() {
	vi.v.Status(orange, white, "Connection Lost", "")
}

// Shutdown implements Indicator.Shutdown.
func (vi *VideoIndicator) Shutdown() {
	vi.v.Blank()
}

// Release implements Indicator.Release.
func (vi *VideoIndicator) Release() error {
	return vi.v.Release()
}
