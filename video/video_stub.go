//go:build !screen

package video

import "image/color"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Video is a stub when screen support is not compiled in.
type Video struct{}

// New returns an error when screen support is not compiled in.
func New(cfg Config) (*Video, error) {
	return nil, ErrScreenNotCompiled
}

func (v *Video) Status(bg, fg color.Color, title, detail string) {}
func (v *Video) Blank()                                          {}
func (v *Video) Release() error                                  { return nil }
