//go:build screen

package video

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/d21d3q/framebuffer"
	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool { return true }

// Video draws lock status screens on a 16 bpp framebuffer.
type Video struct {
	fb     []byte // mapped device memory
	frame  []byte // RGB565 frame assembled before the copy
	canvas *image.RGBA
	dc     *gg.Context
	w, h   int
	stride int
	noFont bool
	open   bool
}

// New opens the framebuffer device, "/dev/fb0" if empty.
func New(cfg Config) (*Video, error) {
	if cfg.Device == "" {
		cfg.Device = "/dev/fb0"
	}
	dev, err := framebuffer.OpenFrameBuffer(cfg.Device, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	vi, err := dev.VarScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("%s var info: %w", cfg.Device, err)
	}
	if vi.BitsPerPixel != 16 {
		return nil, fmt.Errorf("%s: %d bpp, need 16", cfg.Device, vi.BitsPerPixel)
	}
	fi, err := dev.FixScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("%s fix info: %w", cfg.Device, err)
	}
	pix, err := dev.Pixels()
	if err != nil {
		return nil, fmt.Errorf("%s pixels: %w", cfg.Device, err)
	}

	v := &Video{
		fb:     pix,
		w:      int(vi.XRes),
		h:      int(vi.YRes),
		stride: int(fi.LineLength),
		open:   true,
	}
	v.frame = make([]byte, v.h*v.stride)
	v.canvas = image.NewRGBA(image.Rect(0, 0, v.w, v.h))
	v.dc = gg.NewContextForRGBA(v.canvas)
	log.WithFields(log.Fields{"device": cfg.Device, "width": v.w, "height": v.h}).Info("video: framebuffer ready")
	v.Blank()
	return v, nil
}

// font selects the TrueType face at size, or the built-in bitmap face
// when the TrueType file is missing. The miss is logged once.
func (v *Video) font(size float64) {
	if !v.noFont {
		err := v.dc.LoadFontFace(fontPath, size)
		if err == nil {
			return
		}
		log.Warnf("video: %v, using bitmap font", err)
		v.noFont = true
	}
	v.dc.SetFontFace(basicfont.Face7x13)
}

// Status fills the screen with bg and draws a title and an optional
// detail line in fg.
func (v *Video) Status(bg, fg color.Color, title, detail string) {
	if !v.open {
		return
	}
	cx, cy := float64(v.w)/2, float64(v.h)/2
	v.dc.SetColor(bg)
	v.dc.Clear()
	v.dc.SetColor(fg)
	v.dc.SetLineWidth(8)
	v.dc.DrawRectangle(4, 4, float64(v.w-8), float64(v.h-8))
	v.dc.Stroke()

	if detail != "" {
		cy -= 30
	}
	v.font(64)
	v.dc.DrawStringAnchored(title, cx, cy, 0.5, 0.5)
	if detail != "" {
		v.font(32)
		v.dc.DrawStringAnchored(detail, cx, cy+70, 0.5, 0.5)
	}
	v.flush()
}

// flush packs the canvas as little-endian RGB565 and copies the whole
// frame at once so a half-drawn screen is never shown.
func (v *Video) flush() {
	for y := 0; y < v.h; y++ {
		row := v.frame[y*v.stride:]
		for x := 0; x < v.w && 2*x+1 < len(row); x++ {
			binary.LittleEndian.PutUint16(row[2*x:], rgb565(v.canvas.RGBAAt(x, y)))
		}
	}
	copy(v.fb, v.frame)
}

func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// Blank clears the screen.
func (v *Video) Blank() {
	if !v.open {
		return
	}
	for i := range v.fb {
		v.fb[i] = 0
	}
}

// Release blanks the screen and stops drawing.
func (v *Video) Release() error {
	v.Blank()
	v.open = false
	return nil
}
