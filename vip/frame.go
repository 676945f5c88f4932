package vip

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/nf/c8/chip8"
)

// Frame is a frontend's copy of the machine's display.
type Frame struct {
	Pix [chip8.DisplayWidth * chip8.DisplayHeight]byte
	ops int // number of copies taken from the machine
}

// Lit reports whether the pixel at (x, y) is set.
func (f *Frame) Lit(x, y int) bool {
	return f.Pix[y*chip8.DisplayWidth+x] != 0
}

var (
	background = color.RGBA{0x10, 0x10, 0x10, 0xff}
	foreground = color.RGBA{0xff, 0xb0, 0x00, 0xff}
)

// Image returns the frame as a 64x32 image using the given palette, where
// palette[0] is the color of unset pixels and palette[1] of set pixels.
func (f *Frame) Image(palette color.Palette) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, chip8.DisplayWidth, chip8.DisplayHeight), palette)
	copy(m.Pix, f.Pix[:])
	return m
}

// Draw scales the frame to fill dst.
func (f *Frame) Draw(dst xdraw.Image) {
	src := f.Image(color.Palette{background, foreground})
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}
