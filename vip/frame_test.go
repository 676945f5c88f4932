package vip

import (
	"image"
	"image/color"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/nf/c8/chip8"
)

func TestFrameImage(t *testing.T) {
	var f Frame
	f.Pix[0] = 1
	f.Pix[31*chip8.DisplayWidth+63] = 1
	m := f.Image(color.Palette{color.Black, color.White})
	assert.Equal(t, image.Rect(0, 0, 64, 32), m.Bounds())
	assert.Equal(t, uint8(1), m.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), m.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(1), m.ColorIndexAt(63, 31))
	assert.Equal(t, true, f.Lit(63, 31))
	assert.Equal(t, false, f.Lit(62, 31))
}

func TestFrameDraw(t *testing.T) {
	var f Frame
	f.Pix[2*chip8.DisplayWidth+5] = 1 // (5, 2)
	const scale = 4
	dst := image.NewRGBA(image.Rect(0, 0, chip8.DisplayWidth*scale, chip8.DisplayHeight*scale))
	f.Draw(dst)
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			want := background
			if x/scale == 5 && y/scale == 2 {
				want = foreground
			}
			if got := dst.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d, %d) is %v, want %v", x, y, got, want)
			}
		}
	}
}
