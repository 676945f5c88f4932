package vip

import (
	"image"
	"image/draw"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/c8/chip8"
)

type gui struct {
	*link
	scale int

	buf   screen.Buffer
	tex   screen.Texture
	ops   int // updated to match frame.ops after drawing it
	dirty bool
}

func (g *gui) Run(exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		sz := image.Point{chip8.DisplayWidth * g.scale, chip8.DisplayHeight * g.scale}
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  "c8",
			Width:  sz.X,
			Height: sz.Y,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		defer g.release()
		if err = g.alloc(s, sz); err != nil {
			return
		}

		type update struct{}
		stop := make(chan bool)
		defer close(stop)
		go g.ticker(exit, stop, func() { w.Send(update{}) })

		var win size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				win = e
				g.dirty = true

			case paint.Event:
				g.dirty = true

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				k, ok := codeKeys[e.Code]
				if !ok {
					break
				}
				switch e.Direction {
				case key.DirPress:
					g.keys.Press(k)
				case key.DirRelease:
					g.keys.Release(k)
				}

			case update:
				g.sync()
				if g.ops != g.frame.ops {
					g.ops = g.frame.ops
					g.frame.Draw(g.buf.RGBA())
					g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
					g.dirty = true
				}
				if g.dirty && win.WidthPx > 0 && win.HeightPx > 0 {
					w.Scale(win.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					g.dirty = false
				}

			case error:
				g.logger.Error("window", e)
			}
		}
	})
	return err
}

func (g *gui) alloc(s screen.Screen, sz image.Point) (err error) {
	g.buf, err = s.NewBuffer(sz)
	if err != nil {
		return
	}
	g.tex, err = s.NewTexture(sz)
	if err != nil {
		return
	}
	g.frame.Draw(g.buf.RGBA())
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	return
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
	}
	if g.buf != nil {
		g.buf.Release()
	}
}

// codeKeys maps physical key positions to the keypad, so that the layout
// does not depend on the keyboard's language settings.
var codeKeys = map[key.Code]byte{
	key.Code1: 0x1, key.Code2: 0x2, key.Code3: 0x3, key.Code4: 0xc,
	key.CodeQ: 0x4, key.CodeW: 0x5, key.CodeE: 0x6, key.CodeR: 0xd,
	key.CodeA: 0x7, key.CodeS: 0x8, key.CodeD: 0x9, key.CodeF: 0xe,
	key.CodeZ: 0xa, key.CodeX: 0x0, key.CodeC: 0xb, key.CodeV: 0xf,
}
