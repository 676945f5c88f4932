package vip

import (
	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/chip8"
)

// Screen is a terminal screen.
type Screen = tcell.Screen

// tapFrames is how long a key stays held after the terminal reports a
// press. Terminals report repeats while a key is held, but not releases.
const tapFrames = 8

type term struct {
	*link
	screen tcell.Screen

	ops int
}

// interrupt wakes the event loop to sync with the machine.
type interrupt struct{}

func (t *term) Run(exit <-chan bool) error {
	s := t.screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return err
		}
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.HideCursor()
	s.Clear()
	t.draw(s)

	stop := make(chan bool)
	defer close(stop)
	go t.ticker(exit, stop, func() {
		s.PostEvent(tcell.NewEventInterrupt(interrupt{}))
	})

	for {
		ev := s.PollEvent()
		if ev == nil {
			return nil
		}

		select {
		case <-exit:
			return nil
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				if k, ok := KeyForRune(ev.Rune()); ok {
					t.keys.Tap(k, tapFrames)
				}
			}

		case *tcell.EventResize:
			s.Sync()
			t.draw(s)

		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(interrupt); !ok {
				break
			}
			wasOn := t.sound
			t.sync()
			if t.ops != t.frame.ops {
				t.ops = t.frame.ops
				t.draw(s)
			}
			if t.sound && !wasOn {
				s.Beep()
			}
		}
	}
}

// draw renders the frame with two pixels per character cell.
func (t *term) draw(s tcell.Screen) {
	style := tcell.StyleDefault.
		Foreground(tcell.ColorOrange).
		Background(tcell.ColorBlack)
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			s.SetContent(x, y/2, halfBlock(t.frame.Lit(x, y), t.frame.Lit(x, y+1)), nil, style)
		}
	}
	s.Show()
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
