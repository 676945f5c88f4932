package vip

import (
	"fmt"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Frontend selects how a Runner presents the machine to the user.
type Frontend int

const (
	GUI      Frontend = iota // a window, with sound recorded by Beepers only
	Terminal                 // the terminal, drawn with block characters
	Headless                 // no input or output other than Beepers
)

func (f Frontend) String() string {
	switch f {
	case GUI:
		return "gui"
	case Terminal:
		return "term"
	case Headless:
		return "headless"
	}
	return fmt.Sprintf("Frontend(%d)", int(f))
}

// ParseFrontend returns the Frontend named s.
func ParseFrontend(s string) (Frontend, error) {
	for f := GUI; f <= Headless; f++ {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown frontend %q", s)
}

type frontend interface {
	handoff() *link
	// Run drives the frontend until exit is closed or the user quits.
	Run(exit <-chan bool) error
}

func newFrontend(cfg Config) frontend {
	l := newLink(cfg)
	switch cfg.Frontend {
	case Terminal:
		return &term{link: l, screen: cfg.Screen}
	case Headless:
		return &headless{link: l, frames: cfg.Frames}
	default:
		return &gui{link: l, scale: cfg.Scale}
	}
}

// link is the hand-off between a VIP's Exec loop and a frontend. A VIP is
// only ever accessed by the frontend after receiving it from update and
// before sending on updateDone.
type link struct {
	update     chan *VIP
	updateDone chan bool

	period  time.Duration
	logger  *log.Logger
	keys    Keypad
	frame   Frame
	sound   bool
	beepers []Beeper
}

func newLink(cfg Config) *link {
	return &link{
		update:     make(chan *VIP),
		updateDone: make(chan bool),
		period:     time.Second / time.Duration(cfg.FrameRate),
		logger:     cfg.Logger,
		beepers:    cfg.Beepers,
	}
}

func (l *link) handoff() *link { return l }

// sync lets the VIP run its next frame, exchanging keypad, display and
// sound state with it first. It reports false if the VIP is busy or not
// running, and whether the display changed.
func (l *link) sync() (ok, changed bool) {
	select {
	case v := <-l.update:
		changed = v.exchange(l)
		l.updateDone <- true
		return true, changed
	default:
		return false, false
	}
}

// ticker calls f every frame period until exit or stop is closed. When
// exit is closed f is called once more, to wake an event loop that is
// blocked waiting for its next event.
func (l *link) ticker(exit <-chan bool, stop <-chan bool, f func()) {
	t := time.NewTicker(l.period)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			f()
		case <-exit:
			f()
			return
		case <-stop:
			return
		}
	}
}

type headless struct {
	*link
	frames int
}

func (h *headless) Run(exit <-chan bool) error {
	t := time.NewTicker(h.period)
	defer t.Stop()
	n := 0
	for {
		select {
		case <-t.C:
			if ok, _ := h.sync(); ok {
				n++
			}
			if h.frames > 0 && n >= h.frames {
				return nil
			}
		case <-exit:
			return nil
		}
	}
}
