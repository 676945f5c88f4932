// Package vip implements a host for CHIP-8 programs, modeled on the
// COSMAC VIP that first ran them: a 60 Hz frame clock, a 64x32 display,
// a hexadecimal keypad and a beeper.
package vip

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/chip8"
)

// Config holds the settings of a VIP and its Runner.
type Config struct {
	Frontend Frontend

	// CyclesPerFrame is the number of instructions executed per frame.
	CyclesPerFrame int
	// FrameRate is the number of frames per second; it is also the rate
	// at which the delay and sound timers count down.
	FrameRate int
	// Frames stops a Headless run after this many frames (0 is no limit).
	Frames int

	Timers chip8.TimerMode

	// Scale is the size of a CHIP-8 pixel in the GUI window.
	Scale int

	// Screen is used by the Terminal frontend; nil means the terminal
	// connected to the process.
	Screen Screen

	Beepers []Beeper

	// Logger receives faults, unimplemented instructions and the trace
	// of the instructions leading up to a fault. nil logs to stderr.
	Logger *log.Logger
}

const (
	DefaultCyclesPerFrame = 10
	DefaultFrameRate      = 60
	DefaultScale          = 10
)

func (c Config) withDefaults() Config {
	if c.CyclesPerFrame <= 0 {
		c.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if c.FrameRate <= 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.Scale <= 0 {
		c.Scale = DefaultScale
	}
	if c.Logger == nil {
		cfg := log.DefaultConfig()
		cfg.Output = os.Stderr
		c.Logger = log.NewWithConfig(cfg)
	}
	return c
}

// control holds the settings that may be changed while a program runs.
type control struct {
	paused atomic.Bool
	cycles atomic.Int32
}

func newControl(cfg Config) *control {
	c := &control{}
	c.cycles.Store(int32(cfg.CyclesPerFrame))
	return c
}

// VIP is a CHIP-8 machine with a program loaded, ready to be driven frame
// by frame by a frontend.
type VIP struct {
	m      *chip8.Machine
	ctl    *control
	state  StateFunc
	logger *log.Logger

	trace    backlog
	reported map[uint16]bool
	frames   int

	halt chan bool
}

// New returns a VIP running rom.
func New(rom []byte, cfg Config) (*VIP, error) {
	cfg = cfg.withDefaults()
	m := chip8.NewMachine()
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	m.Timers = cfg.Timers
	return &VIP{
		m:        m,
		ctl:      newControl(cfg),
		state:    func(*chip8.Machine, StateKind) {},
		logger:   cfg.Logger,
		reported: map[uint16]bool{},
		halt:     make(chan bool),
	}, nil
}

// Halt stops a running Exec.
func (v *VIP) Halt() {
	close(v.halt)
}

// stateInterval is the number of frames between RunState reports.
const stateInterval = 6

// Exec runs frames each time the frontend connected to l asks for one,
// until Halt is called or the machine faults.
func (v *VIP) Exec(l *link) error {
	paused := false
	for {
		select {
		case l.update <- v:
			// The frontend may access the machine until it
			// sends on updateDone.
			<-l.updateDone
		case <-v.halt:
			return nil
		}
		if p := v.ctl.paused.Load(); p != paused {
			paused = p
			if paused {
				v.state(v.m, PauseState)
			} else {
				v.state(v.m, ClearState)
			}
		}
		if paused {
			continue
		}
		if err := v.frame(); err != nil {
			return err
		}
		if v.frames%stateInterval == 0 {
			v.state(v.m, RunState)
		}
	}
}

// frame executes one frame's worth of instructions and then ticks the
// timers.
func (v *VIP) frame() error {
	v.frames++
	n := int(v.ctl.cycles.Load())
cycles:
	for i := 0; i < n; i++ {
		pc := v.m.PC
		if op, ok := v.m.OpAt(pc); ok {
			v.trace.record(pc, op)
		}
		err := v.m.Exec()
		var unimpl chip8.UnimplementedError
		switch {
		case err == nil:
		case errors.Is(err, chip8.ErrWaitKey):
			// The keypad only changes between frames.
			break cycles
		case errors.As(err, &unimpl):
			if !v.reported[unimpl.Addr] {
				v.reported[unimpl.Addr] = true
				v.logger.Warn("unimplemented opcode",
					log.String("op", unimpl.Op.String()),
					log.String("addr", fmt.Sprintf("%.4x", unimpl.Addr)))
			}
		default:
			v.logger.Error("machine halted", err,
				log.Int("frame", v.frames),
				log.Int("backlog", v.trace.len()))
			v.trace.emit(v.logger)
			return fmt.Errorf("chip8: %w", err)
		}
	}
	if v.m.Timers == chip8.TimersExternal {
		v.m.Tick()
	}
	return nil
}

// exchange hands the keypad state to the machine and the display and
// sound state to the frontend. It must only be called between receiving
// from update and sending on updateDone.
func (v *VIP) exchange(l *link) (changed bool) {
	v.m.Keys = l.keys.next()
	if v.m.Redraw {
		l.frame.Pix = v.m.Display
		l.frame.ops++
		v.m.Redraw = false
		changed = true
	}
	l.sound = v.m.SoundOn()
	for _, b := range l.beepers {
		b.Beep(l.sound)
	}
	return changed
}

// Machine returns the machine run by v. It is only safe to use while no
// Exec is running.
func (v *VIP) Machine() *chip8.Machine { return v.m }

// backlog keeps the most recently executed instructions.
type backlog struct {
	entries [maxBacklog]traceEntry
	n       int // total recorded
}

type traceEntry struct {
	pc uint16
	op chip8.Op
}

const maxBacklog = 100

func (b *backlog) record(pc uint16, op chip8.Op) {
	b.entries[b.n%maxBacklog] = traceEntry{pc, op}
	b.n++
}

func (b *backlog) len() int {
	if b.n < maxBacklog {
		return b.n
	}
	return maxBacklog
}

func (b *backlog) emit(l *log.Logger) {
	for i := b.n - b.len(); i < b.n; i++ {
		e := b.entries[i%maxBacklog]
		l.Info("trace",
			log.String("pc", fmt.Sprintf("%.4x", e.pc)),
			log.String("op", e.op.String()),
			log.String("instr", chip8.Decode(e.op).String()))
	}
}
