package vip

import (
	"fmt"
	"sync"

	"github.com/nf/c8/chip8"
)

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // running again after a pause or reset
	RunState                    // periodic report while running
	PauseState
	HaltState
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case RunState:
		return "run"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// StateFunc is called with the machine while it is not executing. It must
// not retain m.
type StateFunc func(m *chip8.Machine, k StateKind)

// Runner drives a VIP and its frontend.
type Runner struct {
	cfg   Config
	dev   bool
	ctl   *control
	state StateFunc

	reset     chan *VIP
	resetDone chan bool

	stop     chan bool
	stopOnce sync.Once
	finished chan bool
}

// NewRunner returns a Runner using cfg. In dev mode a fault does not end
// Run; the frontend keeps running until the program is replaced by Reset
// or the user quits. If state is non-nil it receives machine state reports.
func NewRunner(cfg Config, devMode bool, state StateFunc) *Runner {
	cfg = cfg.withDefaults()
	if state == nil {
		state = func(*chip8.Machine, StateKind) {}
	}
	return &Runner{
		cfg:       cfg,
		dev:       devMode,
		ctl:       newControl(cfg),
		state:     state,
		reset:     make(chan *VIP),
		resetDone: make(chan bool),
		stop:      make(chan bool),
		finished:  make(chan bool),
	}
}

// Reset replaces the running VIP with v. It does nothing once Run has
// returned.
func (r *Runner) Reset(v *VIP) {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	select {
	case r.reset <- v:
		<-r.resetDone
	case <-r.finished:
	}
}

// Stop makes Run return as if the user had quit.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Pause stops execution at the next frame; the frontend keeps running.
func (r *Runner) Pause() { r.ctl.paused.Store(true) }

// Resume continues execution after Pause.
func (r *Runner) Resume() { r.ctl.paused.Store(false) }

// SetSpeed sets the number of instructions executed per frame.
func (r *Runner) SetSpeed(cycles int) error {
	if cycles <= 0 || cycles > 10000 {
		return fmt.Errorf("invalid speed %d", cycles)
	}
	r.ctl.cycles.Store(int32(cycles))
	return nil
}

// Run executes v until the frontend exits, Stop is called or, outside dev
// mode, the machine faults, in which case the fault is returned. A Runner
// runs only once.
func (r *Runner) Run(v *VIP) error {
	var (
		fe   = newFrontend(r.cfg)
		l    = fe.handoff()
		exit = make(chan bool)
		quit = make(chan bool)
		done = make(chan error, 1)
	)
	r.attach(v)
	go func() {
		defer close(r.finished)
		var (
			execErr = make(chan error)
			running = true
		)
		go func() { execErr <- v.Exec(l) }()
		for {
			select {
			case newV := <-r.reset:
				if running {
					v.Halt()
					<-execErr
				}
				v = newV
				r.attach(v)
				running = true
				r.state(v.m, ClearState)
				go func() { execErr <- v.Exec(l) }()
				r.resetDone <- true
			case err := <-execErr:
				running = false
				r.state(v.m, HaltState)
				if r.dev && err != nil {
					r.cfg.Logger.Info("waiting for reset")
					break
				}
				close(exit)
				done <- err
				return
			case <-r.stop:
				if running {
					v.Halt()
					<-execErr
				}
				close(exit)
				done <- nil
				return
			case <-quit:
				if running {
					v.Halt()
					<-execErr
				}
				done <- nil
				return
			}
		}
	}()
	feErr := fe.Run(exit)
	close(quit)
	err := <-done
	if feErr != nil {
		return fmt.Errorf("%v: %w", r.cfg.Frontend, feErr)
	}
	return err
}

func (r *Runner) attach(v *VIP) {
	v.ctl = r.ctl
	v.state = r.state
	v.m.Timers = r.cfg.Timers
}
