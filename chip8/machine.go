// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	MemSize      = 0x1000
	ProgramStart = 0x200
	MaxProgram   = MemSize - ProgramStart

	NumRegs   = 16
	StackSize = 16
	NumKeys   = 16

	DisplayWidth  = 64
	DisplayHeight = 32

	// FlagReg is the register that carries carry, borrow, shift and
	// collision results.
	FlagReg = 0xf
)

// TimerMode selects how the delay and sound timers are decremented.
type TimerMode byte

const (
	// TimersExternal leaves the timers to the host, which must call Tick
	// at the timer cadence (conventionally 60 Hz). Both timers count down
	// independently.
	TimersExternal TimerMode = iota

	// TimersPerCycle decrements one timer at the end of every Exec: the
	// sound timer if it is nonzero, otherwise the delay timer.
	TimersPerCycle
)

func (t TimerMode) String() string {
	switch t {
	case TimersExternal:
		return "frame"
	case TimersPerCycle:
		return "cycle"
	}
	return fmt.Sprintf("TimerMode(%d)", byte(t))
}

// Machine is an implementation of a CHIP-8 CPU and its memory, display
// and keypad. A Machine must only be used by one goroutine at a time.
type Machine struct {
	Mem   [MemSize]byte
	V     [NumRegs]byte
	I     uint16
	PC    uint16
	Stack [StackSize]uint16
	SP    byte
	DT    byte // delay timer
	ST    byte // sound timer

	// Display holds one byte (0 or 1) per pixel, row by row.
	// Redraw is set whenever Display is written and should be cleared
	// by the host once it has presented the display.
	Display [DisplayWidth * DisplayHeight]byte
	Redraw  bool

	// Keys holds the keypad state (1 is held, 0 is released).
	// It is written by the host and only read by the machine.
	Keys [NumKeys]byte

	Timers TimerMode
	Rand   *rand.Rand

	fault error // set by the first fatal fault
}

// NewMachine returns a Machine with the glyph table loaded at FontAddr and
// the program counter at ProgramStart.
func NewMachine() *Machine {
	m := &Machine{
		PC:   ProgramStart,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	copy(m.Mem[FontAddr:], font[:])
	return m
}

// ErrCapacityExceeded is returned by Load if the program does not fit in
// memory above ProgramStart.
var ErrCapacityExceeded = errors.New("program too large")

// Load copies rom into memory at ProgramStart. Nothing is copied if rom is
// larger than MaxProgram bytes.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgram {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrCapacityExceeded, len(rom), MaxProgram)
	}
	copy(m.Mem[ProgramStart:], rom)
	return nil
}

// Read returns the byte at addr.
func (m *Machine) Read(addr uint16) (byte, error) {
	if int(addr) >= MemSize {
		return 0, FaultError{FaultCode: OutOfBounds, Addr: addr}
	}
	return m.Mem[addr], nil
}

// Write sets the byte at addr to v.
func (m *Machine) Write(addr uint16, v byte) error {
	if int(addr) >= MemSize {
		return FaultError{FaultCode: OutOfBounds, Addr: addr}
	}
	m.Mem[addr] = v
	return nil
}

// load and store are the bounds checked memory accessors used while
// executing; they panic with OutOfBounds, which Exec recovers.
func (m *Machine) load(addr int) byte {
	if addr < 0 || addr >= MemSize {
		panic(OutOfBounds)
	}
	return m.Mem[addr]
}

func (m *Machine) store(addr int, v byte) {
	if addr < 0 || addr >= MemSize {
		panic(OutOfBounds)
	}
	m.Mem[addr] = v
}

func (m *Machine) push(addr uint16) {
	if m.SP >= StackSize {
		panic(StackOverflow)
	}
	m.Stack[m.SP] = addr
	m.SP++
}

func (m *Machine) pop() uint16 {
	if m.SP == 0 {
		panic(StackUnderflow)
	}
	m.SP--
	return m.Stack[m.SP]
}

// Tick decrements each nonzero timer by one.
func (m *Machine) Tick() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// SoundOn reports whether the machine should be emitting sound.
func (m *Machine) SoundOn() bool { return m.ST != 0 }

// OpAt returns the instruction word at addr and reports whether addr holds
// a complete instruction.
func (m *Machine) OpAt(addr uint16) (Op, bool) {
	if int(addr) > MemSize-2 {
		return 0, false
	}
	return Op(short(m.Mem[addr], m.Mem[addr+1])), true
}

// Halted reports the fatal fault that stopped the machine, if any.
func (m *Machine) Halted() error { return m.fault }

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
