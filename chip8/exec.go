package chip8

import (
	"errors"
	"fmt"
)

// ErrWaitKey is returned by Exec when the instruction is waiting for a key
// press and no key is held. The program counter is left pointing at the
// waiting instruction, so it runs again on the next call to Exec.
var ErrWaitKey = errors.New("waiting for key")

// Exec executes the instruction at m.PC. It returns ErrWaitKey if that
// instruction is waiting for a key, an UnimplementedError if the word is
// not a CHIP-8 instruction (execution may continue), and a FaultError if
// execution cannot continue. Once a FaultError has been returned every
// later call returns it again.
func (m *Machine) Exec() (err error) {
	if m.fault != nil {
		return m.fault
	}
	var (
		opPC = m.PC
		op   Op // zero until fetched
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(FaultCode); ok {
				m.fault = FaultError{
					FaultCode: code,
					Op:        op,
					Addr:      opPC,
				}
				err = m.fault
			} else {
				panic(e)
			}
		}
	}()

	op = Op(short(m.load(int(opPC)), m.load(int(opPC)+1)))
	m.PC += 2
	err = m.exec(Decode(op), opPC)

	if m.Timers == TimersPerCycle {
		if m.ST > 0 {
			m.ST--
		} else if m.DT > 0 {
			m.DT--
		}
	}
	return err
}

func (m *Machine) exec(in Instr, opPC uint16) error {
	var (
		op = in.Op
		x  = op.X()
		y  = op.Y()
		vx = m.V[x]
		vy = m.V[y]
	)
	switch in.Kind {
	case CLS:
		m.Display = [DisplayWidth * DisplayHeight]byte{}
		m.Redraw = true
	case RET:
		m.PC = m.pop()
	case JP:
		m.PC = op.NNN()
	case CALL:
		m.push(m.PC)
		m.PC = op.NNN()
	case SE:
		m.skipIf(vx == op.KK())
	case SNE:
		m.skipIf(vx != op.KK())
	case SER:
		m.skipIf(vx == vy)
	case SNER:
		m.skipIf(vx != vy)
	case LD:
		m.V[x] = op.KK()
	case ADD:
		m.V[x] = vx + op.KK()
	case MOV:
		m.V[x] = vy
	case OR:
		m.V[x] = vx | vy
	case AND:
		m.V[x] = vx & vy
	case XOR:
		m.V[x] = vx ^ vy
	case ADC:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = byte(sum)
		m.setFlag(sum > 0xff)
	case SUB:
		m.V[x] = vx - vy
		m.setFlag(vx >= vy)
	case SUBN:
		m.V[x] = vy - vx
		m.setFlag(vy >= vx)
	case SHR:
		m.V[x] = vx >> 1
		m.V[FlagReg] = vx & 0x01
	case SHL:
		m.V[x] = vx << 1
		m.V[FlagReg] = vx >> 7
	case LDI:
		m.I = op.NNN()
	case JPV:
		m.PC = op.NNN() + uint16(m.V[0])
	case RND:
		m.V[x] = byte(m.Rand.Intn(0x100)) & op.KK()
	case DRW:
		m.draw(vx, vy, op.N())
	case SKP:
		m.skipIf(m.Keys[vx&0xf] != 0)
	case SKNP:
		m.skipIf(m.Keys[vx&0xf] == 0)
	case GDT:
		m.V[x] = m.DT
	case KEY:
		for k, held := range m.Keys {
			if held != 0 {
				m.V[x] = byte(k)
				return nil
			}
		}
		m.PC = opPC
		return ErrWaitKey
	case SDT:
		m.DT = vx
	case SST:
		m.ST = vx
	case ADDI:
		m.I += uint16(vx)
	case FNT:
		m.I = GlyphAddr(vx)
	case BCD:
		i := int(m.I)
		m.store(i, vx/100)
		m.store(i+1, vx/10%10)
		m.store(i+2, vx%10)
	case STR:
		i := m.blockStart(x)
		for r := 0; r <= int(x); r++ {
			m.store(i+r, m.V[r])
		}
	case LDR:
		i := m.blockStart(x)
		for r := 0; r <= int(x); r++ {
			m.V[r] = m.load(i + r)
		}
	default:
		return UnimplementedError{Op: op, Addr: opPC}
	}
	return nil
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

func (m *Machine) setFlag(b bool) {
	if b {
		m.V[FlagReg] = 1
	} else {
		m.V[FlagReg] = 0
	}
}

// blockStart returns I after checking that registers V0 through Vx can be
// transferred to or from memory starting there, so that a transfer is
// never left half done.
func (m *Machine) blockStart(x byte) int {
	i := int(m.I)
	if i+int(x) >= MemSize {
		panic(OutOfBounds)
	}
	return i
}

// draw XORs an n row sprite read from I onto the display at (vx, vy),
// wrapping around the edges of the display.
func (m *Machine) draw(vx, vy, n byte) {
	var (
		x0       = int(vx) % DisplayWidth
		y0       = int(vy) % DisplayHeight
		collided = false
	)
	for row := 0; row < int(n); row++ {
		bits := m.load(int(m.I) + row)
		y := (y0 + row) % DisplayHeight
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			p := &m.Display[y*DisplayWidth+(x0+col)%DisplayWidth]
			if *p != 0 {
				collided = true
			}
			*p ^= 1
		}
	}
	m.setFlag(collided)
	m.Redraw = true
}

// FaultError is returned by Exec if execution is stopped by a fatal
// condition.
type FaultError struct {
	FaultCode
	Op   Op
	Addr uint16
}

func (e FaultError) Error() string {
	if e.Op == 0 { // not executing
		return fmt.Sprintf("%s at %.4x", e.FaultCode, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.4x", e.FaultCode, Decode(e.Op), e.Addr)
}

// Is reports whether target is the FaultCode of e, so that
// errors.Is(err, OutOfBounds) matches any out of bounds fault.
func (e FaultError) Is(target error) bool {
	c, ok := target.(FaultCode)
	return ok && c == e.FaultCode
}

// FaultCode signifies the type of condition that stopped execution.
type FaultCode byte

const (
	OutOfBounds    FaultCode = 0x01
	StackOverflow  FaultCode = 0x02
	StackUnderflow FaultCode = 0x03
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		OutOfBounds:    "out of bounds",
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func (c FaultCode) Error() string { return c.String() }

// UnimplementedError is returned by Exec when the word at Addr is not a
// CHIP-8 instruction. The word is skipped and execution may continue.
type UnimplementedError struct {
	Op   Op
	Addr uint16
}

func (e UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented opcode %s at %.4x", e.Op, e.Addr)
}
