package chip8

import (
	"fmt"
	"testing"
)

func TestExec(t *testing.T) {
	c := newExecTestCase
	for i, c := range []*execTestCase{
		c(0x00e0).pixel(3, 4).want().redraw(),
		c(0x00ee).stack(0x345).want().stack().pc(0x345),

		c(0x1234).want().pc(0x234),
		c(0x2456).want().stack(0x202).pc(0x456),
		c(0x2456).stack(0x300, 0x310).want().stack(0x300, 0x310, 0x202).pc(0x456),
		c(0xb300).v(0, 0x10).want().pc(0x310),

		c(0x3a42).v(0xa, 0x42).want().pc(0x204),
		c(0x3a42).v(0xa, 0x41),
		c(0x4a42).v(0xa, 0x42),
		c(0x4a42).v(0xa, 0x41).want().pc(0x204),
		c(0x5ab0).v(0xa, 7).v(0xb, 7).want().pc(0x204),
		c(0x5ab0).v(0xa, 7).v(0xb, 8),
		c(0x9ab0).v(0xa, 7).v(0xb, 7),
		c(0x9ab0).v(0xa, 7).v(0xb, 8).want().pc(0x204),

		c(0x6a42).want().v(0xa, 0x42),
		c(0x7a02).v(0xa, 0x40).want().v(0xa, 0x42),
		c(0x7a02).v(0xa, 0xff).v(0xf, 7).want().v(0xa, 0x01),
		c(0x7f01).v(0xf, 0xff).want().v(0xf, 0),

		c(0x8ab0).v(0xb, 9).want().v(0xa, 9),
		c(0x8ab1).v(0xa, 0x36).v(0xb, 0x63).want().v(0xa, 0x77),
		c(0x8ab2).v(0xa, 0x99).v(0xb, 0xb8).want().v(0xa, 0x98),
		c(0x8ab3).v(0xa, 0x31).v(0xb, 0x13).want().v(0xa, 0x22),

		c(0x8ab4).v(0xa, 200).v(0xb, 100).want().v(0xa, 44).v(0xf, 1),
		c(0x8ab4).v(0xa, 10).v(0xb, 20).v(0xf, 1).want().v(0xa, 30).v(0xf, 0),
		c(0x8ab4).v(0xa, 0xff).v(0xb, 1).want().v(0xa, 0).v(0xf, 1),
		c(0x8f14).v(0xf, 200).v(1, 100).want().v(0xf, 1),

		c(0x8ab5).v(0xa, 5).v(0xb, 3).want().v(0xa, 2).v(0xf, 1),
		c(0x8ab5).v(0xa, 3).v(0xb, 5).v(0xf, 1).want().v(0xa, 254).v(0xf, 0),
		c(0x8ab5).v(0xa, 3).v(0xb, 3).want().v(0xa, 0).v(0xf, 1),
		c(0x8ab7).v(0xa, 3).v(0xb, 5).want().v(0xa, 2).v(0xf, 1),
		c(0x8ab7).v(0xa, 5).v(0xb, 3).v(0xf, 1).want().v(0xa, 254).v(0xf, 0),

		c(0x8a06).v(0xa, 0x05).want().v(0xa, 0x02).v(0xf, 1),
		c(0x8a06).v(0xa, 0x04).v(0xf, 1).want().v(0xa, 0x02).v(0xf, 0),
		c(0x8a0e).v(0xa, 0x81).want().v(0xa, 0x02).v(0xf, 1),
		c(0x8a0e).v(0xa, 0x41).v(0xf, 1).want().v(0xa, 0x82).v(0xf, 0),
		c(0x8f06).v(0xf, 0x02).want().v(0xf, 0),

		c(0xa123).want().i(0x123),
		c(0xfa1e).i(0x100).v(0xa, 0x20).want().i(0x120),
		c(0xfa1e).i(0xfff0).v(0xa, 0x20).want().i(0x0010),
		c(0xfa29).v(0xa, 0x0b).want().i(0x087),
		c(0xfa29).v(0xa, 0x1f).want().i(0x09b),

		c(0xfa33).i(0x300).v(0xa, 254).want().mem(0x300, 2, 5, 4),
		c(0xfa33).i(0x300).v(0xa, 7).mem(0x300, 9, 9, 9).want().mem(0x300, 0, 0, 7),
		c(0xf255).i(0x300).v(0, 1).v(1, 2).v(2, 3).v(3, 4).want().mem(0x300, 1, 2, 3),
		c(0xf265).i(0x300).mem(0x300, 1, 2, 3, 4).want().v(0, 1).v(1, 2).v(2, 3),
		c(0xff55).i(0xff0).want(),

		c(0xca00).v(0xa, 0x55).want().v(0xa, 0),

		c(0xea9e).v(0xa, 5).key(5).want().pc(0x204),
		c(0xea9e).v(0xa, 5).key(6),
		c(0xea9e).v(0xa, 0x15).key(5).want().pc(0x204),
		c(0xeaa1).v(0xa, 5).key(5),
		c(0xeaa1).v(0xa, 5).key(6).want().pc(0x204),

		c(0xfa07).dt(0x33).want().v(0xa, 0x33),
		c(0xfa15).v(0xa, 0x44).want().dt(0x44),
		c(0xfa18).v(0xa, 0x55).want().st(0x55),

		c(0xfa0a).want().pc(0x200).error(ErrWaitKey),
		c(0xfa0a).key(9).key(5).want().v(0xa, 5),
		c(0xfa0a).key(0).want().v(0xa, 0),

		c(0x0123).error(UnimplementedError{Op: 0x0123, Addr: 0x200}),
		c(0x5ab1).v(0xa, 1).v(0xb, 1).error(UnimplementedError{Op: 0x5ab1, Addr: 0x200}),
		c(0x8ab8).v(0xa, 1).error(UnimplementedError{Op: 0x8ab8, Addr: 0x200}),
		c(0x9ab3).error(UnimplementedError{Op: 0x9ab3, Addr: 0x200}),
		c(0xeaff).error(UnimplementedError{Op: 0xeaff, Addr: 0x200}),
		c(0xfaff).error(UnimplementedError{Op: 0xfaff, Addr: 0x200}),

		c(0x00ee).error(FaultError{FaultCode: StackUnderflow, Op: 0x00ee, Addr: 0x200}),
		c(0x2456).stack(fullStack()...).
			error(FaultError{FaultCode: StackOverflow, Op: 0x2456, Addr: 0x200}),
		c(0xf255).i(0xffe).
			error(FaultError{FaultCode: OutOfBounds, Op: 0xf255, Addr: 0x200}),
		c(0xf265).i(0xfff).
			error(FaultError{FaultCode: OutOfBounds, Op: 0xf265, Addr: 0x200}),
		c(0xf155).i(0xffe).v(0, 0xaa).v(1, 0xbb).want().mem(0xffe, 0xaa, 0xbb),
		c(0xf165).i(0xffe).mem(0xffe, 0xcc, 0xdd).want().v(0, 0xcc).v(1, 0xdd),
		c(0xf055).i(0xfff).v(0, 0x11).want().mem(0xfff, 0x11),
		c(0xf065).i(0xfff).mem(0xfff, 0x22).want().v(0, 0x22),
		c(0xfa33).i(0xffe).v(0xa, 123).want().mem(0xffe, 1, 2).
			error(FaultError{FaultCode: OutOfBounds, Op: 0xfa33, Addr: 0x200}),
		c(0xd012).i(0xfff).want().
			error(FaultError{FaultCode: OutOfBounds, Op: 0xd012, Addr: 0x200}),
	} {
		t.Run(fmt.Sprintf("%s_%d", c.op, i), func(t *testing.T) {
			if err := c.m.Exec(); err != c.err {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			if g, w := c.m.V, c.w.V; g != w {
				t.Errorf("registers are\n\t%x\nwant\n\t%x", g, w)
			}
			if g, w := c.m.I, c.w.I; g != w {
				t.Errorf("I is %.4x, want %.4x", g, w)
			}
			if g, w := c.m.Stack[:c.m.SP], c.w.Stack[:c.w.SP]; fmt.Sprint(g) != fmt.Sprint(w) {
				t.Errorf("stack is %x, want %x", g, w)
			}
			if g, w := c.m.Mem, c.w.Mem; g != w {
				for i := 0; i < len(g) && i < len(w); i++ {
					if g[i] != w[i] {
						t.Errorf("memory[%.4x] = %.2x, want %.2x", i, g[i], w[i])
					}
				}
			}
			if g, w := c.m.Display, c.w.Display; g != w {
				t.Errorf("display differs")
			}
			if g, w := c.m.Redraw, c.w.Redraw; g != w {
				t.Errorf("Redraw is %v, want %v", g, w)
			}
			if g, w := c.m.DT, c.w.DT; g != w {
				t.Errorf("DT is %d, want %d", g, w)
			}
			if g, w := c.m.ST, c.w.ST; g != w {
				t.Errorf("ST is %d, want %d", g, w)
			}
			if g, w := c.m.PC, c.w.PC; g != w {
				t.Errorf("PC is %x, want %x", g, w)
			}
		})
	}
}

type execTestCase struct {
	op   Op
	m, w *Machine
	err  error
	set  *Machine
}

// newExecTestCase returns a test case that executes op at ProgramStart.
// Until want is called the setters apply to both the machine under test and
// the expected result; afterwards they apply only to the expected result.
func newExecTestCase(op Op) *execTestCase {
	c := &execTestCase{op: op}
	rom := []byte{byte(op >> 8), byte(op)}
	c.m = NewMachine()
	c.m.Load(rom)
	c.w = NewMachine()
	c.w.Load(rom)
	c.w.PC += 2
	c.set = c.m
	return c
}

func (c *execTestCase) each(f func(m *Machine)) *execTestCase {
	f(c.set)
	if c.set == c.m {
		f(c.w)
	}
	return c
}

func (c *execTestCase) v(r, b byte) *execTestCase {
	return c.each(func(m *Machine) { m.V[r] = b })
}

func (c *execTestCase) i(addr uint16) *execTestCase {
	return c.each(func(m *Machine) { m.I = addr })
}

func (c *execTestCase) mem(addr uint16, bytes ...byte) *execTestCase {
	return c.each(func(m *Machine) { copy(m.Mem[addr:], bytes) })
}

func (c *execTestCase) stack(addrs ...uint16) *execTestCase {
	return c.each(func(m *Machine) {
		copy(m.Stack[:], addrs)
		m.SP = byte(len(addrs))
	})
}

func (c *execTestCase) key(k byte) *execTestCase {
	return c.each(func(m *Machine) { m.Keys[k] = 1 })
}

func (c *execTestCase) dt(b byte) *execTestCase {
	return c.each(func(m *Machine) { m.DT = b })
}

func (c *execTestCase) st(b byte) *execTestCase {
	return c.each(func(m *Machine) { m.ST = b })
}

func (c *execTestCase) pixel(x, y int) *execTestCase {
	return c.each(func(m *Machine) { m.Display[y*DisplayWidth+x] = 1 })
}

func (c *execTestCase) redraw() *execTestCase {
	c.w.Display = [DisplayWidth * DisplayHeight]byte{}
	c.w.Redraw = true
	return c
}

func (c *execTestCase) pc(addr uint16) *execTestCase {
	c.set.PC = addr
	return c
}

func (c *execTestCase) want() *execTestCase {
	c.set = c.w
	return c
}

func (c *execTestCase) error(err error) *execTestCase {
	c.err = err
	return c
}

func fullStack() []uint16 {
	s := make([]uint16, StackSize)
	for i := range s {
		s[i] = 0x300 + uint16(i)*2
	}
	return s
}
