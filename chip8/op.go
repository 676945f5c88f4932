package chip8

import "fmt"

// Op represents a CHIP-8 instruction word.
type Op uint16

// X returns the second nibble of the word, usually a register index.
func (o Op) X() byte { return byte(o>>8) & 0xf }

// Y returns the third nibble of the word, usually a register index.
func (o Op) Y() byte { return byte(o>>4) & 0xf }

// N returns the low nibble of the word.
func (o Op) N() byte { return byte(o) & 0xf }

// KK returns the low byte of the word.
func (o Op) KK() byte { return byte(o) }

// NNN returns the low 12 bits of the word, usually an address.
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

func (o Op) String() string { return fmt.Sprintf("%.4x", uint16(o)) }

// Kind identifies an instruction of the CHIP-8 instruction set.
type Kind byte

const (
	ILL  Kind = iota // undefined
	CLS              // 00E0
	RET              // 00EE
	JP               // 1nnn
	CALL             // 2nnn
	SE               // 3xkk
	SNE              // 4xkk
	SER              // 5xy0
	LD               // 6xkk
	ADD              // 7xkk
	MOV              // 8xy0
	OR               // 8xy1
	AND              // 8xy2
	XOR              // 8xy3
	ADC              // 8xy4
	SUB              // 8xy5
	SHR              // 8xy6
	SUBN             // 8xy7
	SHL              // 8xyE
	SNER             // 9xy0
	LDI              // Annn
	JPV              // Bnnn
	RND              // Cxkk
	DRW              // Dxyn
	SKP              // Ex9E
	SKNP             // ExA1
	GDT              // Fx07
	KEY              // Fx0A
	SDT              // Fx15
	SST              // Fx18
	ADDI             // Fx1E
	FNT              // Fx29
	BCD              // Fx33
	STR              // Fx55
	LDR              // Fx65

	numKinds
)

var kindNames = [numKinds]string{
	"ILL", "CLS", "RET", "JP", "CALL", "SE", "SNE", "SER", "LD", "ADD",
	"MOV", "OR", "AND", "XOR", "ADC", "SUB", "SHR", "SUBN", "SHL", "SNER",
	"LDI", "JPV", "RND", "DRW", "SKP", "SKNP", "GDT", "KEY", "SDT", "SST",
	"ADDI", "FNT", "BCD", "STR", "LDR",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Instr is a decoded instruction word.
type Instr struct {
	Kind
	Op Op
}

// Decode maps an instruction word to its Kind. The leading nibble selects
// the family; families 0, 8, E and F are further keyed by their low nibble
// or byte. Words that match no rule decode to ILL.
func Decode(op Op) Instr {
	return Instr{Kind: decode(op), Op: op}
}

func decode(op Op) Kind {
	switch op >> 12 {
	case 0x0:
		switch op {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SE
	case 0x4:
		return SNE
	case 0x5:
		if op.N() == 0 {
			return SER
		}
	case 0x6:
		return LD
	case 0x7:
		return ADD
	case 0x8:
		if k := aluKinds[op.N()]; k != ILL {
			return k
		}
	case 0x9:
		if op.N() == 0 {
			return SNER
		}
	case 0xa:
		return LDI
	case 0xb:
		return JPV
	case 0xc:
		return RND
	case 0xd:
		return DRW
	case 0xe:
		switch op.KK() {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf:
		switch op.KK() {
		case 0x07:
			return GDT
		case 0x0a:
			return KEY
		case 0x15:
			return SDT
		case 0x18:
			return SST
		case 0x1e:
			return ADDI
		case 0x29:
			return FNT
		case 0x33:
			return BCD
		case 0x55:
			return STR
		case 0x65:
			return LDR
		}
	}
	return ILL
}

// aluKinds is indexed by the low nibble of an 8xyN word.
var aluKinds = [16]Kind{
	0x0: MOV,
	0x1: OR,
	0x2: AND,
	0x3: XOR,
	0x4: ADC,
	0x5: SUB,
	0x6: SHR,
	0x7: SUBN,
	0xe: SHL,
}

func (in Instr) String() string {
	op := in.Op
	switch in.Kind {
	case CLS, RET:
		return in.Kind.String()
	case JP, CALL, LDI:
		return fmt.Sprintf("%s %.3x", in.Kind, op.NNN())
	case JPV:
		return fmt.Sprintf("%s %.3x+V0", in.Kind, op.NNN())
	case SE, SNE, LD, ADD, RND:
		return fmt.Sprintf("%s V%X %.2x", in.Kind, op.X(), op.KK())
	case SER, SNER, MOV, OR, AND, XOR, ADC, SUB, SUBN:
		return fmt.Sprintf("%s V%X V%X", in.Kind, op.X(), op.Y())
	case DRW:
		return fmt.Sprintf("%s V%X V%X %d", in.Kind, op.X(), op.Y(), op.N())
	case SHR, SHL, SKP, SKNP, GDT, KEY, SDT, SST, ADDI, FNT, BCD:
		return fmt.Sprintf("%s V%X", in.Kind, op.X())
	case STR, LDR:
		return fmt.Sprintf("%s V0-V%X", in.Kind, op.X())
	default:
		return fmt.Sprintf("%s %s", in.Kind, op)
	}
}
