package vip

import "github.com/nf/c8/chip8"

// Keypad tracks which of the 16 hexadecimal keys are held.
// It is owned by a frontend's event loop.
type Keypad struct {
	// held counts the frames a key remains held; holdKey means until
	// it is released.
	held [chip8.NumKeys]int
}

const holdKey = -1

// Press holds key until Release is called.
func (k *Keypad) Press(key byte) { k.held[key&0xf] = holdKey }

// Release releases key.
func (k *Keypad) Release(key byte) { k.held[key&0xf] = 0 }

// Tap holds key for the given number of frames, for input devices that
// report presses but not releases. Tapping again extends the hold.
func (k *Keypad) Tap(key byte, frames int) {
	if h := &k.held[key&0xf]; *h != holdKey && *h < frames {
		*h = frames
	}
}

// next returns the key state for the next frame and counts down taps.
func (k *Keypad) next() (s [chip8.NumKeys]byte) {
	for i, h := range k.held {
		if h == 0 {
			continue
		}
		s[i] = 1
		if h > 0 {
			k.held[i]--
		}
	}
	return s
}

// The keypad layout
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
//
// is mapped onto the left hand side of a QWERTY keyboard.
var qwertyKeys = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyForRune returns the keypad key mapped to the keyboard key r.
func KeyForRune(r rune) (key byte, ok bool) {
	if 'A' <= r && r <= 'Z' {
		r += 'a' - 'A'
	}
	key, ok = qwertyKeys[r]
	return
}
