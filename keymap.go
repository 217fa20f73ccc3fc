package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"meszarosd.hu/chip8vm/internal/chip8"
)

// keypadLayout maps the 4x4 block 1234/QWER/ASDF/ZXCV onto the hex keypad
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
var keypadLayout = [chip8.KeyCount]uint8{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

var ebitenKeys = [chip8.KeyCount]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

const terminalKeys = "1234qwerasdfzxcv"

// pressedKey returns the keypad value of the first held key in layout order, or
// chip8.KeyNone.
func pressedKey(isPressed func(ebiten.Key) bool) uint8 {
	for i, k := range ebitenKeys {
		if isPressed(k) {
			return keypadLayout[i]
		}
	}
	return chip8.KeyNone
}

// terminalKey translates a byte read from a raw terminal.
func terminalKey(b byte) (uint8, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	for i := range len(terminalKeys) {
		if terminalKeys[i] == b {
			return keypadLayout[i], true
		}
	}
	return chip8.KeyNone, false
}
