package chip8

// Memory map.
//
//	0x000-0x04F: unused interpreter area
//	0x050-0x09F: font glyphs, 16 x 5 bytes
//	0x200-0xFFF: program
const (
	MemorySize    = 0x1000
	FontStart     = 0x50
	FontGlyphSize = 5
	ProgramStart  = 0x200
	MaxROMSize    = MemorySize - ProgramStart
)

const (
	RegisterCount = 16
	StackDepth    = 16
	KeyCount      = 16

	// KeyNone is the input latch value when no key is held.
	KeyNone uint8 = 16

	flagRegister = 0xF
)

const (
	Width  = 64
	Height = 32
)

var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
