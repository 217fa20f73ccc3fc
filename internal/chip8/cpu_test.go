package chip8

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fixedRandom uint32

func (f fixedRandom) Uint32() uint32 {
	return uint32(f)
}

func newTestCpu(t *testing.T, program ...uint16) *Cpu {
	t.Helper()
	c := New(WithLogger(log.NewTestLogger(t)), WithRandom(rand.New(rand.NewPCG(1, 2))))
	if len(program) > 0 {
		rom := make([]byte, 0, len(program)*2)
		for _, word := range program {
			rom = append(rom, byte(word>>8), byte(word))
		}
		assert.NoError(t, c.LoadROM(rom))
	}
	return c
}

func stepN(t *testing.T, c *Cpu, n int) {
	t.Helper()
	for range n {
		assert.NoError(t, c.Step())
	}
}

func TestNew(t *testing.T) {
	c := newTestCpu(t)

	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, uint16(0), c.I)
	assert.Equal(t, 0, c.SP())
	assert.Equal(t, KeyNone, c.Key())
	assert.False(t, c.Halted())
	for i, b := range fontSet {
		got, err := c.ReadMemoryByte(uint16(FontStart + i))
		assert.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestLoadROM(t *testing.T) {
	c := newTestCpu(t)

	assert.True(t, errors.Is(c.LoadROM(nil), ErrROMEmpty))
	assert.True(t, errors.Is(c.LoadROM(make([]byte, MaxROMSize+1)), ErrROMTooLarge))

	rom := make([]byte, MaxROMSize)
	rom[0] = 0xAB
	rom[MaxROMSize-1] = 0xCD
	assert.NoError(t, c.LoadROM(rom))
	first, _ := c.ReadMemoryByte(ProgramStart)
	last, _ := c.ReadMemoryByte(MemorySize - 1)
	assert.Equal(t, byte(0xAB), first)
	assert.Equal(t, byte(0xCD), last)
}

func TestSelfLoop(t *testing.T) {
	c := newTestCpu(t, 0x6005, 0x1200)

	stepN(t, c, 2)
	assert.Equal(t, uint16(0x200), c.PC)
	assert.Equal(t, uint8(5), c.V(0))

	// 6005 again, then the jump back.
	stepN(t, c, 2)
	assert.Equal(t, uint16(0x200), c.PC)
	assert.Equal(t, uint8(5), c.V(0))
}

func TestGetKeyBlocks(t *testing.T) {
	c := newTestCpu(t, 0xF30A)

	for range 5 {
		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(0x200), c.PC)
	}

	c.SetKey(0xB)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0xB), c.V(3))
	assert.Equal(t, uint16(0x202), c.PC)
}

func TestSetKey(t *testing.T) {
	c := newTestCpu(t)

	c.SetKey(0xF)
	assert.Equal(t, uint8(0xF), c.Key())
	c.SetKey(0x10)
	assert.Equal(t, KeyNone, c.Key())
	c.SetKey(3)
	c.ReleaseKey()
	assert.Equal(t, KeyNone, c.Key())
}

func TestSkipInstructions(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx     uint8
		vy     uint8
		key    uint8
		wantPC uint16
	}{
		{"3XNN equal", 0x31FF, 0xFF, 0, KeyNone, 0x204},
		{"3XNN not equal", 0x3100, 0xFF, 0, KeyNone, 0x202},
		{"3XNN zero", 0x3100, 0x00, 0, KeyNone, 0x204},
		{"4XNN not equal", 0x4100, 0xFF, 0, KeyNone, 0x204},
		{"4XNN equal", 0x41FF, 0xFF, 0, KeyNone, 0x202},
		{"5XY0 equal", 0x5120, 0xFF, 0xFF, KeyNone, 0x204},
		{"5XY0 not equal", 0x5120, 0x00, 0xFF, KeyNone, 0x202},
		{"9XY0 not equal", 0x9120, 0x00, 0xFF, KeyNone, 0x204},
		{"9XY0 equal", 0x9120, 0x00, 0x00, KeyNone, 0x202},
		{"EX9E pressed", 0xE19E, 0x7, 0, 0x7, 0x204},
		{"EX9E other key", 0xE19E, 0x7, 0, 0x8, 0x202},
		{"EX9E no key", 0xE19E, 0x0, 0, KeyNone, 0x202},
		{"EXA1 not pressed", 0xE1A1, 0x0, 0, KeyNone, 0x204},
		{"EXA1 pressed", 0xE1A1, 0xF, 0, 0xF, 0x202},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCpu(t, tt.opcode)
			c.SetV(1, tt.vx)
			c.SetV(2, tt.vy)
			c.SetKey(tt.key)

			assert.NoError(t, c.Step())
			assert.Equal(t, tt.wantPC, c.PC)
		})
	}
}

func TestAddImmediate(t *testing.T) {
	c := newTestCpu(t, 0x7105)
	c.SetV(1, 0xFE)
	c.SetV(0xF, 0x42)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0x03), c.V(1))
	assert.Equal(t, uint8(0x42), c.V(0xF))
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		vx       uint8
		vy       uint8
		wantVX   uint8
		wantFlag uint8
	}{
		{"8XY0 copy", 0x8120, 0x01, 0x99, 0x99, 0x00},
		{"8XY1 or", 0x8121, 0xF0, 0x0F, 0xFF, 0x00},
		{"8XY2 and", 0x8122, 0xF3, 0x3F, 0x33, 0x00},
		{"8XY3 xor", 0x8123, 0xFF, 0x0F, 0xF0, 0x00},
		{"8XY4 no carry", 0x8124, 0x10, 0x20, 0x30, 0},
		{"8XY4 exactly 255", 0x8124, 0xFF, 0x00, 0xFF, 0},
		{"8XY4 exactly 256", 0x8124, 0xFF, 0x01, 0x00, 1},
		{"8XY4 carry", 0x8124, 0xFF, 0xFF, 0xFE, 1},
		{"8XY5 no borrow", 0x8125, 0x30, 0x10, 0x20, 1},
		{"8XY5 equal", 0x8125, 0x10, 0x10, 0x00, 1},
		{"8XY5 borrow", 0x8125, 0x00, 0x01, 0xFF, 0},
		{"8XY6 low bit set", 0x8126, 0x03, 0x00, 0x01, 1},
		{"8XY6 low bit clear", 0x8126, 0x80, 0xFF, 0x40, 0},
		{"8XY7 no borrow", 0x8127, 0x10, 0x30, 0x20, 1},
		{"8XY7 equal", 0x8127, 0x10, 0x10, 0x00, 1},
		{"8XY7 borrow", 0x8127, 0x01, 0x00, 0xFF, 0},
		{"8XYE high bit set", 0x812E, 0x81, 0x00, 0x02, 1},
		{"8XYE high bit clear", 0x812E, 0x7F, 0xFF, 0xFE, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCpu(t, tt.opcode)
			c.SetV(1, tt.vx)
			c.SetV(2, tt.vy)

			assert.NoError(t, c.Step())
			assert.Equal(t, tt.wantVX, c.V(1))
			assert.Equal(t, tt.wantFlag, c.V(0xF))
			assert.Equal(t, uint16(0x202), c.PC)
		})
	}
}

func TestCarryMatchesSum(t *testing.T) {
	for _, vx := range []uint8{0, 1, 127, 128, 200, 255} {
		for _, vy := range []uint8{0, 1, 55, 56, 128, 255} {
			c := newTestCpu(t, 0x8124, 0x8345)
			c.SetV(1, vx)
			c.SetV(2, vy)
			c.SetV(3, vx)
			c.SetV(4, vy)

			assert.NoError(t, c.Step())
			sum := int(vx) + int(vy)
			assert.Equal(t, uint8(sum%256), c.V(1))
			assert.Equal(t, boolToFlag(sum >= 256), c.V(0xF))

			assert.NoError(t, c.Step())
			assert.Equal(t, vx-vy, c.V(3))
			assert.Equal(t, boolToFlag(vx >= vy), c.V(0xF))
		}
	}
}

func TestQuirksVIP(t *testing.T) {
	c := New(WithLogger(log.NewTestLogger(t)), WithQuirks(QuirksVIP))
	assert.NoError(t, c.LoadROM([]byte{0x81, 0x21, 0x83, 0x46, 0xF1, 0x55}))
	c.SetV(1, 0xF0)
	c.SetV(2, 0x0F)
	c.SetV(4, 0x05)
	c.SetV(0xF, 0x55)
	c.I = 0x300

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0xFF), c.V(1))
	assert.Equal(t, uint8(0), c.V(0xF))

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0x02), c.V(3))
	assert.Equal(t, uint8(1), c.V(0xF))

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x302), c.I)
}

func TestParseQuirks(t *testing.T) {
	q, err := ParseQuirks("vip")
	assert.NoError(t, err)
	assert.Equal(t, QuirksVIP, q)

	q, err = ParseQuirks("")
	assert.NoError(t, err)
	assert.Equal(t, Quirks{}, q)

	_, err = ParseQuirks("schip")
	assert.Error(t, err)
}

func TestCallReturn(t *testing.T) {
	c := newTestCpu(t, 0x2204, 0x0000, 0x00EE)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x204), c.PC)
	assert.Equal(t, 1, c.SP())

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x202), c.PC)
	assert.Equal(t, 0, c.SP())
}

func TestStackOverflowHalts(t *testing.T) {
	// 0x200: 2200, calls itself forever.
	c := newTestCpu(t, 0x2200)

	stepN(t, c, StackDepth)
	assert.Equal(t, StackDepth, c.SP())

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.True(t, c.Halted())
	assert.True(t, errors.Is(c.Fault(), ErrStackOverflow))

	// Halted machines ignore further steps.
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x200), c.PC)
}

func TestStackUnderflowHalts(t *testing.T) {
	c := newTestCpu(t, 0x00EE)

	err := c.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.True(t, c.Halted())
}

func TestJumps(t *testing.T) {
	c := newTestCpu(t, 0x1ABC)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xABC), c.PC)

	c = newTestCpu(t, 0xB300)
	c.SetV(0, 0x10)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x310), c.PC)
}

func TestUnknownOpcodesAdvance(t *testing.T) {
	for _, opcode := range []uint16{0x0123, 0x5121, 0x8128, 0x912F, 0xE1FF, 0xF1FF} {
		c := newTestCpu(t, opcode)
		regs := c.regs

		assert.NoError(t, c.Step())
		assert.Equal(t, uint16(0x202), c.PC)
		assert.Equal(t, regs, c.regs)
		assert.False(t, c.Halted())
	}
}

func TestRandomIsMasked(t *testing.T) {
	c := New(WithLogger(log.NewTestLogger(t)), WithRandom(fixedRandom(0x12345678)))
	assert.NoError(t, c.LoadROM([]byte{0xC1, 0x0F, 0xC2, 0xFF, 0xC3, 0x00}))

	stepN(t, c, 3)
	assert.Equal(t, uint8(0x08), c.V(1))
	assert.Equal(t, uint8(0x78), c.V(2))
	assert.Equal(t, uint8(0x00), c.V(3))
}

func TestIndexOperations(t *testing.T) {
	c := newTestCpu(t, 0xA123, 0xF11E, 0xF229)
	c.SetV(1, 0xFF)
	c.SetV(2, 0xA)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x123), c.I)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x222), c.I)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(FontStart+0xA*FontGlyphSize), c.I)

	glyph, err := c.memory.Slice(c.I, FontGlyphSize)
	assert.NoError(t, err)
	assert.Equal(t, [5]byte{0xF0, 0x90, 0xF0, 0x90, 0x90}, [5]byte(glyph))
}

func TestTimerInstructions(t *testing.T) {
	c := newTestCpu(t, 0xF115, 0xF218, 0xF307)
	c.SetV(1, 3)
	c.SetV(2, 1)

	stepN(t, c, 2)
	assert.Equal(t, uint8(3), c.DelayTimer())
	assert.True(t, c.SoundActive())

	c.TickTimers()
	assert.Equal(t, uint8(2), c.DelayTimer())
	assert.False(t, c.SoundActive())

	c.TickTimers()
	c.TickTimers()
	c.TickTimers()
	assert.Equal(t, uint8(0), c.DelayTimer())
	assert.Equal(t, uint8(0), c.SoundTimer())

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0), c.V(3))
}

func TestDecimalDigits(t *testing.T) {
	for v := range 256 {
		d := DecimalDigits(uint8(v))
		assert.Equal(t, v, int(d[0])*100+int(d[1])*10+int(d[2]))
		for _, digit := range d {
			assert.True(t, digit <= 9)
		}
	}
}

func TestBCDInstruction(t *testing.T) {
	c := newTestCpu(t, 0xF533)
	c.SetV(5, 254)
	c.I = 0x400

	assert.NoError(t, c.Step())
	got, err := c.memory.Slice(0x400, 3)
	assert.NoError(t, err)
	assert.Equal(t, [3]byte{2, 5, 4}, [3]byte(got))
}

func TestStoreLoadRegisters(t *testing.T) {
	c := newTestCpu(t, 0xF355, 0x6000, 0x6100, 0x6200, 0x6300, 0x6400, 0xF365)
	for i := range 5 {
		c.SetV(i, uint8(0x10+i))
	}
	c.I = 0x500

	assert.NoError(t, c.Step())
	stored, _ := c.memory.Slice(0x500, 5)
	assert.Equal(t, [5]byte{0x10, 0x11, 0x12, 0x13, 0x00}, [5]byte(stored))
	assert.Equal(t, uint16(0x500), c.I)

	stepN(t, c, 6)
	assert.Equal(t, uint8(0x10), c.V(0))
	assert.Equal(t, uint8(0x13), c.V(3))
	assert.Equal(t, uint8(0x00), c.V(4))
}

func TestMemoryFaultHalts(t *testing.T) {
	c := newTestCpu(t, 0xF255)
	c.I = MemorySize - 2

	err := c.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	assert.True(t, c.Halted())
}

func TestEndOfMemoryHalts(t *testing.T) {
	c := newTestCpu(t)
	c.PC = MemorySize - 1

	assert.NoError(t, c.Step())
	assert.True(t, c.Halted())
	assert.Nil(t, c.Fault())
	assert.Equal(t, uint16(MemorySize-1), c.PC)
}

func TestLastInstructionRuns(t *testing.T) {
	c := newTestCpu(t)
	assert.NoError(t, c.WriteMemoryByte(MemorySize-2, 0x61))
	assert.NoError(t, c.WriteMemoryByte(MemorySize-1, 0x07))
	c.PC = MemorySize - 2

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(7), c.V(1))
	assert.False(t, c.Halted())

	assert.NoError(t, c.Step())
	assert.True(t, c.Halted())
}

func TestDrawInstruction(t *testing.T) {
	// I points at the glyph for 0; draw it twice at (V1, V2).
	c := newTestCpu(t, 0xA050, 0xD125, 0xD125)
	c.SetV(1, 2)
	c.SetV(2, 3)

	stepN(t, c, 2)
	assert.Equal(t, uint8(0), c.V(0xF))
	assert.Equal(t, uint64(0xF0)<<54, c.Display().Row(3))
	assert.Equal(t, uint64(0x90)<<54, c.Display().Row(4))

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(1), c.V(0xF))
	for y := range Height {
		assert.Equal(t, uint64(0), c.Display().Row(y))
	}
}

func TestDrawInstructionClipsBottom(t *testing.T) {
	c := newTestCpu(t, 0xA050, 0xD125)
	c.SetV(2, Height-2)
	c.I = MemorySize - 2

	// Only two rows are drawn, so only two bytes are read.
	assert.NoError(t, c.WriteMemoryByte(MemorySize-2, 0xFF))
	assert.NoError(t, c.WriteMemoryByte(MemorySize-1, 0x81))
	c.PC = 0x202

	assert.NoError(t, c.Step())
	assert.Equal(t, uint64(0xFF)<<56, c.Display().Row(Height-2))
	assert.Equal(t, uint64(0x81)<<56, c.Display().Row(Height-1))
}

func TestClearInstruction(t *testing.T) {
	c := newTestCpu(t, 0xA050, 0xD005, 0x00E0)

	stepN(t, c, 3)
	for y := range Height {
		for x := range Width {
			assert.False(t, c.Display().Pixel(x, y))
		}
	}
}

func TestReset(t *testing.T) {
	c := newTestCpu(t, 0x6042, 0xA050, 0xD005, 0x2200)
	c.SetKey(4)
	stepN(t, c, 4)
	c.TickTimers()

	c.Reset()
	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, uint8(0), c.V(0))
	assert.Equal(t, 0, c.SP())
	assert.Equal(t, KeyNone, c.Key())
	assert.Equal(t, uint64(0), c.Display().Row(0))

	// ROM is still in place.
	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(0x42), c.V(0))
}

func TestTrace(t *testing.T) {
	c := New(WithLogger(log.NewTestLogger(t)), WithTrace(true))
	assert.NoError(t, c.LoadROM([]byte{0x60, 0x01}))

	assert.NoError(t, c.Step())
	assert.Equal(t, uint8(1), c.V(0))
}
