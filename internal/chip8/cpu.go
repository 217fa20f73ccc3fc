package chip8

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// RandomSource feeds the CXNN instruction. *rand.Rand satisfies it.
type RandomSource interface {
	Uint32() uint32
}

// Cpu owns the complete machine state. It is not safe for concurrent use.
type Cpu struct {
	PC         uint16
	I          uint16
	regs       [RegisterCount]uint8
	stack      Stack
	delayTimer uint8
	soundTimer uint8
	key        uint8

	display Display
	memory  Memory
	rom     []byte

	quirks Quirks
	rng    RandomSource
	logger *log.Logger
	trace  bool

	halted bool
	fault  error
}

type Option func(*Cpu)

func WithLogger(logger *log.Logger) Option {
	return func(c *Cpu) {
		c.logger = logger
	}
}

func WithRandom(rng RandomSource) Option {
	return func(c *Cpu) {
		c.rng = rng
	}
}

func WithQuirks(quirks Quirks) Option {
	return func(c *Cpu) {
		c.quirks = quirks
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(c *Cpu) {
		c.trace = enabled
	}
}

// New returns a powered-on machine with the font installed and the program
// counter at ProgramStart.
func New(opts ...Option) *Cpu {
	c := &Cpu{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithConfig(log.DefaultConfig())
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	c.powerOn()
	return c
}

func (c *Cpu) powerOn() {
	c.memory.clear()
	c.memory.CreateFont()
	c.display.ClearScreen()
	c.regs = [RegisterCount]uint8{}
	c.stack = Stack{}
	c.PC = ProgramStart
	c.I = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.key = KeyNone
	c.halted = false
	c.fault = nil
}

// LoadROM copies rom into memory at ProgramStart. The image is kept so Reset can
// reload it.
func (c *Cpu) LoadROM(rom []byte) error {
	if err := validateROM(rom); err != nil {
		return err
	}
	copy(c.memory.data[ProgramStart:], rom)
	c.rom = slices.Clone(rom)
	return nil
}

// Reset returns the machine to its power-on state and reloads the last ROM.
func (c *Cpu) Reset() {
	c.powerOn()
	if c.rom != nil {
		copy(c.memory.data[ProgramStart:], c.rom)
	}
}

func (c *Cpu) String() string {
	return fmt.Sprintf("CPU STATE:\nPC: 0x%X\nI: 0x%X\nStack: %v\nDelay Timer: %d\nSound Timer: %d\nRegisters: %v\n",
		c.PC, c.I, c.stack.String(), c.delayTimer, c.soundTimer, c.regs)
}

func (c *Cpu) ReadMemoryByte(addr uint16) (byte, error) {
	return c.memory.ReadMemoryByte(addr)
}

func (c *Cpu) WriteMemoryByte(addr uint16, b byte) error {
	return c.memory.WriteMemoryByte(addr, b)
}

func (c *Cpu) V(x int) uint8 {
	return c.regs[x]
}

func (c *Cpu) SetV(x int, value uint8) {
	c.regs[x] = value
}

// SP returns the call stack depth.
func (c *Cpu) SP() int {
	return c.stack.Len()
}

func (c *Cpu) Display() *Display {
	return &c.display
}

func (c *Cpu) DelayTimer() uint8 {
	return c.delayTimer
}

func (c *Cpu) SoundTimer() uint8 {
	return c.soundTimer
}

// SoundActive reports whether the buzzer should sound.
func (c *Cpu) SoundActive() bool {
	return c.soundTimer > 0
}

// TickTimers decrements both timers if nonzero. Call it at 60 Hz.
func (c *Cpu) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// SetKey latches the currently held key. Values outside 0x0-0xF release it.
func (c *Cpu) SetKey(key uint8) {
	if key >= KeyCount {
		key = KeyNone
	}
	c.key = key
}

func (c *Cpu) ReleaseKey() {
	c.key = KeyNone
}

func (c *Cpu) Key() uint8 {
	return c.key
}

// Halted reports whether the machine stopped, either because the program counter
// ran off the end of memory or because of a fault.
func (c *Cpu) Halted() bool {
	return c.halted
}

// Fault returns the error that halted the machine, nil for a normal halt.
func (c *Cpu) Fault() error {
	return c.fault
}

func (c *Cpu) Fetch() uint16 {
	return uint16(c.memory.data[c.PC])<<8 | uint16(c.memory.data[c.PC+1])
}

// Step executes one instruction. Running off the end of memory halts the machine
// without an error; stack and memory faults halt it and are returned.
func (c *Cpu) Step() error {
	if c.halted {
		return nil
	}
	if int(c.PC) >= MemorySize-1 {
		c.halted = true
		c.logger.Debug("Program counter reached end of memory", log.Hex("pc", c.PC))
		return nil
	}

	opcode := c.Fetch()
	op := Decode(opcode)
	if c.trace {
		c.logger.Debug("exec",
			log.Hex("pc", c.PC),
			log.Hex("opcode", opcode),
			log.String("instr", Mnemonic(opcode)))
	}

	advance, err := c.Execute(op)
	if err != nil {
		c.halted = true
		c.fault = fmt.Errorf("executing 0x%04X at 0x%04X: %w", opcode, c.PC, err)
		c.logger.Debug("Machine halted", log.Err(c.fault))
		return c.fault
	}
	if advance {
		c.PC += 2
	}
	return nil
}

func (c *Cpu) skipIf(cond bool) bool {
	if cond {
		c.PC += 4
		return false
	}
	return true
}

// Execute applies one decoded operation. It returns false when the operation
// placed the program counter itself and the default advance must not happen.
func (c *Cpu) Execute(op Operation) (bool, error) {
	switch op.opcode {
	case OP_NONE:
		c.logger.Warn("Unknown opcode",
			log.Hex("pc", c.PC),
			log.Hex("opcode", op.opcodeHex))
	case OP_SYS:
		c.logger.Warn("Machine code call ignored",
			log.Hex("pc", c.PC),
			log.Hex("address", op.nnn))
	case OP_CLEAR:
		c.display.ClearScreen()
	case OP_RET:
		addr, err := c.stack.Pop()
		if err != nil {
			return false, err
		}
		c.PC = addr
		return false, nil
	case OP_JMP:
		c.PC = op.nnn
		return false, nil
	case OP_SUBROUTINE:
		if err := c.stack.Push(c.PC + 2); err != nil {
			return false, err
		}
		c.PC = op.nnn
		return false, nil
	case OP_EQUAL:
		return c.skipIf(c.regs[op.x] == op.nn), nil
	case OP_NEQUAL:
		return c.skipIf(c.regs[op.x] != op.nn), nil
	case OP_REG_EQUAL:
		return c.skipIf(c.regs[op.x] == c.regs[op.y]), nil
	case OP_REG_NEQUAL:
		return c.skipIf(c.regs[op.x] != c.regs[op.y]), nil
	case OP_REG_SET:
		c.regs[op.x] = op.nn
	case OP_REG_ADD:
		c.regs[op.x] += op.nn
	case OP_REG_SET_REG:
		c.regs[op.x] = c.regs[op.y]
	case OP_OR:
		c.regs[op.x] |= c.regs[op.y]
		c.resetFlagQuirk()
	case OP_AND:
		c.regs[op.x] &= c.regs[op.y]
		c.resetFlagQuirk()
	case OP_XOR:
		c.regs[op.x] ^= c.regs[op.y]
		c.resetFlagQuirk()
	case OP_ADD_EQUAL:
		c.regs[flagRegister] = boolToFlag(uint16(c.regs[op.x])+uint16(c.regs[op.y]) > 0xFF)
		c.regs[op.x] += c.regs[op.y]
	case OP_SUB:
		c.regs[flagRegister] = boolToFlag(c.regs[op.x] >= c.regs[op.y])
		c.regs[op.x] -= c.regs[op.y]
	case OP_SUB_INV:
		c.regs[flagRegister] = boolToFlag(c.regs[op.y] >= c.regs[op.x])
		c.regs[op.x] = c.regs[op.y] - c.regs[op.x]
	case OP_RSHIFT:
		if c.quirks.ShiftVY {
			c.regs[op.x] = c.regs[op.y]
		}
		c.regs[flagRegister] = c.regs[op.x] & 0x1
		c.regs[op.x] >>= 1
	case OP_LSHIFT:
		if c.quirks.ShiftVY {
			c.regs[op.x] = c.regs[op.y]
		}
		c.regs[flagRegister] = c.regs[op.x] >> 7
		c.regs[op.x] <<= 1
	case OP_SET_IDX:
		c.I = op.nnn
	case OP_JMP_OFF:
		c.PC = op.nnn + uint16(c.regs[0])
		return false, nil
	case OP_RANDOM:
		c.regs[op.x] = uint8(c.rng.Uint32()) & op.nn
	case OP_DISPLAY:
		return true, c.drawSprite(op)
	case OP_KEY_PRESSED:
		return c.skipIf(c.key == c.regs[op.x]), nil
	case OP_KEY_NOT_PRESSED:
		return c.skipIf(c.key != c.regs[op.x]), nil
	case OP_GET_DTIMER:
		c.regs[op.x] = c.delayTimer
	case OP_GET_KEY:
		if c.key == KeyNone {
			return false, nil
		}
		c.regs[op.x] = c.key
	case OP_SET_DTIMER:
		c.delayTimer = c.regs[op.x]
	case OP_SET_STIMER:
		c.soundTimer = c.regs[op.x]
	case OP_ADD_IDX:
		c.I += uint16(c.regs[op.x])
	case OP_FONT:
		// glyph address, not base + Vx
		c.I = FontStart + FontGlyphSize*uint16(c.regs[op.x]&0xF)
	case OP_BCD:
		dst, err := c.memory.Slice(c.I, 3)
		if err != nil {
			return false, err
		}
		digits := DecimalDigits(c.regs[op.x])
		copy(dst, digits[:])
	case OP_STORE_MEM:
		dst, err := c.memory.Slice(c.I, int(op.x)+1)
		if err != nil {
			return false, err
		}
		copy(dst, c.regs[:op.x+1])
		c.incrementIndexQuirk(op.x)
	case OP_LOAD_MEM:
		src, err := c.memory.Slice(c.I, int(op.x)+1)
		if err != nil {
			return false, err
		}
		copy(c.regs[:op.x+1], src)
		c.incrementIndexQuirk(op.x)
	}
	return true, nil
}

func (c *Cpu) drawSprite(op Operation) error {
	x := c.regs[op.x]
	y := c.regs[op.y]
	var sprite []byte
	if rows := min(int(op.n), Height-int(y%Height)); rows > 0 {
		var err error
		if sprite, err = c.memory.Slice(c.I, rows); err != nil {
			return err
		}
	}
	c.regs[flagRegister] = 0
	if c.display.DrawSprite(x, y, sprite) {
		c.regs[flagRegister] = 1
	}
	return nil
}

func (c *Cpu) resetFlagQuirk() {
	if c.quirks.VFReset {
		c.regs[flagRegister] = 0
	}
}

func (c *Cpu) incrementIndexQuirk(x byte) {
	if c.quirks.LoadStoreIncrementI {
		c.I += uint16(x) + 1
	}
}

// DecimalDigits splits v into its hundreds, tens and ones digits.
func DecimalDigits(v uint8) [3]byte {
	return [3]byte{v / 100, (v / 10) % 10, v % 10}
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
