package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Operation is a decoded instruction word.
type Operation struct {
	opcodeHex uint16
	opcode    OPCODE
	x         byte
	y         byte
	n         byte
	nn        uint8
	nnn       uint16
}

type OPCODE int

const (
	OP_NONE            OPCODE = iota //unknown or unsupported
	OP_SYS                           //0NNN
	OP_CLEAR                         //00E0
	OP_RET                           //00EE
	OP_JMP                           //1NNN
	OP_SUBROUTINE                    //2NNN
	OP_EQUAL                         //3XNN
	OP_NEQUAL                        //4XNN
	OP_REG_EQUAL                     //5XY0
	OP_REG_SET                       //6XNN
	OP_REG_ADD                       //7XNN
	OP_REG_SET_REG                   //8XY0
	OP_OR                            //8XY1
	OP_AND                           //8XY2
	OP_XOR                           //8XY3
	OP_ADD_EQUAL                     //8XY4
	OP_SUB                           //8XY5
	OP_RSHIFT                        //8XY6
	OP_SUB_INV                       //8XY7
	OP_LSHIFT                        //8XYE
	OP_REG_NEQUAL                    //9XY0
	OP_SET_IDX                       //ANNN
	OP_JMP_OFF                       //BNNN
	OP_RANDOM                        //CXNN
	OP_DISPLAY                       //DXYN
	OP_KEY_PRESSED                   //EX9E
	OP_KEY_NOT_PRESSED               //EXA1
	OP_GET_DTIMER                    //FX07
	OP_GET_KEY                       //FX0A
	OP_SET_DTIMER                    //FX15
	OP_SET_STIMER                    //FX18
	OP_ADD_IDX                       //FX1E
	OP_FONT                          //FX29
	OP_BCD                           //FX33
	OP_STORE_MEM                     //FX55
	OP_LOAD_MEM                      //FX65
)

var opcodeNames = [...]string{
	OP_NONE:            "NONE",
	OP_SYS:             "SYS",
	OP_CLEAR:           "CLEAR",
	OP_RET:             "RET",
	OP_JMP:             "JMP",
	OP_SUBROUTINE:      "SUBROUTINE",
	OP_EQUAL:           "EQUAL",
	OP_NEQUAL:          "NEQUAL",
	OP_REG_EQUAL:       "REG_EQUAL",
	OP_REG_SET:         "REG_SET",
	OP_REG_ADD:         "REG_ADD",
	OP_REG_SET_REG:     "REG_SET_REG",
	OP_OR:              "OR",
	OP_AND:             "AND",
	OP_XOR:             "XOR",
	OP_ADD_EQUAL:       "ADD_EQUAL",
	OP_SUB:             "SUB",
	OP_RSHIFT:          "RSHIFT",
	OP_SUB_INV:         "SUB_INV",
	OP_LSHIFT:          "LSHIFT",
	OP_REG_NEQUAL:      "REG_NEQUAL",
	OP_SET_IDX:         "SET_IDX",
	OP_JMP_OFF:         "JMP_OFF",
	OP_RANDOM:          "RANDOM",
	OP_DISPLAY:         "DISPLAY",
	OP_KEY_PRESSED:     "KEY_PRESSED",
	OP_KEY_NOT_PRESSED: "KEY_NOT_PRESSED",
	OP_GET_DTIMER:      "GET_DTIMER",
	OP_GET_KEY:         "GET_KEY",
	OP_SET_DTIMER:      "SET_DTIMER",
	OP_SET_STIMER:      "SET_STIMER",
	OP_ADD_IDX:         "ADD_IDX",
	OP_FONT:            "FONT",
	OP_BCD:             "BCD",
	OP_STORE_MEM:       "STORE_MEM",
	OP_LOAD_MEM:        "LOAD_MEM",
}

func (o OPCODE) String() string {
	if o < 0 || int(o) >= len(opcodeNames) {
		return fmt.Sprintf("OPCODE(%d)", int(o))
	}
	return opcodeNames[o]
}

var (
	familyOp = [16]OPCODE{
		0x1: OP_JMP,
		0x2: OP_SUBROUTINE,
		0x3: OP_EQUAL,
		0x4: OP_NEQUAL,
		0x6: OP_REG_SET,
		0x7: OP_REG_ADD,
		0xA: OP_SET_IDX,
		0xB: OP_JMP_OFF,
		0xC: OP_RANDOM,
		0xD: OP_DISPLAY,
	}
	aluOp = [16]OPCODE{
		0x0: OP_REG_SET_REG,
		0x1: OP_OR,
		0x2: OP_AND,
		0x3: OP_XOR,
		0x4: OP_ADD_EQUAL,
		0x5: OP_SUB,
		0x6: OP_RSHIFT,
		0x7: OP_SUB_INV,
		0xE: OP_LSHIFT,
	}
	keyOp = map[uint8]OPCODE{
		0x9E: OP_KEY_PRESSED,
		0xA1: OP_KEY_NOT_PRESSED,
	}
	miscOp = map[uint8]OPCODE{
		0x07: OP_GET_DTIMER,
		0x0A: OP_GET_KEY,
		0x15: OP_SET_DTIMER,
		0x18: OP_SET_STIMER,
		0x1E: OP_ADD_IDX,
		0x29: OP_FONT,
		0x33: OP_BCD,
		0x55: OP_STORE_MEM,
		0x65: OP_LOAD_MEM,
	}
)

// Decode splits an instruction word into its fields and resolves the operation.
// Words that match no known instruction decode to OP_NONE.
func Decode(opcode uint16) Operation {
	op := Operation{
		opcodeHex: opcode,
		x:         byte((opcode & 0x0F00) >> 8),
		y:         byte((opcode & 0x00F0) >> 4),
		n:         byte(opcode & 0x000F),
		nn:        uint8(opcode & 0x00FF),
		nnn:       opcode & 0x0FFF,
	}

	switch family := opcode >> 12; family {
	case 0x0:
		switch opcode {
		case 0x00E0:
			op.opcode = OP_CLEAR
		case 0x00EE:
			op.opcode = OP_RET
		default:
			op.opcode = OP_SYS
		}
	case 0x5:
		if op.n == 0 {
			op.opcode = OP_REG_EQUAL
		}
	case 0x8:
		op.opcode = aluOp[op.n]
	case 0x9:
		if op.n == 0 {
			op.opcode = OP_REG_NEQUAL
		}
	case 0xE:
		op.opcode = keyOp[op.nn]
	case 0xF:
		op.opcode = miscOp[op.nn]
	default:
		op.opcode = familyOp[family]
	}
	return op
}

// Opcode returns the raw instruction word.
func (op Operation) Opcode() uint16 {
	return op.opcodeHex
}

func (op Operation) Kind() OPCODE {
	return op.opcode
}

func (op Operation) String() string {
	return fmt.Sprintf("0x%04X %s (%s) x: 0x%X, y: 0x%X, n: 0x%X, nn: 0x%02X, nnn: 0x%03X",
		op.opcodeHex, op.opcode, Mnemonic(op.opcodeHex), op.x, op.y, op.n, op.nn, op.nnn)
}

// Mnemonic returns the assembler name of an instruction word, or "???" when the
// word is not a CHIP-8 instruction.
func Mnemonic(opcode uint16) string {
	for _, op := range chip8cpu.Opcodes[int(opcode>>12)] {
		if op.Instruction != nil && op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return "???"
}
