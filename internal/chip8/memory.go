package chip8

import "fmt"

// Memory is the flat 4 KiB address space shared by the font table and the program.
type Memory struct {
	data [MemorySize]byte
}

// CreateFont installs the 16 hex digit glyphs at FontStart.
func (m *Memory) CreateFont() {
	copy(m.data[FontStart:], fontSet[:])
}

func (m *Memory) ReadMemoryByte(addr uint16) (byte, error) {
	if int(addr) >= MemorySize {
		return 0, fmt.Errorf("reading 0x%04X: %w", addr, ErrAddressOutOfRange)
	}
	return m.data[addr], nil
}

func (m *Memory) WriteMemoryByte(addr uint16, b byte) error {
	if int(addr) >= MemorySize {
		return fmt.Errorf("writing 0x%04X: %w", addr, ErrAddressOutOfRange)
	}
	m.data[addr] = b
	return nil
}

// Slice returns length bytes starting at addr. The slice aliases memory.
func (m *Memory) Slice(addr uint16, length int) ([]byte, error) {
	end := int(addr) + length
	if end > MemorySize {
		return nil, fmt.Errorf("reading 0x%04X-0x%04X: %w", addr, end-1, ErrAddressOutOfRange)
	}
	return m.data[addr:end], nil
}

func (m *Memory) clear() {
	m.data = [MemorySize]byte{}
}
