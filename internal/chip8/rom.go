package chip8

import (
	"fmt"
	"os"
)

// ReadROM reads a headerless ROM image from disk.
func ReadROM(path string) ([]byte, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom %s: %w", path, err)
	}
	if err := validateROM(rom); err != nil {
		return nil, fmt.Errorf("loading rom %s: %w", path, err)
	}
	return rom, nil
}

func validateROM(rom []byte) error {
	switch {
	case len(rom) == 0:
		return ErrROMEmpty
	case len(rom) > MaxROMSize:
		return fmt.Errorf("%d bytes, at most %d allowed: %w", len(rom), MaxROMSize, ErrROMTooLarge)
	}
	return nil
}
