package chip8

import "fmt"

// Quirks toggles behaviors that differ between CHIP-8 interpreters. The zero value
// is the modern behavior.
type Quirks struct {
	VFReset             bool // 8XY1, 8XY2 and 8XY3 clear VF
	ShiftVY             bool // 8XY6 and 8XYE shift VY into VX
	LoadStoreIncrementI bool // FX55 and FX65 leave I past the last register
}

// QuirksVIP matches the COSMAC VIP interpreter.
var QuirksVIP = Quirks{
	VFReset:             true,
	ShiftVY:             true,
	LoadStoreIncrementI: true,
}

func ParseQuirks(name string) (Quirks, error) {
	switch name {
	case "", "modern":
		return Quirks{}, nil
	case "vip":
		return QuirksVIP, nil
	default:
		return Quirks{}, fmt.Errorf("unsupported quirks preset: %s. Valid options: modern, vip", name)
	}
}
