package chip8

import "errors"

var (
	ErrROMEmpty          = errors.New("rom is empty")
	ErrROMTooLarge       = errors.New("rom does not fit into memory")
	ErrStackOverflow     = errors.New("call stack overflow")
	ErrStackUnderflow    = errors.New("call stack underflow")
	ErrAddressOutOfRange = errors.New("memory address out of range")
)
