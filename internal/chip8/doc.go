// Package chip8 implements the CHIP-8 interpreter: memory, registers, call stack,
// the 64x32 display buffer, timers and the input latch, and the fetch/decode/execute
// step that mutates them.
//
// The package does no I/O of its own besides reading ROM files. Frontends feed the
// input latch, tick the timers at 60 Hz, call Step and read the display and sound
// state back out.
package chip8
