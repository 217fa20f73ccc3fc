package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"

	"meszarosd.hu/chip8vm/internal/chip8"
	"meszarosd.hu/chip8vm/internal/machine"
)

// Terminals report no key releases, so a key counts as held for this many frames
// after its last byte arrived.
const terminalKeyHoldFrames = 6

const (
	keyEscape = 0x1b
	keyCtrlC  = 0x03
	bell      = "\a"
)

// keyLatch holds the last terminal key for a few frames.
type keyLatch struct {
	key       uint8
	remaining int
}

func (l *keyLatch) press(key uint8) {
	l.key = key
	l.remaining = terminalKeyHoldFrames
}

// frame returns the key held during the next frame.
func (l *keyLatch) frame() uint8 {
	if l.remaining == 0 {
		return chip8.KeyNone
	}
	l.remaining--
	return l.key
}

// renderHalfBlocks draws two pixel rows per text line using the upper and lower
// half block characters.
func renderHalfBlocks(d *chip8.Display) string {
	var sb strings.Builder
	for y := 0; y < chip8.Height; y += 2 {
		for x := range chip8.Width {
			top := d.Pixel(x, y)
			bottom := d.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

type terminalFrontend struct {
	machine *machine.Machine
	cpu     *chip8.Cpu
	logger  *log.Logger
	out     io.Writer
	input   <-chan byte

	latch     keyLatch
	prevSound bool
	quit      bool
}

func newTerminalFrontend(m *machine.Machine, input <-chan byte, out io.Writer, logger *log.Logger) *terminalFrontend {
	return &terminalFrontend{
		machine: m,
		cpu:     m.Cpu(),
		logger:  logger,
		out:     out,
		input:   input,
	}
}

// drainInput consumes all pending bytes without blocking.
func (f *terminalFrontend) drainInput() {
	for {
		select {
		case b, ok := <-f.input:
			if !ok {
				return
			}
			f.handleByte(b)
		default:
			return
		}
	}
}

func (f *terminalFrontend) handleByte(b byte) {
	switch b {
	case keyEscape, keyCtrlC:
		f.quit = true
		return
	}
	if key, ok := terminalKey(b); ok {
		f.latch.press(key)
	}
}

// frame runs one machine frame and renders the result.
func (f *terminalFrontend) frame() error {
	f.drainInput()
	f.cpu.SetKey(f.latch.frame())

	err := f.machine.Frame()

	sound := f.cpu.SoundActive()
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	if sound && !f.prevSound {
		sb.WriteString(bell)
	}
	f.prevSound = sound
	sb.WriteString(renderHalfBlocks(f.cpu.Display()))
	if _, werr := io.WriteString(f.out, sb.String()); werr != nil {
		return fmt.Errorf("writing frame: %w", werr)
	}
	return err
}

func (f *terminalFrontend) run(ctx context.Context, ticks <-chan time.Time, limit int) error {
	for ran := 0; limit == 0 || ran < limit; ran++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
		}

		if err := f.frame(); err != nil {
			return err
		}
		if f.quit {
			f.logger.Debug("Quit requested", log.Int("frames", int(f.machine.Frames())))
			return nil
		}
		if f.cpu.Halted() {
			return nil
		}
	}
	return nil
}

// readInput forwards stdin bytes to a channel until reading fails.
func readInput(r io.Reader) <-chan byte {
	ch := make(chan byte, 64)
	go func() {
		defer close(ch)
		buf := make([]byte, 16)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				ch <- b
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// runTerminal renders the machine into the controlling terminal until the program
// ends, Escape or Ctrl-C is pressed or ctx is cancelled.
func runTerminal(ctx context.Context, m *machine.Machine, frames int, logger *log.Logger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("terminal frontend: stdin is not a terminal")
	}
	if w, h, err := term.GetSize(fd); err == nil && (w < chip8.Width || h < chip8.Height/2) {
		logger.Warn("Terminal too small for the display",
			log.Int("width", w), log.Int("height", h))
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	fmt.Fprint(os.Stdout, "\x1b[2J\x1b[?25l")
	defer fmt.Fprint(os.Stdout, "\x1b[?25h\r\n")

	ticker := time.NewTicker(machine.FrameDuration)
	defer ticker.Stop()

	f := newTerminalFrontend(m, readInput(os.Stdin), os.Stdout, logger)
	return f.run(ctx, ticker.C, frames)
}
