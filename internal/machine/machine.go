// Package machine drives a chip8.Cpu at frame granularity: one 60 Hz timer tick
// followed by a fixed number of instruction steps.
package machine

import (
	"context"
	"time"

	"github.com/retroenv/retrogolib/log"

	"meszarosd.hu/chip8vm/internal/chip8"
)

const (
	FrameRate             = 60
	FrameDuration         = time.Second / FrameRate
	DefaultCyclesPerFrame = 10
)

// Machine is not safe for concurrent use; frontends call it from one goroutine.
type Machine struct {
	cpu            *chip8.Cpu
	logger         *log.Logger
	cyclesPerFrame int
	paused         bool
	frames         uint64
}

func New(cpu *chip8.Cpu, cyclesPerFrame int, logger *log.Logger) *Machine {
	if cyclesPerFrame <= 0 {
		cyclesPerFrame = DefaultCyclesPerFrame
	}
	return &Machine{
		cpu:            cpu,
		logger:         logger,
		cyclesPerFrame: cyclesPerFrame,
	}
}

func (m *Machine) Cpu() *chip8.Cpu {
	return m.cpu
}

// Frame ticks the timers once and executes up to cyclesPerFrame instructions.
// It does nothing while paused or after the machine halted.
func (m *Machine) Frame() error {
	if m.paused {
		return nil
	}
	return m.runFrame()
}

// StepFrame runs a single frame while paused.
func (m *Machine) StepFrame() error {
	return m.runFrame()
}

func (m *Machine) runFrame() error {
	if m.cpu.Halted() {
		return nil
	}
	m.frames++
	m.cpu.TickTimers()
	for range m.cyclesPerFrame {
		if err := m.cpu.Step(); err != nil {
			return err
		}
		if m.cpu.Halted() {
			m.logger.Info("Program finished", log.Int("frames", int(m.frames)))
			return nil
		}
	}
	return nil
}

func (m *Machine) Pause() {
	m.paused = true
}

func (m *Machine) Resume() {
	m.paused = false
}

func (m *Machine) TogglePause() {
	m.paused = !m.paused
}

func (m *Machine) Paused() bool {
	return m.paused
}

// Frames returns the number of frames executed so far.
func (m *Machine) Frames() uint64 {
	return m.frames
}

// Reset restarts the loaded program.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.frames = 0
}

// Run executes one frame per tick until the context is cancelled, the machine
// halts or limit frames ran. A limit of 0 runs without limit. afterFrame, if not
// nil, is called after every frame.
func (m *Machine) Run(ctx context.Context, ticks <-chan time.Time, limit int, afterFrame func()) error {
	for ran := 0; limit == 0 || ran < limit; ran++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
		}

		if err := m.Frame(); err != nil {
			return err
		}
		if afterFrame != nil {
			afterFrame()
		}
		if m.cpu.Halted() {
			return nil
		}
	}
	return nil
}
