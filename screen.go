package main

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"

	"meszarosd.hu/chip8vm/internal/chip8"
	"meszarosd.hu/chip8vm/internal/machine"
)

var overlayColor = color.RGBA{R: 0xFF, G: 0x50, B: 0x50, A: 0xFF}

// Screen runs the machine inside an ebiten window, one machine frame per tick.
type Screen struct {
	machine *machine.Machine
	cpu     *chip8.Cpu
	beeper  Beeper
	logger  *log.Logger
	scale   int

	img   *ebiten.Image
	fault error
}

func NewScreen(m *machine.Machine, beeper Beeper, scale int, logger *log.Logger) *Screen {
	return &Screen{
		machine: m,
		cpu:     m.Cpu(),
		beeper:  beeper,
		logger:  logger,
		scale:   scale,
		img:     ebiten.NewImage(chip8.Width, chip8.Height),
	}
}

func (s *Screen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	s.handleControlKeys()

	s.cpu.SetKey(pressedKey(ebiten.IsKeyPressed))

	if err := s.machine.Frame(); err != nil {
		s.fault = err
	}

	s.beeper.SetActive(s.cpu.SoundActive() && !s.machine.Paused() && !s.cpu.Halted())
	return nil
}

func (s *Screen) handleControlKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.machine.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && s.machine.Paused() {
		if err := s.machine.StepFrame(); err != nil {
			s.fault = err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		s.machine.Reset()
		s.fault = nil
		s.logger.Info("Machine reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := copyScreenshot(s.cpu.Display(), s.scale); err != nil {
			s.logger.Warn("Screenshot failed", log.Err(err))
		} else {
			s.logger.Info("Screenshot copied to clipboard")
		}
	}
}

func (s *Screen) Draw(screen *ebiten.Image) {
	s.img.WritePixels(s.cpu.Display().RGBA())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(s.scale), float64(s.scale))
	screen.DrawImage(s.img, op)

	if msg := s.status(); msg != "" {
		text.Draw(screen, msg, basicfont.Face7x13, 4, 14, overlayColor)
	}
}

func (s *Screen) status() string {
	switch {
	case s.fault != nil:
		return fmt.Sprintf("FAULT: %v", s.fault)
	case s.cpu.Halted():
		return "HALTED - F10 reset, Esc quit"
	case s.machine.Paused():
		return fmt.Sprintf("PAUSED frame %d - N step, Space resume", s.machine.Frames())
	}
	return ""
}

func (s *Screen) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.Width * s.scale, chip8.Height * s.scale
}

// RunScreen blocks until the window is closed or Escape is pressed.
func RunScreen(s *Screen, title string) error {
	ebiten.SetWindowSize(chip8.Width*s.scale, chip8.Height*s.scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(machine.FrameRate)
	if err := ebiten.RunGame(s); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
