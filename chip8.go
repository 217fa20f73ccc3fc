// Package main implements a CHIP-8 interpreter with window, terminal and
// headless frontends.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"meszarosd.hu/chip8vm/internal/chip8"
	"meszarosd.hu/chip8vm/internal/config"
	"meszarosd.hu/chip8vm/internal/machine"
)

//https://tobiasvl.github.io/blog/write-a-chip-8-emulator/

const windowTitle = "CHIP-8 emulator by Dominik Mészáros"

func main() {
	ctx := app.Context()

	opts, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			fmt.Println(usageErr.Error())
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err := run(ctx, opts, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts config.Options, logger *log.Logger) error {
	m, err := newMachine(opts, logger)
	if err != nil {
		return err
	}

	switch opts.Frontend {
	case config.FrontendTerminal:
		return runTerminal(ctx, m, opts.Frames, logger)
	case config.FrontendHeadless:
		return runHeadless(ctx, m, opts.Frames, os.Stdout)
	default:
		return runWindow(m, opts, logger)
	}
}

func newMachine(opts config.Options, logger *log.Logger) (*machine.Machine, error) {
	rom, err := chip8.ReadROM(opts.ROM)
	if err != nil {
		return nil, err
	}

	cpuOpts := []chip8.Option{
		chip8.WithLogger(logger),
		chip8.WithQuirks(opts.Quirks),
		chip8.WithTrace(opts.Trace),
	}
	if opts.Seed != 0 {
		cpuOpts = append(cpuOpts, chip8.WithRandom(rand.New(rand.NewPCG(opts.Seed, 0))))
	}
	cpu := chip8.New(cpuOpts...)
	if err := cpu.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("loading rom %s: %w", opts.ROM, err)
	}

	logger.Info("Loaded rom",
		log.String("file", opts.ROM),
		log.Int("size", len(rom)),
		log.Int("cycles", opts.Cycles))
	return machine.New(cpu, opts.Cycles, logger), nil
}

func runWindow(m *machine.Machine, opts config.Options, logger *log.Logger) error {
	beeper, err := newBeeper(opts.Audio, logger)
	if err != nil {
		logger.Warn("Audio unavailable, sound disabled", log.Err(err))
		beeper = nullBeeper{}
	}
	defer func() {
		if err := beeper.Close(); err != nil {
			logger.Warn("Closing audio failed", log.Err(err))
		}
	}()

	if opts.Frames > 0 {
		logger.Warn("Frame limit is ignored by the window frontend", log.Int("frames", opts.Frames))
	}
	return RunScreen(NewScreen(m, beeper, opts.Scale, logger), windowTitle)
}

// runHeadless runs at frame rate without any output until the program ends or
// the frame limit is reached, then dumps the display and machine state.
func runHeadless(ctx context.Context, m *machine.Machine, frames int, out io.Writer) error {
	ticker := time.NewTicker(machine.FrameDuration)
	defer ticker.Stop()

	err := m.Run(ctx, ticker.C, frames, nil)
	fmt.Fprint(out, m.Cpu().Display().String())
	fmt.Fprint(out, m.Cpu().String())
	return err
}
