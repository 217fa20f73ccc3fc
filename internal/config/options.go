package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"meszarosd.hu/chip8vm/internal/chip8"
	"meszarosd.hu/chip8vm/internal/machine"
)

const (
	FrontendEbiten   = "ebiten"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"

	AudioEbiten = "ebiten"
	AudioOto    = "oto"
	AudioNone   = "none"

	DefaultScale          = 10
	DefaultHeadlessFrames = 600
)

var (
	frontends = []string{FrontendEbiten, FrontendTerminal, FrontendHeadless}
	audios    = []string{AudioEbiten, AudioOto, AudioNone}
)

// Options contains the program options.
type Options struct {
	ROM      string
	Frontend string
	Audio    string
	Cycles   int
	Scale    int
	Frames   int
	Quirks   chip8.Quirks
	Seed     uint64
	Trace    bool
	Debug    bool
	Quiet    bool
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] <rom file>\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// ParseFlags parses the command line arguments, without the program name.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip8vm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	var quirks string
	flags.StringVar(&opts.Frontend, "frontend", FrontendEbiten, "display frontend (ebiten/terminal/headless)")
	flags.StringVar(&opts.Audio, "audio", AudioEbiten, "audio backend (ebiten/oto/none)")
	flags.IntVar(&opts.Cycles, "cycles", machine.DefaultCyclesPerFrame, "instructions executed per 60 Hz frame")
	flags.IntVar(&opts.Scale, "scale", DefaultScale, "window scale factor of the ebiten frontend")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after this many frames, 0 runs until the program ends (headless default 600)")
	flags.StringVar(&quirks, "quirks", "modern", "interpreter quirks preset (modern/vip)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random number seed, 0 picks one from the clock")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if flags.NArg() != 1 {
		return opts, &UsageError{flags: flags, msg: "expected exactly one rom file"}
	}
	opts.ROM = flags.Arg(0)

	if err := normalizeOptions(&opts, quirks); err != nil {
		return opts, err
	}
	return opts, nil
}

func normalizeOptions(opts *Options, quirks string) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if !slices.Contains(frontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontends, ", "))
	}

	opts.Audio = strings.ToLower(opts.Audio)
	if !slices.Contains(audios, opts.Audio) {
		return fmt.Errorf("unsupported audio backend: %s. Valid options: %s",
			opts.Audio, strings.Join(audios, ", "))
	}
	// The terminal rings its own bell and headless runs stay silent.
	if opts.Frontend != FrontendEbiten {
		opts.Audio = AudioNone
	}

	q, err := chip8.ParseQuirks(strings.ToLower(quirks))
	if err != nil {
		return err
	}
	opts.Quirks = q

	if opts.Cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", opts.Cycles)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", opts.Scale)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", opts.Frames)
	}
	if opts.Frames == 0 && opts.Frontend == FrontendHeadless {
		opts.Frames = DefaultHeadlessFrames
	}
	if opts.Trace {
		opts.Debug = true
	}
	return nil
}
