package main

import (
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/retroenv/retrogolib/log"

	"meszarosd.hu/chip8vm/internal/config"
)

const (
	sampleRate = 48000
	frequency  = 440
)

// Beeper plays a continuous tone while active.
type Beeper interface {
	SetActive(active bool)
	Close() error
}

func newBeeper(kind string, logger *log.Logger) (Beeper, error) {
	switch kind {
	case config.AudioEbiten:
		return newEbitenBeeper()
	case config.AudioOto:
		return newOtoBeeper()
	case config.AudioNone:
		return nullBeeper{}, nil
	default:
		logger.Warn("Unknown audio backend, sound disabled", log.String("audio", kind))
		return nullBeeper{}, nil
	}
}

// stream is an endless 440 Hz sine wave in stereo float32 little endian.
type stream struct {
	pos int64
}

func (s *stream) Read(buf []byte) (int, error) {
	const bytesPerSample = 8

	n := len(buf) / bytesPerSample * bytesPerSample

	const length = sampleRate / frequency
	for i := 0; i < n/bytesPerSample; i++ {
		v := math.Float32bits(float32(math.Sin(2 * math.Pi * float64(s.pos/bytesPerSample+int64(i)) / length)))
		buf[8*i] = byte(v)
		buf[8*i+1] = byte(v >> 8)
		buf[8*i+2] = byte(v >> 16)
		buf[8*i+3] = byte(v >> 24)
		buf[8*i+4] = byte(v)
		buf[8*i+5] = byte(v >> 8)
		buf[8*i+6] = byte(v >> 16)
		buf[8*i+7] = byte(v >> 24)
	}

	s.pos += int64(n)
	s.pos %= length * bytesPerSample

	return n, nil
}

func (s *stream) Close() error {
	return nil
}

type ebitenBeeper struct {
	player *audio.Player
}

func newEbitenBeeper() (*ebitenBeeper, error) {
	ctx := audio.NewContext(sampleRate)
	player, err := ctx.NewPlayerF32(&stream{})
	if err != nil {
		return nil, fmt.Errorf("creating audio player: %w", err)
	}
	return &ebitenBeeper{player: player}, nil
}

func (b *ebitenBeeper) SetActive(active bool) {
	switch {
	case active && !b.player.IsPlaying():
		b.player.Play()
	case !active && b.player.IsPlaying():
		b.player.Pause()
	}
}

func (b *ebitenBeeper) Close() error {
	return b.player.Close()
}

type otoBeeper struct {
	player *oto.Player
}

func newOtoBeeper() (*otoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready
	return &otoBeeper{player: ctx.NewPlayer(&stream{})}, nil
}

func (b *otoBeeper) SetActive(active bool) {
	switch {
	case active && !b.player.IsPlaying():
		b.player.Play()
	case !active && b.player.IsPlaying():
		b.player.Pause()
	}
}

func (b *otoBeeper) Close() error {
	return b.player.Close()
}

type nullBeeper struct{}

func (nullBeeper) SetActive(bool) {}

func (nullBeeper) Close() error { return nil }
