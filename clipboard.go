package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"

	"meszarosd.hu/chip8vm/internal/chip8"
)

var errClipboardUnavailable = errors.New("clipboard unavailable")

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// encodeScreenshot renders the display scaled by scale as a PNG image.
func encodeScreenshot(d *chip8.Display, scale int) ([]byte, error) {
	src := d.Image()
	dst := image.NewRGBA(image.Rect(0, 0, chip8.Width*scale, chip8.Height*scale))
	for y := range dst.Rect.Dy() {
		srcRow := src.Pix[(y/scale)*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := range dst.Rect.Dx() {
			copy(dstRow[x*4:x*4+4], srcRow[(x/scale)*4:(x/scale)*4+4])
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// copyScreenshot puts a PNG of the display on the system clipboard.
func copyScreenshot(d *chip8.Display, scale int) error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("%w: %w", errClipboardUnavailable, clipboardErr)
	}

	data, err := encodeScreenshot(d, scale)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
