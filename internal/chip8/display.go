package chip8

import (
	"image"
	"strings"
)

// Display is the 64x32 monochrome frame buffer, one uint64 per row with bit 63
// being the leftmost pixel.
type Display struct {
	rows [Height]uint64
}

func (d *Display) ClearScreen() {
	d.rows = [Height]uint64{}
}

// DrawSprite XORs sprite rows onto the buffer with the top left corner at
// (x mod 64, y mod 32). Rows below the bottom edge and pixels right of the
// right edge are clipped. It reports whether any set pixel was turned off.
func (d *Display) DrawSprite(x, y uint8, sprite []byte) bool {
	col := uint(x % Width)
	row := int(y % Height)
	collision := false
	for i, b := range sprite {
		if row+i >= Height {
			break
		}
		mask := uint64(b) << (Width - 8) >> col
		old := d.rows[row+i]
		d.rows[row+i] = old ^ mask
		if old&mask != 0 {
			collision = true
		}
	}
	return collision
}

// Row returns the bitmask of row y.
func (d *Display) Row(y int) uint64 {
	return d.rows[y]
}

func (d *Display) Pixel(x, y int) bool {
	return d.rows[y]&(uint64(1)<<(Width-1)>>x) != 0
}

// RGBA converts the buffer into 64*32 RGBA pixels: set pixels are opaque white,
// clear pixels opaque black.
func (d *Display) RGBA() []byte {
	pix := make([]byte, Width*Height*4)
	d.fillRGBA(pix)
	return pix
}

func (d *Display) fillRGBA(pix []byte) {
	for y := range Height {
		for x := range Width {
			idx := (y*Width + x) * 4
			var v byte
			if d.Pixel(x, y) {
				v = 0xFF
			}
			pix[idx+0] = v
			pix[idx+1] = v
			pix[idx+2] = v
			pix[idx+3] = 0xFF
		}
	}
}

func (d *Display) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	d.fillRGBA(img.Pix)
	return img
}

// String renders the buffer as text, '#' for set and '.' for clear pixels.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)
	for y := range Height {
		for x := range Width {
			if d.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
