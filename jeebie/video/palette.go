package video

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

const paletteRAMSize = 64

// ColorPalette is one color-mode palette memory: 8 palettes of 4 colors,
// each color a little-endian RGB555 word. It is accessed through an index
// port (BCPS/OCPS) and a data port (BCPD/OCPD).
type ColorPalette struct {
	data          [paletteRAMSize]byte
	index         uint8
	autoIncrement bool
}

// Reset fills every palette with white.
func (p *ColorPalette) Reset() {
	for i := range p.data {
		p.data[i] = 0xFF
	}
	p.index = 0
	p.autoIncrement = false
}

// WriteIndex handles a write to the index port.
// Bit 7 enables auto-increment, bits 0-5 select the byte.
func (p *ColorPalette) WriteIndex(value byte) {
	p.index = value & 0x3F
	p.autoIncrement = bit.IsSet(7, value)
}

// ReadIndex returns the index port, bit 6 reads as 1.
func (p *ColorPalette) ReadIndex() byte {
	return bit.SetTo(7, 0x40|p.index, p.autoIncrement)
}

// WriteData stores value at the current index, advancing it if enabled.
func (p *ColorPalette) WriteData(value byte) {
	p.data[p.index] = value
	if p.autoIncrement {
		p.index = (p.index + 1) & 0x3F
	}
}

// ReadData returns the byte at the current index. Reads never advance it.
func (p *ColorPalette) ReadData() byte {
	return p.data[p.index]
}

// RGB returns color (0-3) of palette (0-7) scaled to 8 bits per channel.
func (p *ColorPalette) RGB(palette, color uint8) (r, g, b byte) {
	i := int(palette&0x07)*8 + int(color&0x03)*2
	word := bit.Combine(p.data[i+1], p.data[i])
	return scale5(word), scale5(word >> 5), scale5(word >> 10)
}

func scale5(c uint16) byte {
	c &= 0x1F
	return byte(c<<3 | c>>2)
}

// legacyShade resolves color through a BGP/OBP0/OBP1 style palette register.
func legacyShade(palette byte, color uint8) Shade {
	return legacyShades[(palette>>(color*2))&0x03]
}
