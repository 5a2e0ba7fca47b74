package video

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

// TileRow represents one row of a tile pattern (8 pixels).
//
// Each row uses 2 bytes in bit-plane format: the first byte holds bit 0 of
// every pixel's color, the second bit 1. Bit 7 is the leftmost pixel.
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// readTileRow fetches row (0-7) of the tile at offset in a VRAM bank.
func readTileRow(vram []byte, offset, row int) TileRow {
	i := offset + row*2
	return TileRow{Low: vram[i], High: vram[i+1]}
}

// GetPixel extracts a pixel color (0-3) from the tile row.
// pixelX should be 0-7, where 0 is the leftmost pixel.
func (t TileRow) GetPixel(pixelX int) uint8 {
	index := uint8(7 - pixelX)
	return bit.Value(index, t.Low) | bit.Value(index, t.High)<<1
}

// Flipped returns the row mirrored horizontally.
func (t TileRow) Flipped() TileRow {
	return TileRow{Low: bit.Reverse(t.Low), High: bit.Reverse(t.High)}
}

// tileAttributes is a color-mode tile map attribute byte from VRAM bank 1.
//
//	Bit 7   - BG-to-OAM priority
//	Bit 6   - vertical flip
//	Bit 5   - horizontal flip
//	Bit 3   - tile VRAM bank
//	Bit 2-0 - background palette
type tileAttributes byte

func (a tileAttributes) palette() uint8 { return uint8(a) & 0x07 }
func (a tileAttributes) bank() int      { return int(bit.Value(3, uint8(a))) }
func (a tileAttributes) flipX() bool    { return bit.IsSet(5, uint8(a)) }
func (a tileAttributes) flipY() bool    { return bit.IsSet(6, uint8(a)) }
func (a tileAttributes) priority() bool { return bit.IsSet(7, uint8(a)) }
