package video

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

// LCDControl is the decoded LCDC register.
//
//	Bit 7 - LCD Display Enable (0=Off, 1=On)
//	Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window Display Enable (0=Off, 1=On)
//	Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
//	Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
//	Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
//	Bit 0 - BG Display (0=Off, 1=On), master priority in color mode
type LCDControl struct {
	Enabled          bool
	WindowMapHigh    bool
	WindowEnabled    bool
	TileDataUnsigned bool
	BGMapHigh        bool
	TallSprites      bool
	SpritesEnabled   bool
	BGEnabled        bool
}

// DecodeLCDControl decodes a raw LCDC value.
func DecodeLCDControl(value byte) LCDControl {
	return LCDControl{
		Enabled:          bit.IsSet(7, value),
		WindowMapHigh:    bit.IsSet(6, value),
		WindowEnabled:    bit.IsSet(5, value),
		TileDataUnsigned: bit.IsSet(4, value),
		BGMapHigh:        bit.IsSet(3, value),
		TallSprites:      bit.IsSet(2, value),
		SpritesEnabled:   bit.IsSet(1, value),
		BGEnabled:        bit.IsSet(0, value),
	}
}

// SpriteHeight returns 8 or 16.
func (c LCDControl) SpriteHeight() int {
	if c.TallSprites {
		return 16
	}
	return 8
}

// bgMap returns the VRAM offset of the background tile map.
func (c LCDControl) bgMap() int {
	if c.BGMapHigh {
		return 0x1C00
	}
	return 0x1800
}

// windowMap returns the VRAM offset of the window tile map.
func (c LCDControl) windowMap() int {
	if c.WindowMapHigh {
		return 0x1C00
	}
	return 0x1800
}

// tileOffset returns the VRAM offset of a background/window tile.
// The signed area is based at 0x9000.
func (c LCDControl) tileOffset(index byte) int {
	if c.TileDataUnsigned {
		return int(index) * 16
	}
	return 0x1000 + int(int8(index))*16
}
