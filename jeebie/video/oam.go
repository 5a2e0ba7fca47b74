package video

import (
	"sort"

	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

const (
	spriteCount      = 40
	spritesPerLine   = 10
	spriteEntryBytes = 4
)

// Sprite is the decoded view of one OAM entry.
type Sprite struct {
	Y         int   // screen position, raw value minus 16
	X         int   // screen position, raw value minus 8
	TileIndex uint8 // Tile/pattern number (0-255)
	Flags     uint8 // Attribute flags byte
	OAMIndex  int

	// parsed attribute flags
	BehindBG     bool  // bit 7, drawn below non-zero background pixels
	FlipY        bool  // bit 6
	FlipX        bool  // bit 5
	PaletteOBP1  bool  // bit 4, legacy palette select
	Bank         int   // bit 3, color-mode tile bank
	ColorPalette uint8 // bits 0-2, color-mode palette
}

func (s *Sprite) parseFlags() {
	s.BehindBG = bit.IsSet(7, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.Bank = int(bit.Value(3, s.Flags))
	s.ColorPalette = s.Flags & 0x07
}

// covers reports whether the sprite spans line for the given height.
func (s *Sprite) covers(line, height int) bool {
	return line >= s.Y && line < s.Y+height
}

// SpriteTable caches the 40 decoded OAM entries. Every OAM byte write
// updates exactly one field.
type SpriteTable struct {
	entries [spriteCount]Sprite
}

// NewSpriteTable returns a table matching an all-zero OAM.
func NewSpriteTable() *SpriteTable {
	t := &SpriteTable{}
	t.Reset()
	return t
}

// Reset decodes an all-zero OAM.
func (t *SpriteTable) Reset() {
	for i := range t.entries {
		t.entries[i] = Sprite{Y: -16, X: -8, OAMIndex: i}
	}
}

// Write updates the entry field backed by OAM byte offset (0-159).
func (t *SpriteTable) Write(offset uint16, value byte) {
	s := &t.entries[offset/spriteEntryBytes]
	switch offset % spriteEntryBytes {
	case 0:
		s.Y = int(value) - 16
	case 1:
		s.X = int(value) - 8
	case 2:
		s.TileIndex = value
	case 3:
		s.Flags = value
		s.parseFlags()
	}
}

// Get returns the entry at index (0-39).
func (t *SpriteTable) Get(index int) Sprite {
	return t.entries[index]
}

// Select appends to out the sprites covering line, in OAM order and capped
// at 10. With xPriority set the selection is stably sorted by X so that the
// leftmost sprite comes first and OAM order breaks ties.
func (t *SpriteTable) Select(line, height int, xPriority bool, out []Sprite) []Sprite {
	out = out[:0]
	for i := range t.entries {
		if !t.entries[i].covers(line, height) {
			continue
		}
		out = append(out, t.entries[i])
		if len(out) == spritesPerLine {
			break
		}
	}

	if xPriority {
		sort.SliceStable(out, func(a, b int) bool { return out[a].X < out[b].X })
	}
	return out
}

// pixel returns the color index (0-3) of the sprite at screen column x on line.
func (s *Sprite) pixel(vram [2][]byte, line, x, height int) uint8 {
	row := line - s.Y
	if s.FlipY {
		row = height - 1 - row
	}

	tile := s.TileIndex
	if height == 16 {
		tile &= 0xFE
	}

	tileRow := readTileRow(vram[s.Bank], int(tile)*16, row)
	if s.FlipX {
		tileRow = tileRow.Flipped()
	}
	return tileRow.GetPixel(x - s.X)
}
