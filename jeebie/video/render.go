package video

import "github.com/valerio/go-jeebie-cgb/jeebie/addr"

// backgroundPixel is the resolved background or window sample of a column.
type backgroundPixel struct {
	color uint8
	attr  tileAttributes
}

// renderLine composites one scanline into the back buffer.
func (g *GPU) renderLine(line int) {
	color := g.mem.ColorMode()
	lcd := g.control

	vram := [2][]byte{g.mem.VRAM(0), g.mem.VRAM(0)}
	if color {
		vram[1] = g.mem.VRAM(1)
	}

	scx := int(g.mem.Read(addr.SCX))
	scy := int(g.mem.Read(addr.SCY))
	wx := int(g.mem.Read(addr.WX)) - 7
	wy := int(g.mem.Read(addr.WY))
	bgp := g.mem.Read(addr.BGP)
	obp := [2]byte{g.mem.Read(addr.OBP0), g.mem.Read(addr.OBP1)}

	// legacy hardware blanks both background and window with LCDC bit 0
	bgVisible := color || lcd.BGEnabled
	windowVisible := bgVisible && lcd.WindowEnabled && line >= wy

	height := lcd.SpriteHeight()
	var sprites []Sprite
	if lcd.SpritesEnabled {
		sprites = g.mem.Sprites().Select(line, height, !color, g.lineSprites)
		g.lineSprites = sprites
	}

	for x := 0; x < FramebufferWidth; x++ {
		var bg backgroundPixel
		switch {
		case windowVisible && x >= wx:
			bg = sampleTileMap(vram, lcd, lcd.windowMap(), x-wx, line-wy, color)
		case bgVisible:
			bg = sampleTileMap(vram, lcd, lcd.bgMap(), (x+scx)&0xFF, (line+scy)&0xFF, color)
		}

		sprite, spriteColor := g.spriteAt(sprites, vram, line, x, height)
		if sprite != nil && spriteAbove(sprite, bg, color, lcd.BGEnabled) {
			if color {
				r, gr, b := g.objPalette.RGB(sprite.ColorPalette, spriteColor)
				g.back.SetPixel(x, line, r, gr, b)
			} else {
				palette := obp[0]
				if sprite.PaletteOBP1 {
					palette = obp[1]
				}
				shade := byte(legacyShade(palette, spriteColor))
				g.back.SetPixel(x, line, shade, shade, shade)
			}
			continue
		}

		switch {
		case color:
			r, gr, b := g.bgPalette.RGB(bg.attr.palette(), bg.color)
			g.back.SetPixel(x, line, r, gr, b)
		case bgVisible:
			shade := byte(legacyShade(bgp, bg.color))
			g.back.SetPixel(x, line, shade, shade, shade)
		default:
			g.back.SetPixel(x, line, byte(White), byte(White), byte(White))
		}
	}
}

// sampleTileMap returns the background color index at map coordinates (px, py).
func sampleTileMap(vram [2][]byte, lcd LCDControl, mapOffset, px, py int, color bool) backgroundPixel {
	entry := mapOffset + (py/8)*32 + px/8
	index := vram[0][entry]

	var attr tileAttributes
	if color {
		attr = tileAttributes(vram[1][entry])
	}

	row := py % 8
	if attr.flipY() {
		row = 7 - row
	}

	tileRow := readTileRow(vram[attr.bank()], lcd.tileOffset(index), row)
	if attr.flipX() {
		tileRow = tileRow.Flipped()
	}

	return backgroundPixel{color: tileRow.GetPixel(px % 8), attr: attr}
}

// spriteAt returns the highest priority sprite with an opaque pixel at column x.
func (g *GPU) spriteAt(sprites []Sprite, vram [2][]byte, line, x, height int) (*Sprite, uint8) {
	for i := range sprites {
		s := &sprites[i]
		if x < s.X || x >= s.X+8 {
			continue
		}
		if c := s.pixel(vram, line, x, height); c != 0 {
			return s, c
		}
	}
	return nil, 0
}

// spriteAbove resolves sprite to background priority. In color mode LCDC
// bit 0 cleared puts every sprite on top, and the tile attribute priority
// bit pushes the background above the sprite.
func spriteAbove(s *Sprite, bg backgroundPixel, color, bgEnabled bool) bool {
	if bg.color == 0 {
		return true
	}
	if color {
		if !bgEnabled {
			return true
		}
		return !s.BehindBG && !bg.attr.priority()
	}
	return !s.BehindBG
}
