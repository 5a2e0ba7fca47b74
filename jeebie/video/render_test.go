package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
)

// writeTile stores 8 rows of (low, high) plane bytes at tile index in bank.
func (m *fakeMemory) writeTile(bank, index int, rows [8][2]byte) {
	for r, planes := range rows {
		m.vram[bank][index*16+r*2] = planes[0]
		m.vram[bank][index*16+r*2+1] = planes[1]
	}
}

func solidTile(color uint8) [8][2]byte {
	var rows [8][2]byte
	for r := range rows {
		if color&1 != 0 {
			rows[r][0] = 0xFF
		}
		if color&2 != 0 {
			rows[r][1] = 0xFF
		}
	}
	return rows
}

// checkerTile is split in 2x2 quadrants, color 3 top-left and bottom-right.
func checkerTile() [8][2]byte {
	var rows [8][2]byte
	for r := range rows {
		v := byte(0xF0)
		if r >= 4 {
			v = 0x0F
		}
		rows[r] = [2]byte{v, v}
	}
	return rows
}

func shadeAt(g *GPU, x, y int) Shade {
	r, _, _ := g.back.Pixel(x, y)
	return Shade(r)
}

func TestRender_checkerboardWithScroll(t *testing.T) {
	mem := newFakeMemory()
	mem.writeTile(0, 0, checkerTile())
	g := NewGpu(mem)
	g.SetControl(0x91)

	for _, scx := range []int{0, 3, 100, 253} {
		for _, line := range []int{0, 5, 77} {
			mem.regs[addr.SCX] = byte(scx)
			g.renderLine(line)

			for x := 0; x < FramebufferWidth; x++ {
				px := (x + scx) & 0xFF
				want := White
				if (px%8 < 4) == (line%8 < 4) {
					want = Black
				}
				assert.Equal(t, want, shadeAt(g, x, line), "scx=%d line=%d x=%d", scx, line, x)
			}
		}
	}
}

func TestRender_tileMapWraparound(t *testing.T) {
	mem := newFakeMemory()
	mem.writeTile(0, 0, checkerTile())
	mem.writeTile(0, 1, solidTile(1))
	mem.vram[0][0x1800+31] = 1 // last column of map row 0
	mem.regs[addr.SCX] = 248
	g := NewGpu(mem)
	g.SetControl(0x91)

	g.renderLine(0)

	for x := 0; x < 8; x++ {
		assert.Equal(t, LightGrey, shadeAt(g, x, 0), "x=%d shows map column 31", x)
	}
	for x := 8; x < 12; x++ {
		assert.Equal(t, Black, shadeAt(g, x, 0), "x=%d wraps to map column 0", x)
	}
	assert.Equal(t, White, shadeAt(g, 12, 0))
}

func TestRender_signedTileData(t *testing.T) {
	mem := newFakeMemory()
	// tile -1 in the signed area lives at 0x8FF0
	for r := 0; r < 8; r++ {
		mem.vram[0][0x0FF0+r*2+1] = 0xFF
	}
	mem.vram[0][0x1800] = 0xFF
	g := NewGpu(mem)
	g.SetControl(0x81)

	g.renderLine(0)

	assert.Equal(t, DarkGrey, shadeAt(g, 0, 0))
	assert.Equal(t, White, shadeAt(g, 8, 0), "tile 0 of the signed area is at 0x9000")
}

func TestRender_window(t *testing.T) {
	mem := newFakeMemory()
	mem.writeTile(0, 1, solidTile(3))
	// window uses the high map
	for i := 0; i < 32*32; i++ {
		mem.vram[0][0x1C00+i] = 1
	}
	mem.regs[addr.WX] = 7 + 40
	mem.regs[addr.WY] = 10
	g := NewGpu(mem)
	g.SetControl(0xF1)

	g.renderLine(9)
	assert.Equal(t, White, shadeAt(g, 50, 9), "above the window")

	g.renderLine(10)
	assert.Equal(t, White, shadeAt(g, 39, 10))
	assert.Equal(t, Black, shadeAt(g, 40, 10))

	g.SetControl(0xF0)
	g.renderLine(10)
	assert.Equal(t, White, shadeAt(g, 40, 10), "legacy BG disable blanks the window too")
}

func TestRender_spritePriority(t *testing.T) {
	testCases := []struct {
		desc    string
		bgColor uint8
		flags   byte
		want    Shade
	}{
		{desc: "above non-zero background", bgColor: 1, flags: 0x00, want: Black},
		{desc: "below non-zero background", bgColor: 1, flags: 0x80, want: LightGrey},
		{desc: "below background over color 0", bgColor: 0, flags: 0x80, want: Black},
		{desc: "above background over color 0", bgColor: 0, flags: 0x00, want: Black},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			mem := newFakeMemory()
			mem.writeTile(0, 0, solidTile(tC.bgColor))
			mem.writeTile(0, 2, solidTile(3))
			mem.writeOAM(0, 16, 8, 2, tC.flags)
			g := NewGpu(mem)
			g.SetControl(0x93)

			g.renderLine(0)

			assert.Equal(t, tC.want, shadeAt(g, 3, 0))
			assert.NotEqual(t, Black, shadeAt(g, 8, 0), "outside the sprite")
		})
	}
}

func TestRender_spriteOrdering(t *testing.T) {
	t.Run("legacy leftmost wins", func(t *testing.T) {
		mem := newFakeMemory()
		mem.writeTile(0, 2, solidTile(3))
		mem.writeTile(0, 3, solidTile(1))
		mem.writeOAM(0, 16, 12, 2, 0x00) // black at x=4
		mem.writeOAM(1, 16, 10, 3, 0x00) // light grey at x=2
		g := NewGpu(mem)
		g.SetControl(0x93)

		g.renderLine(0)
		assert.Equal(t, LightGrey, shadeAt(g, 5, 0))
	})

	t.Run("color OAM order wins", func(t *testing.T) {
		mem := newFakeMemory()
		mem.color = true
		mem.writeTile(0, 2, solidTile(3))
		mem.writeTile(0, 3, solidTile(1))
		mem.writeOAM(0, 16, 12, 2, 0x00)
		mem.writeOAM(1, 16, 10, 3, 0x01)
		g := NewGpu(mem)
		g.SetControl(0x93)
		// palette 0 color 3 pure red
		g.objPalette.WriteIndex(0x80 | 6)
		g.objPalette.WriteData(0x1F)
		g.objPalette.WriteData(0x00)

		g.renderLine(0)
		r, gr, b := g.back.Pixel(5, 0)
		assert.Equal(t, []byte{0xFF, 0x00, 0x00}, []byte{r, gr, b})
	})

	t.Run("transparent pixels fall through", func(t *testing.T) {
		mem := newFakeMemory()
		mem.writeTile(0, 2, solidTile(0))
		mem.writeTile(0, 3, solidTile(2))
		mem.writeOAM(0, 16, 8, 2, 0x00)
		mem.writeOAM(1, 16, 8, 3, 0x00)
		g := NewGpu(mem)
		g.SetControl(0x93)

		g.renderLine(0)
		assert.Equal(t, DarkGrey, shadeAt(g, 0, 0))
	})

	t.Run("ten sprites per line", func(t *testing.T) {
		mem := newFakeMemory()
		mem.writeTile(0, 2, solidTile(3))
		for i := 0; i < 11; i++ {
			mem.writeOAM(i, 16, byte(8+i*8), 2, 0x00)
		}
		g := NewGpu(mem)
		g.SetControl(0x93)

		g.renderLine(0)
		assert.Equal(t, Black, shadeAt(g, 79, 0))
		assert.Equal(t, White, shadeAt(g, 80, 0), "11th sprite dropped")
	})
}

func TestRender_tallSpritesAndFlips(t *testing.T) {
	mem := newFakeMemory()
	mem.writeTile(0, 4, solidTile(1))
	mem.writeTile(0, 5, solidTile(3))
	// tile index 5 is rounded down to 4 for 8x16 sprites
	mem.writeOAM(0, 16, 8, 5, 0x00)
	mem.writeOAM(1, 16, 40, 5, 0x40)
	g := NewGpu(mem)
	g.SetControl(0x97)

	g.renderLine(2)
	assert.Equal(t, LightGrey, shadeAt(g, 0, 2))
	assert.Equal(t, Black, shadeAt(g, 32, 2), "flipped vertically")

	g.renderLine(12)
	assert.Equal(t, Black, shadeAt(g, 0, 12))
	assert.Equal(t, LightGrey, shadeAt(g, 32, 12))

	// horizontal flip of a half-filled row
	mem.writeTile(0, 6, [8][2]byte{{0xF0, 0xF0}})
	mem.writeOAM(2, 32, 80, 6, 0x20)
	g.SetControl(0x93)
	g.renderLine(16)
	assert.Equal(t, White, shadeAt(g, 72, 16))
	assert.Equal(t, Black, shadeAt(g, 76, 16))
}

func TestRender_colorTileAttributes(t *testing.T) {
	mem := newFakeMemory()
	mem.color = true
	mem.writeTile(1, 0, checkerTile())
	mem.vram[1][0x1800] = 0x08 | 0x20 | 0x02 // bank 1, flip x, palette 2
	g := NewGpu(mem)
	g.SetControl(0x91)

	// palette 2 color 3 = pure blue
	g.bgPalette.WriteIndex(0x80 | (2*8 + 6))
	g.bgPalette.WriteData(0x00)
	g.bgPalette.WriteData(0x7C)

	g.renderLine(0)

	r, gr, b := g.back.Pixel(0, 0)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, []byte{r, gr, b}, "flipped, left half is color 0")
	r, gr, b = g.back.Pixel(4, 0)
	assert.Equal(t, []byte{0x00, 0x00, 0xFF}, []byte{r, gr, b})
}

func TestRender_colorBackgroundPriority(t *testing.T) {
	testCases := []struct {
		desc   string
		attr   byte
		flags  byte
		lcdc   byte
		sprite bool
	}{
		{desc: "sprite above", attr: 0x00, lcdc: 0x93, sprite: true},
		{desc: "tile priority keeps background above", attr: 0x80, lcdc: 0x93, sprite: false},
		{desc: "sprite behind flag alone hides it", attr: 0x00, flags: 0x80, lcdc: 0x93, sprite: false},
		{desc: "master priority off puts sprite above", attr: 0x80, lcdc: 0x92, sprite: true},
		{desc: "master priority off overrides behind flag", attr: 0x00, flags: 0x80, lcdc: 0x92, sprite: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			mem := newFakeMemory()
			mem.color = true
			mem.writeTile(0, 0, solidTile(1))
			mem.writeTile(0, 2, solidTile(3))
			mem.vram[1][0x1800] = tC.attr
			mem.writeOAM(0, 16, 8, 2, tC.flags)
			g := NewGpu(mem)
			g.SetControl(tC.lcdc)
			g.objPalette.WriteIndex(6)
			g.objPalette.WriteData(0x00)

			g.renderLine(0)

			r, _, _ := g.back.Pixel(0, 0)
			if tC.sprite {
				assert.Equal(t, byte(0x00), r)
			} else {
				assert.Equal(t, byte(0xFF), r)
			}
		})
	}
}
