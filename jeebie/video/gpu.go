package video

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// Mode is the LCD controller state, numbered as reported in STAT bits 0-1.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMSearch
	PixelTransfer
)

func (m Mode) String() string {
	switch m {
	case HBlank:
		return "hblank"
	case VBlank:
		return "vblank"
	case OAMSearch:
		return "oam"
	}
	return "transfer"
}

// Timings in machine cycles.
const (
	oamCycles      = 20
	transferCycles = 43
	CyclesPerLine  = 114
	visibleLines   = 144
	LinesPerFrame  = 154
	CyclesPerFrame = CyclesPerLine * LinesPerFrame

	// delay between setting LCDC bit 7 and the first scanned line
	lcdEnableDelay = 61
)

// STAT bits
const (
	statCoincidence    = 2
	statLYCInterrupt   = 6
	statWritableMask   = 0x78
	statUnusedReadMask = 0x80
)

// Memory is the view of the bus used by the video unit.
type Memory interface {
	// VRAM returns one of the two 8KB video RAM banks.
	VRAM(bank int) []byte
	// Sprites returns the decoded OAM.
	Sprites() *SpriteTable
	Read(address uint16) byte
	RequestInterrupt(interrupt addr.Interrupt)
	// ColorMode reports whether the color-capable feature set is active.
	ColorMode() bool
}

// GPU is the LCD timing state machine plus the scanline compositor.
type GPU struct {
	mem Memory

	front, back *FrameBuffer

	control     LCDControl
	mode        Mode
	line        int
	dot         int
	enableDelay int

	lyc         byte
	statEnable  byte
	coincidence bool

	bgPalette  ColorPalette
	objPalette ColorPalette

	frames uint64

	// scratch storage reused by every scanline
	lineSprites []Sprite
}

// NewGpu returns a GPU with the LCD off.
func NewGpu(mem Memory) *GPU {
	g := &GPU{
		mem:         mem,
		lineSprites: make([]Sprite, 0, spritesPerLine),
	}
	g.Reset()
	return g
}

// Reset turns the LCD off and clears both buffers and palette memory.
func (g *GPU) Reset() {
	g.front = NewFrameBuffer()
	g.back = NewFrameBuffer()
	g.control = LCDControl{}
	g.mode = HBlank
	g.line = 0
	g.dot = 0
	g.enableDelay = 0
	g.lyc = 0
	g.statEnable = 0
	g.coincidence = false
	g.frames = 0
	g.bgPalette.Reset()
	g.objPalette.Reset()
}

// Tick advances the video unit by one machine cycle.
func (g *GPU) Tick() {
	if !g.control.Enabled {
		return
	}

	if g.enableDelay > 0 {
		g.enableDelay--
		if g.enableDelay == 0 {
			g.restart()
		}
		return
	}

	g.dot++
	if g.dot == CyclesPerLine {
		g.dot = 0
		g.line++
		if g.line == LinesPerFrame {
			g.line = 0
			g.swap()
		}
		g.compareLY()
	}

	next := modeAt(g.line, g.dot)
	if next == g.mode {
		return
	}
	if g.mode == PixelTransfer && next == HBlank {
		g.renderLine(g.line)
	}
	g.setMode(next)
}

func modeAt(line, dot int) Mode {
	switch {
	case line >= visibleLines:
		return VBlank
	case dot < oamCycles:
		return OAMSearch
	case dot < oamCycles+transferCycles:
		return PixelTransfer
	}
	return HBlank
}

func (g *GPU) restart() {
	g.line = 0
	g.dot = 0
	g.compareLY()
	g.setMode(OAMSearch)
}

func (g *GPU) setMode(mode Mode) {
	g.mode = mode

	if mode == VBlank {
		g.mem.RequestInterrupt(addr.VBlankInterrupt)
	}
	if mode != PixelTransfer && bit.IsSet(3+uint8(mode), g.statEnable) {
		g.mem.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// compareLY updates the coincidence flag, raising LCD STAT on a match.
func (g *GPU) compareLY() {
	match := byte(g.line) == g.lyc
	if match && !g.coincidence && bit.IsSet(statLYCInterrupt, g.statEnable) {
		g.mem.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	g.coincidence = match
}

func (g *GPU) swap() {
	g.front, g.back = g.back, g.front
	g.frames++
}

// SetControl applies an LCDC write.
func (g *GPU) SetControl(value byte) {
	next := DecodeLCDControl(value)

	switch {
	case g.control.Enabled && !next.Enabled:
		g.back.Fill(byte(White), byte(White), byte(White))
		g.line = 0
		g.dot = 0
		g.enableDelay = 0
		g.mode = HBlank
		g.coincidence = false
	case !g.control.Enabled && next.Enabled:
		g.line = 0
		g.dot = 0
		g.mode = HBlank
		g.enableDelay = lcdEnableDelay
	}

	g.control = next
}

// Control returns the decoded LCDC register.
func (g *GPU) Control() LCDControl {
	return g.control
}

// Status returns the STAT register value.
func (g *GPU) Status() byte {
	status := statUnusedReadMask | g.statEnable | byte(g.mode)
	return bit.SetTo(statCoincidence, status, g.coincidence)
}

// SetStatus applies a STAT write, only the interrupt selects are writable.
func (g *GPU) SetStatus(value byte) {
	g.statEnable = value & statWritableMask
}

// LY returns the current line.
func (g *GPU) LY() byte {
	return byte(g.line)
}

// SetLYC sets the compare line and checks it against LY immediately.
func (g *GPU) SetLYC(value byte) {
	g.lyc = value
	if g.control.Enabled && g.enableDelay == 0 {
		g.compareLY()
	}
}

// LYC returns the compare line.
func (g *GPU) LYC() byte {
	return g.lyc
}

// Mode returns the current state.
func (g *GPU) Mode() Mode {
	return g.mode
}

// HBlank reports whether the unit is in horizontal blank.
func (g *GPU) HBlank() bool {
	return g.mode == HBlank
}

// Frame returns the front buffer. It is not modified until the next swap.
func (g *GPU) Frame() *FrameBuffer {
	return g.front
}

// Frames returns the number of completed frames.
func (g *GPU) Frames() uint64 {
	return g.frames
}

// BGPalette returns the background color palette memory.
func (g *GPU) BGPalette() *ColorPalette {
	return &g.bgPalette
}

// OBJPalette returns the sprite color palette memory.
func (g *GPU) OBJPalette() *ColorPalette {
	return &g.objPalette
}
