package video

const (
	// FramebufferWidth is the LCD width in pixels.
	FramebufferWidth = 160
	// FramebufferHeight is the LCD height in pixels.
	FramebufferHeight = 144
	// BytesPerPixel is the framebuffer stride of a pixel (R, G, B).
	BytesPerPixel = 3
)

// Shade is one of the four gray levels of the monochrome LCD.
type Shade byte

const (
	White     Shade = 0xFF
	LightGrey Shade = 0x98
	DarkGrey  Shade = 0x4C
	Black     Shade = 0x00
)

// legacyShades maps a palette color number to its gray level.
var legacyShades = [4]Shade{White, LightGrey, DarkGrey, Black}

// FrameBuffer holds one frame as row-major RGB bytes.
type FrameBuffer struct {
	pixels [FramebufferWidth * FramebufferHeight * BytesPerPixel]byte
}

// NewFrameBuffer returns a white frame buffer.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Fill(byte(White), byte(White), byte(White))
	return fb
}

// SetPixel stores an RGB triplet at (x, y).
func (fb *FrameBuffer) SetPixel(x, y int, r, g, b byte) {
	i := (y*FramebufferWidth + x) * BytesPerPixel
	fb.pixels[i] = r
	fb.pixels[i+1] = g
	fb.pixels[i+2] = b
}

// Pixel returns the RGB triplet at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) (r, g, b byte) {
	i := (y*FramebufferWidth + x) * BytesPerPixel
	return fb.pixels[i], fb.pixels[i+1], fb.pixels[i+2]
}

// Fill sets every pixel to the same color.
func (fb *FrameBuffer) Fill(r, g, b byte) {
	for i := 0; i < len(fb.pixels); i += BytesPerPixel {
		fb.pixels[i] = r
		fb.pixels[i+1] = g
		fb.pixels[i+2] = b
	}
}

// Bytes returns the underlying pixel data. Callers must not modify it.
func (fb *FrameBuffer) Bytes() []byte {
	return fb.pixels[:]
}
