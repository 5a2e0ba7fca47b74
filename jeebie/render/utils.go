package render

import "github.com/valerio/go-jeebie-cgb/jeebie/video"

// Shade levels, darkest first.
const (
	ShadeBlack = iota
	ShadeDark
	ShadeLight
	ShadeWhite
)

// PixelToShade buckets an RGB pixel into one of four gray levels using its
// luma. The legacy palette grays map onto their own level.
func PixelToShade(r, g, b byte) int {
	luma := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	switch {
	case luma < 0x26:
		return ShadeBlack
	case luma < 0x72:
		return ShadeDark
	case luma < 0xCC:
		return ShadeLight
	}
	return ShadeWhite
}

// GetHalfBlockChar returns the character drawing two vertically stacked
// pixels in one text cell: a full block when both match, otherwise the
// upper half block with the top shade as foreground.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == ShadeWhite:
		return '▄'
	}
	return '▀'
}

// RenderFrameToHalfBlocks converts a frame to text, one string per pair of
// pixel rows.
func RenderFrameToHalfBlocks(frame *video.FrameBuffer) []string {
	lines := make([]string, 0, (video.FramebufferHeight+1)/2)

	for y := 0; y < video.FramebufferHeight; y += 2 {
		line := make([]rune, video.FramebufferWidth)
		for x := range line {
			top := PixelToShade(frame.Pixel(x, y))
			bottom := ShadeWhite
			if y+1 < video.FramebufferHeight {
				bottom = PixelToShade(frame.Pixel(x, y+1))
			}
			line[x] = GetHalfBlockChar(top, bottom)
		}
		lines = append(lines, string(line))
	}

	return lines
}
