package render

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/memory"
	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

// Pattern names a generated test image.
type Pattern int

const (
	Checkerboard Pattern = iota
	Gradient
	Stripes
	Diagonal
	patternCount
)

func (p Pattern) String() string {
	return [...]string{"checkerboard", "gradient", "stripes", "diagonal"}[p]
}

const (
	checkerboardTileSize = 8
	stripeWidth          = 4
	diagonalTileSize     = 8
	animationFrames      = 30

	stripeAnimationSpeed   = 2
	diagonalAnimationSpeed = 4
)

// TestPattern is a frame source drawing generated images instead of running
// a machine. It checks the display pipeline without a ROM. Pressing Select
// cycles the pattern.
type TestPattern struct {
	fb      *video.FrameBuffer
	pattern Pattern
	frames  int
}

// NewTestPattern returns a source showing pattern.
func NewTestPattern(pattern Pattern) *TestPattern {
	p := &TestPattern{fb: video.NewFrameBuffer(), pattern: pattern % patternCount}
	p.draw()
	return p
}

// RunUntilFrame advances the animation by one frame.
func (p *TestPattern) RunUntilFrame() error {
	p.frames++
	if p.frames%animationFrames == 0 {
		p.draw()
	}
	return nil
}

func (p *TestPattern) Frame() *video.FrameBuffer {
	return p.fb
}

// Press switches to the next pattern on Select.
func (p *TestPattern) Press(key memory.JoypadKey) {
	if key != memory.JoypadSelect {
		return
	}
	p.pattern = (p.pattern + 1) % patternCount
	p.draw()
}

func (p *TestPattern) Release(memory.JoypadKey) {}

// Pattern returns the pattern on screen.
func (p *TestPattern) Pattern() Pattern {
	return p.pattern
}

func (p *TestPattern) draw() {
	step := p.frames / animationFrames
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			v := p.shadeAt(x, y, step)
			p.fb.SetPixel(x, y, v, v, v)
		}
	}
}

func (p *TestPattern) shadeAt(x, y, step int) byte {
	switch p.pattern {
	case Checkerboard:
		return pick((x/checkerboardTileSize+y/checkerboardTileSize)%2 == 0, video.White, video.Black)
	case Gradient:
		return byte(x * 0xFF / (video.FramebufferWidth - 1))
	case Stripes:
		return pick(((x+step*stripeAnimationSpeed)/stripeWidth)%2 == 0, video.White, video.DarkGrey)
	}
	return pick(((x+y+step*diagonalAnimationSpeed)/diagonalTileSize)%2 == 0, video.LightGrey, video.DarkGrey)
}

func pick(cond bool, a, b video.Shade) byte {
	if cond {
		return byte(a)
	}
	return byte(b)
}
