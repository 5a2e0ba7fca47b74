package timing

import (
	"time"

	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// CyclesPerFrame is the length of a frame in machine cycles and
// CycleFrequency the machine cycle rate at normal speed.
const (
	CyclesPerFrame = video.CyclesPerFrame
	CycleFrequency = 1 << 20
)

// TargetFPS calculates the exact refresh rate of the LCD.
func TargetFPS() float64 {
	return float64(CycleFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
