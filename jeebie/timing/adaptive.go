package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is the remaining wait below which the limiter busy-waits.
	spinThreshold = 2 * time.Millisecond
	// resyncThreshold is how far behind schedule a frame may fall before
	// the schedule restarts from now.
	resyncThreshold = 5 * time.Millisecond
	// driftCheckFrames is the interval between drift reports.
	driftCheckFrames = 60
)

// AdaptiveLimiter sleeps for most of the remaining frame time and spins for
// the rest. Frames that fall far behind restart the schedule instead of
// being caught up in a burst.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	started         time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{targetFrameTime: FrameDuration()}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	wait := a.nextFrameTime.Sub(now)

	switch {
	case wait > spinThreshold:
		time.Sleep(wait - time.Millisecond)
		a.spin()
	case wait > 0:
		a.spin()
	case wait < -resyncThreshold:
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%driftCheckFrames == 0 {
		elapsed := time.Since(a.started)
		fps := float64(a.frameCounter) / elapsed.Seconds()
		slog.Debug("frame pacing", "fps", fps, "target", TargetFPS())
	}
}

func (a *AdaptiveLimiter) spin() {
	for time.Now().Before(a.nextFrameTime) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.started = time.Now()
	a.nextFrameTime = a.started
	a.frameCounter = 0
}
