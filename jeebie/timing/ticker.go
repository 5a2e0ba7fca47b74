package timing

import "time"

// TickerLimiter paces frames with a time.Ticker. Missed ticks are dropped,
// so a slow frame never causes a burst of fast ones.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the ticker.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
