// Package timing holds the machine's clock constants and the frame
// pacing used by interactive backends.
package timing

import "time"

// Machine clock constants.
const (
	// CPUFrequency is the DMG clock in T-cycles per second.
	CPUFrequency = 4194304
	// CyclesPerFrame is the T-cycle length of one full frame, 154 lines
	// of 456 dots.
	CyclesPerFrame = 70224
)

// TargetFPS is the exact hardware frame rate, ~59.73 Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration returns the wall-clock length of one frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces the emulation loop at the hardware frame rate.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. Returns
	// immediately when the loop is behind schedule.
	WaitForNextFrame()

	// Reset discards accumulated timing state, useful after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless and
// turbo runs.
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// TickerLimiter paces frames with a time.Ticker. Simple and steady;
// jitter within a frame does not accumulate because the ticker keeps
// absolute time.
type TickerLimiter struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

func NewTickerLimiter() *TickerLimiter {
	ticker := time.NewTicker(FrameDuration())
	return &TickerLimiter{
		ticker: ticker,
		ch:     ticker.C,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the ticker. The limiter must not be used afterwards.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
