package dotmatrix

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

// Emulator is the surface a display backend drives: produce a frame,
// hand over the buffer, feed input back in.
type Emulator interface {
	RunUntilFrame()
	CurrentFrame() *video.FrameBuffer
	HandleKey(key memory.JoypadKey, pressed bool)
}

var _ Emulator = (*DMG)(nil)
