// Package backend defines the host platform surface: something that can
// show frames and feed key events back into the machine.
package backend

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

// Backend is a complete host platform for the emulator. Backends render
// frames to their specific output (terminal cells, files, nothing at
// all) and translate platform input into joypad keys.
type Backend interface {
	// Init configures the backend. Required before the first Update.
	Init(config Config) error

	// Update renders one frame and processes any pending platform
	// events, reporting them through the configured callbacks.
	Update(frame *video.FrameBuffer) error

	// Cleanup releases platform resources on shutdown.
	Cleanup() error
}

// Config holds backend configuration.
type Config struct {
	Title     string
	Callbacks Callbacks
}

// Callbacks let a backend talk back to the loop that drives it.
type Callbacks struct {
	// OnQuit is called when the backend wants the emulator to stop
	// (quit key, signal, frame budget reached).
	OnQuit func()

	// OnKey reports a joypad key going down or up.
	OnKey func(key memory.JoypadKey, pressed bool)
}
