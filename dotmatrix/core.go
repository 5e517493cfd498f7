// Package dotmatrix emulates the original Game Boy (DMG): an LR35902
// CPU, interrupt controller, timer, OAM DMA engine and pixel processing
// unit, all stepped against a shared memory bus by a single loop.
package dotmatrix

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/beeks/go-dotmatrix/dotmatrix/cpu"
	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/beeks/go-dotmatrix/dotmatrix/timing"
	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

// DMG is one emulated machine. A host drives it by calling
// RunUntilFrame in a loop and pacing itself; the core imposes no timing
// of its own.
type DMG struct {
	bus  *Bus
	cart *memory.Cartridge

	frames       uint64
	instructions uint64
	faultLogged  bool
}

// New builds a machine with nothing in the cartridge slot.
func New() *DMG {
	return NewWithCartridge(memory.NewCartridge())
}

// NewWithCartridge builds a machine around a loaded cartridge.
func NewWithCartridge(cart *memory.Cartridge) *DMG {
	return &DMG{
		bus:  NewBus(memory.NewWithCartridge(cart)),
		cart: cart,
	}
}

// NewWithFile reads a ROM image from disk and builds a machine for it.
func NewWithFile(path string) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}
	slog.Info("read ROM image", "path", path, "bytes", len(data))
	return NewWithCartridge(memory.NewCartridgeWithData(data)), nil
}

// Step executes one instruction (or interrupt dispatch) and advances
// every peripheral by its cost. Returns the T-cycles consumed.
func (d *DMG) Step() int {
	cycles := d.bus.TickInstruction()
	d.instructions++

	if !d.faultLogged && d.bus.CPU.IsLocked() {
		// The machine keeps running so the host can inspect it; the
		// lockup itself is reported once.
		d.faultLogged = true
		slog.Error("CPU locked up on an undefined opcode",
			"pc", fmt.Sprintf("0x%04X", d.bus.CPU.GetPC()),
			"opcode", cpu.GetOpcodeName(d.bus.CPU))
	}

	return cycles
}

// RunUntilFrame steps the machine until the GPU completes a frame. With
// the LCD switched off no frame ever completes, so after one frame's
// worth of cycles it returns anyway, keeping the host loop paced.
func (d *DMG) RunUntilFrame() {
	budget := timing.CyclesPerFrame
	for budget > 0 {
		budget -= d.Step()
		if d.bus.GPU.ConsumeFrameReady() {
			break
		}
	}
	d.frames++
}

// CurrentFrame returns the frame buffer the GPU renders into.
func (d *DMG) CurrentFrame() *video.FrameBuffer {
	return d.bus.GPU.Framebuffer()
}

// HandleKey presses or releases one joypad key.
func (d *DMG) HandleKey(key memory.JoypadKey, pressed bool) {
	if pressed {
		d.bus.MMU.HandleKeyPress(key)
	} else {
		d.bus.MMU.HandleKeyRelease(key)
	}
}

// SerialOutput returns everything the program has sent out the serial
// port. Hardware test ROMs report their verdict this way.
func (d *DMG) SerialOutput() []byte {
	return d.bus.MMU.SerialOutput()
}

// Faulted reports whether an undefined opcode locked the CPU. The rest
// of the machine keeps running; the fault is permanent.
func (d *DMG) Faulted() bool {
	return d.bus.CPU.IsLocked()
}

// Title returns the loaded cartridge's header title.
func (d *DMG) Title() string {
	return d.cart.Title()
}

// FrameCount returns the number of completed RunUntilFrame calls.
func (d *DMG) FrameCount() uint64 {
	return d.frames
}

// InstructionCount returns the number of CPU steps executed.
func (d *DMG) InstructionCount() uint64 {
	return d.instructions
}

// Cycles returns the total T-cycles the machine has run.
func (d *DMG) Cycles() uint64 {
	return d.bus.CPU.GetCycles()
}
