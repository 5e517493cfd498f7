package dotmatrix

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/cpu"
	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

// Bus assembles the CPU, the MMU with its peripherals, and the GPU into
// one machine and advances them in lockstep.
type Bus struct {
	CPU *cpu.CPU
	MMU *memory.MMU
	GPU *video.GPU
}

// NewBus wires a machine around the given MMU. The GPU is attached
// before the CPU comes up so that the post-boot LCD register writes
// land with their owner.
func NewBus(mmu *memory.MMU) *Bus {
	b := &Bus{MMU: mmu}
	b.GPU = video.NewGpu(mmu)
	mmu.AttachVideo(b.GPU)
	b.CPU = cpu.New(mmu, mmu.Interrupts())
	return b
}

// Read serves a bus read with every access rule applied.
func (b *Bus) Read(address uint16) uint8 {
	return b.MMU.Read(address)
}

// Write serves a bus write with every access rule applied.
func (b *Bus) Write(address uint16, value uint8) {
	b.MMU.Write(address, value)
}

// RequestInterrupt marks an interrupt pending.
func (b *Bus) RequestInterrupt(kind addr.Interrupt) {
	b.MMU.RequestInterrupt(kind)
}

// TickInstruction runs one CPU step and advances the rest of the
// machine by its cost. The order is fixed: the instruction completes
// with all of its bus side effects, then the timer, DMA engine and
// serial port catch up, then the GPU. Interrupt bits raised by the
// peripherals become visible to the CPU at its next step boundary.
// Returns the T-cycles consumed.
func (b *Bus) TickInstruction() int {
	cycles := b.CPU.Tick()
	b.MMU.Tick(cycles)
	b.GPU.Tick(cycles)
	return cycles
}
