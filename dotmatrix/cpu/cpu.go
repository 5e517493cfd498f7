package cpu

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// Bus is the CPU's window onto the memory map.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// InterruptSource answers the CPU's questions about pending interrupts.
// The interrupt controller implements it.
type InterruptSource interface {
	Pending() bool
	Next() (addr.Interrupt, bool)
	Acknowledge(kind addr.Interrupt)
}

// Flag is one of the four condition flags in the high nibble of F.
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const baseInterruptAddress uint16 = 0x40

// dispatchCycles is the cost of jumping into an interrupt handler.
const dispatchCycles = 20

// CPU interprets the LR35902 instruction set against a register file and
// the bus. One call to Tick runs one instruction or one interrupt dispatch
// and reports its cost in T-cycles.
type CPU struct {
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	interruptsEnabled bool
	eiPending         bool // EI lands after the following instruction
	currentOpcode     uint16
	halted            bool
	stopped           bool
	locked            bool // an undefined opcode froze the CPU
	cycles            uint64

	// haltBug makes the next instruction skip its first PC increment, so
	// the byte after HALT is fetched twice. Set when HALT runs with IME
	// clear and an interrupt already pending.
	haltBug bool

	bus        Bus
	interrupts InterruptSource
}

// initializeMemory writes the I/O register values the boot ROM leaves
// behind, so ROMs that skip initialization still behave.
func initializeMemory(bus Bus) {
	bus.Write(addr.P1, 0xCF)
	bus.Write(addr.SB, 0x00)
	bus.Write(addr.SC, 0x7E)
	bus.Write(addr.TIMA, 0x00)
	bus.Write(addr.TMA, 0x00)
	bus.Write(addr.TAC, 0xF8)
	bus.Write(addr.IF, 0xE1)
	bus.Write(addr.LCDC, 0x91)
	bus.Write(addr.SCY, 0x00)
	bus.Write(addr.SCX, 0x00)
	bus.Write(addr.LYC, 0x00)
	bus.Write(addr.BGP, 0xFC)
	bus.Write(addr.OBP0, 0xFF)
	bus.Write(addr.OBP1, 0xFF)
	bus.Write(addr.WY, 0x00)
	bus.Write(addr.WX, 0x00)
	bus.Write(addr.IE, 0x00)

	bus.Write(addr.NR10, 0x80)
	bus.Write(addr.NR11, 0xBF)
	bus.Write(addr.NR12, 0xF3)
	bus.Write(addr.NR14, 0xBF)
	bus.Write(addr.NR21, 0x3F)
	bus.Write(addr.NR22, 0x00)
	bus.Write(addr.NR24, 0xBF)
	bus.Write(addr.NR30, 0x7F)
	bus.Write(addr.NR31, 0xFF)
	bus.Write(addr.NR32, 0x9F)
	bus.Write(addr.NR33, 0xBF)
	bus.Write(addr.NR41, 0xFF)
	bus.Write(addr.NR42, 0x00)
	bus.Write(addr.NR43, 0x00)
	bus.Write(addr.NR44, 0xBF)
	bus.Write(addr.NR50, 0x77)
	bus.Write(addr.NR51, 0xF3)
	bus.Write(addr.NR52, 0xF1)
}

// New returns a CPU in the documented post-boot state.
func New(bus Bus, interrupts InterruptSource) *CPU {
	initializeMemory(bus)

	c := &CPU{
		bus:        bus,
		interrupts: interrupts,
	}

	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100

	return c
}

// Tick runs one step: an interrupt dispatch, a halted idle cycle, or one
// instruction. Returns the T-cycles consumed.
func (c *CPU) Tick() int {
	if c.locked {
		// A frozen CPU still lets the clock run the peripherals.
		c.cycles += 4
		return 4
	}

	if c.halted || c.stopped {
		// Waking needs a requested and enabled interrupt, IME does not
		// matter. Without one the core idles.
		if !c.interrupts.Pending() {
			c.cycles += 4
			return 4
		}
		c.halted = false
		c.stopped = false
	}

	if cycles := c.handleInterrupts(); cycles > 0 {
		c.cycles += uint64(cycles)
		return cycles
	}

	// Snapshot the EI latch: it applies after this instruction, and only
	// if the instruction itself (DI) did not kill it.
	applyEI := c.eiPending

	instruction := Decode(c)

	skipFirstPCInc := c.haltBug
	if !skipFirstPCInc {
		c.pc++
	}
	if bit.High(c.currentOpcode) == 0xCB {
		c.pc++
	}

	cycles := instruction(c)
	c.cycles += uint64(cycles)

	if skipFirstPCInc {
		c.haltBug = false
	}

	if applyEI && c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	return cycles
}

// handleInterrupts dispatches the highest priority pending interrupt when
// IME allows it. Returns the dispatch cost, or 0 when nothing fired.
func (c *CPU) handleInterrupts() int {
	if !c.interruptsEnabled {
		return 0
	}
	kind, ok := c.interrupts.Next()
	if !ok {
		return 0
	}

	c.interruptsEnabled = false
	c.interrupts.Acknowledge(kind)
	c.pushStack(c.pc)
	c.pc = interruptVector(kind)

	return dispatchCycles
}

// interruptVector maps an interrupt to its fixed handler address.
func interruptVector(kind addr.Interrupt) uint16 {
	switch kind {
	case addr.VBlankInterrupt:
		return baseInterruptAddress
	case addr.LCDSTATInterrupt:
		return baseInterruptAddress + 0x08
	case addr.TimerInterrupt:
		return baseInterruptAddress + 0x10
	case addr.SerialInterrupt:
		return baseInterruptAddress + 0x18
	case addr.JoypadInterrupt:
		return baseInterruptAddress + 0x20
	}
	panic("no vector for interrupt")
}

// lockUp freezes the CPU on an undefined opcode. PC rolls back to point at
// the offending byte so the host can report it.
func (c *CPU) lockUp() {
	c.locked = true
	c.pc--
}

// readImmediate reads the operand byte at PC and advances past it.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord reads the two operand bytes at PC, little endian, and
// advances past them.
func (c *CPU) readImmediateWord() uint16 {
	low := c.bus.Read(c.pc)
	high := c.bus.Read(c.pc + 1)
	c.pc += 2
	return bit.Combine(high, low)
}

// readSignedImmediate reads the operand byte at PC as a signed offset.
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	high := c.bus.Read(c.sp + 1)
	c.sp += 2
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit returns 1 when the flag is set, 0 otherwise.
func (c CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// the low nibble of F does not exist in silicon
	c.f = bit.Low(value) & 0xF0
}

func (c CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// GetPC returns the program counter, for host diagnostics.
func (c *CPU) GetPC() uint16 { return c.pc }

// GetCycles returns the total T-cycles executed so far.
func (c *CPU) GetCycles() uint64 { return c.cycles }

// GetIME reports whether interrupt dispatch is enabled.
func (c *CPU) GetIME() bool { return c.interruptsEnabled }

// IsHalted reports whether the CPU is parked in HALT or STOP.
func (c *CPU) IsHalted() bool { return c.halted || c.stopped }

// IsLocked reports whether an undefined opcode froze the CPU. The locked
// PC points at the offending byte.
func (c *CPU) IsLocked() bool { return c.locked }
