package memory

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
)

// interruptMask covers the five wired interrupt bits in IF and IE.
const interruptMask = 0x1F

// InterruptController is the single owner of the IF and IE registers.
// Peripherals request interrupts through it, the MMU routes reads and
// writes of 0xFF0F/0xFFFF to it, and the CPU consults it when deciding
// whether to dispatch. The unwired upper three bits read as 1.
type InterruptController struct {
	flags   uint8 // IF, requested interrupts
	enabled uint8 // IE, permitted interrupts
}

func NewInterruptController() *InterruptController {
	// VBlank is already pending right after the boot ROM hands over.
	return &InterruptController{flags: uint8(addr.VBlankInterrupt)}
}

// Request marks an interrupt as pending.
func (ic *InterruptController) Request(kind addr.Interrupt) {
	ic.flags |= uint8(kind)
}

// Acknowledge clears a pending interrupt, done by the CPU at dispatch.
func (ic *InterruptController) Acknowledge(kind addr.Interrupt) {
	ic.flags &^= uint8(kind)
}

// Pending reports whether any requested interrupt is also enabled. This is
// the HALT wake condition and is independent of IME.
func (ic *InterruptController) Pending() bool {
	return ic.flags&ic.enabled&interruptMask != 0
}

// Next returns the highest priority interrupt that is both requested and
// enabled. Priority follows bit order, lowest bit first.
func (ic *InterruptController) Next() (addr.Interrupt, bool) {
	masked := ic.flags & ic.enabled & interruptMask
	for i := uint8(0); i < 5; i++ {
		if masked&(1<<i) != 0 {
			return addr.Interrupt(1 << i), true
		}
	}
	return 0, false
}

// ReadFlags returns the IF register as the CPU sees it.
func (ic *InterruptController) ReadFlags() uint8 {
	return ic.flags | ^uint8(interruptMask)
}

// WriteFlags replaces the requested bits. Only the low five bits stick.
func (ic *InterruptController) WriteFlags(value uint8) {
	ic.flags = value & interruptMask
}

// ReadEnable returns the IE register as the CPU sees it.
func (ic *InterruptController) ReadEnable() uint8 {
	return ic.enabled | ^uint8(interruptMask)
}

// WriteEnable replaces the enabled bits. Only the low five bits stick.
func (ic *InterruptController) WriteEnable(value uint8) {
	ic.enabled = value & interruptMask
}
