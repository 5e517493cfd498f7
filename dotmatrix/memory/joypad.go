package memory

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// JoypadKey identifies one physical key.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad owns the P1 register. Key lines are active low and grouped into a
// direction nibble and a button nibble; P1 bits 4-5 (also active low)
// select which group the low nibble reads. Pressing a key whose group is
// selected pulls its line low and requests the joypad interrupt.
type Joypad struct {
	dpad    uint8 // right, left, up, down in bits 0-3
	buttons uint8 // a, b, select, start in bits 0-3
	sel     uint8 // P1 bits 4-5 as last written
	irq     *InterruptController
}

func NewJoypad(irq *InterruptController) *Joypad {
	return &Joypad{
		dpad:    0x0F,
		buttons: 0x0F,
		irq:     irq,
	}
}

// Read assembles P1. Unwired bits 6-7 read 1; when both groups are
// selected the nibbles are ANDed together, as the matrix does.
func (j *Joypad) Read() uint8 {
	lines := uint8(0x0F)
	if !bit.IsSet(4, j.sel) {
		lines &= j.dpad
	}
	if !bit.IsSet(5, j.sel) {
		lines &= j.buttons
	}
	return 0xC0 | j.sel | lines
}

// Write stores the group select bits. The key lines are read only.
func (j *Joypad) Write(value uint8) {
	j.sel = value & 0x30
}

// Press pulls a key line low, requesting the joypad interrupt on the
// falling edge if the key's group is selected.
func (j *Joypad) Press(key JoypadKey) {
	group, index := j.locate(key)
	wasHigh := bit.IsSet(index, *group)
	*group = bit.Clear(index, *group)

	selBit := uint8(4)
	if group == &j.buttons {
		selBit = 5
	}
	if wasHigh && !bit.IsSet(selBit, j.sel) {
		j.irq.Request(addr.JoypadInterrupt)
	}
}

// Release lets a key line float back high.
func (j *Joypad) Release(key JoypadKey) {
	group, index := j.locate(key)
	*group = bit.Set(index, *group)
}

func (j *Joypad) locate(key JoypadKey) (*uint8, uint8) {
	if key <= JoypadDown {
		return &j.dpad, uint8(key)
	}
	return &j.buttons, uint8(key - JoypadA)
}
