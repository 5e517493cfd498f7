package memory

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// tacBit maps the TAC clock select (bits 1-0) to the divider counter bit
// whose falling edge clocks TIMA:
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacBit = [4]uint8{9, 3, 5, 7}

// divSeed is the divider value at the end of the DMG boot ROM.
const divSeed = 0xABCC

// Timer owns DIV, TIMA, TMA and TAC. TIMA is clocked by falling edges of
// (selected divider bit AND enable), which is what makes DIV and TAC writes
// able to tick it spuriously. See https://gbdev.io/pandocs/Timer_Obscure_Behaviour.html
type Timer struct {
	counter      uint16 // internal divider, DIV is the high byte
	lastSignal   bool   // previous value of the TIMA clock signal
	overflowWait int    // T-cycles until the pending TMA reload lands
	irqDelay     bool   // interrupt fires one T-cycle after the reload

	tima uint8
	tma  uint8
	tac  uint8

	irq *InterruptController
}

func NewTimer(irq *InterruptController) *Timer {
	return &Timer{counter: divSeed, irq: irq}
}

// SetSeed forces the divider counter, clearing any pending overflow.
func (t *Timer) SetSeed(seed uint16) {
	t.counter = seed
	t.lastSignal = false
	t.overflowWait = 0
	t.irqDelay = false
}

// Tick advances the divider one T-cycle at a time.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if t.irqDelay {
			t.irq.Request(addr.TimerInterrupt)
			t.irqDelay = false
		}

		t.counter++

		if t.overflowWait > 0 {
			// TIMA reads 0x00 in here. The reload lands when the wait
			// runs out, the interrupt one cycle later.
			t.overflowWait--
			if t.overflowWait == 0 {
				t.tima = t.tma
				t.irqDelay = true
			}
			continue
		}

		t.detectEdge()
	}
}

// detectEdge samples the TIMA clock signal and increments on a falling edge.
func (t *Timer) detectEdge() {
	signal := bit.IsSet(2, t.tac) && bit.IsSet16(tacBit[t.tac&0x03], t.counter)
	if t.lastSignal && !signal {
		t.incrementTIMA()
	}
	t.lastSignal = signal
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.overflowWait = 4
	}
	t.tima++
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return bit.High(t.counter)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		// Any write zeroes the whole counter. Re-sampling the clock signal
		// here is what produces the spurious TIMA tick when the selected
		// bit was high.
		t.counter = 0
		t.detectEdge()
	case addr.TIMA:
		if t.overflowWait > 0 {
			// Writing inside the reload window cancels the reload and
			// the interrupt.
			t.overflowWait = 0
		}
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
		t.detectEdge()
	}
}
