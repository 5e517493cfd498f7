package memory

// oamSize is the number of bytes moved by one OAM DMA transfer.
const oamSize = 160

// cyclesPerByte is the T-cycle cost of each copied byte, one machine cycle.
const cyclesPerByte = 4

// DMA owns the 0xFF46 register and performs the OAM DMA transfer it
// triggers: 160 bytes from (value * 0x100) into OAM, one byte per machine
// cycle. While a transfer runs the MMU blocks CPU access to OAM; the DMA
// itself reads the source through an unrestricted path. Completion raises
// no interrupt.
type DMA struct {
	mmu    *MMU
	reg    uint8 // last value written, reads back at 0xFF46
	source uint16
	index  int
	wait   int
	active bool
}

func newDMA(mmu *MMU) *DMA {
	return &DMA{mmu: mmu}
}

// Start latches the source page and arms the transfer. Writing while a
// transfer is running restarts it from the new source.
func (d *DMA) Start(value uint8) {
	d.reg = value
	d.source = uint16(value) << 8
	d.index = 0
	d.wait = cyclesPerByte
	d.active = true
}

// Tick advances the transfer. Each byte lands after four T-cycles, so a
// full transfer occupies 640 T-cycles.
func (d *DMA) Tick(cycles int) {
	if !d.active {
		return
	}
	for i := 0; i < cycles; i++ {
		d.wait--
		if d.wait > 0 {
			continue
		}
		d.mmu.oam[d.index] = d.mmu.dmaRead(d.source + uint16(d.index))
		d.index++
		d.wait = cyclesPerByte
		if d.index == oamSize {
			d.active = false
			return
		}
	}
}

// Active reports whether a transfer is in flight, which is when the MMU
// turns CPU traffic to OAM away.
func (d *DMA) Active() bool {
	return d.active
}

// Register returns the value readable at 0xFF46.
func (d *DMA) Register() uint8 {
	return d.reg
}
