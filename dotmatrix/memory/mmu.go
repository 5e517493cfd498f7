package memory

import (
	"fmt"

	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the device wired to SB/SC. Implementations only accept
// those two addresses.
type SerialPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
	Output() []byte
}

// VideoUnit is the PPU as the MMU sees it: the owner of the LCD register
// file and the authority on when VRAM and OAM are open to CPU traffic.
type VideoUnit interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
	CanAccessVRAM() bool
	CanAccessOAM() bool
}

// MMU routes every bus access to the region or peripheral that owns the
// address. Plain storage (VRAM, WRAM, OAM, HRAM) lives here; registers
// with behavior live with their owner and only the routing is here, so no
// hardware state exists twice.
type MMU struct {
	cart      *Cartridge
	regionMap [256]memRegion

	vram   [0x2000]uint8
	wram   [0x2000]uint8
	oam    [oamSize]uint8
	hram   [0x7F]uint8
	ioRegs [0x80]uint8 // unowned I/O addresses, including the audio stubs

	interrupts *InterruptController
	timer      *Timer
	dma        *DMA
	joypad     *Joypad
	serial     SerialPort
	video      VideoUnit
}

// New builds an MMU with no cartridge loaded, the equivalent of powering
// on without one in the slot.
func New() *MMU {
	m := &MMU{cart: NewCartridge()}
	m.interrupts = NewInterruptController()
	m.timer = NewTimer(m.interrupts)
	m.dma = newDMA(m)
	m.joypad = NewJoypad(m.interrupts)
	m.serial = serial.NewLogSink(func() { m.RequestInterrupt(addr.SerialInterrupt) })
	m.initRegionMap()
	return m
}

// NewWithCartridge builds an MMU serving the given cartridge.
func NewWithCartridge(cart *Cartridge) *MMU {
	m := New()
	m.cart = cart
	return m
}

func (m *MMU) initRegionMap() {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// AttachVideo wires the PPU in as owner of the LCD registers. Must happen
// before stepping; LCD addresses are dead until then.
func (m *MMU) AttachVideo(v VideoUnit) {
	m.video = v
}

// AttachSerial replaces the default serial sink.
func (m *MMU) AttachSerial(s SerialPort) {
	m.serial = s
}

// Interrupts exposes the interrupt controller for the CPU to consult.
func (m *MMU) Interrupts() *InterruptController {
	return m.interrupts
}

// SerialOutput returns everything the program has sent out the serial
// port, which is how test ROMs report their verdict.
func (m *MMU) SerialOutput() []byte {
	return m.serial.Output()
}

// RequestInterrupt marks an interrupt pending on behalf of a peripheral.
func (m *MMU) RequestInterrupt(kind addr.Interrupt) {
	m.interrupts.Request(kind)
}

// SetTimerSeed forces the timer's internal divider, for tests.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// Tick advances the peripherals the MMU owns.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	m.dma.Tick(cycles)
	m.serial.Tick(cycles)
}

// DMAActive reports whether an OAM DMA transfer is running.
func (m *MMU) DMAActive() bool {
	return m.dma.Active()
}

// HandleKeyPress forwards a key press to the joypad.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	m.joypad.Press(key)
}

// HandleKeyRelease forwards a key release to the joypad.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}

// Read serves a CPU bus read, with OAM closed during DMA and VRAM/OAM
// closed during the PPU modes that own them.
func (m *MMU) Read(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionVRAM:
		if m.video != nil && !m.video.CanAccessVRAM() {
			return 0xFF
		}
		return m.vram[address-0x8000]
	case regionOAM:
		if address > addr.OAMEnd {
			// 0xFEA0-0xFEFF is unusable.
			return 0xFF
		}
		if m.dma.Active() {
			return 0xFF
		}
		if m.video != nil && !m.video.CanAccessOAM() {
			return 0xFF
		}
		return m.oam[address-addr.OAMStart]
	default:
		return m.readRaw(address)
	}
}

// Write serves a CPU bus write under the same access rules as Read.
func (m *MMU) Write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.cart.WriteByte(address, value)
	case regionVRAM:
		if m.video != nil && !m.video.CanAccessVRAM() {
			return
		}
		m.vram[address-0x8000] = value
	case regionWRAM:
		m.wram[address-0xC000] = value
	case regionEcho:
		m.wram[address-0xE000] = value
	case regionOAM:
		if address > addr.OAMEnd {
			return
		}
		if m.dma.Active() {
			return
		}
		if m.video != nil && !m.video.CanAccessOAM() {
			return
		}
		m.oam[address-addr.OAMStart] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("unmapped write at 0x%04X", address))
	}
}

// readRaw reads without access gating. The DMA engine fetches its source
// bytes through this path.
func (m *MMU) readRaw(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.cart.ReadByte(address)
	case regionVRAM:
		return m.vram[address-0x8000]
	case regionWRAM:
		return m.wram[address-0xC000]
	case regionEcho:
		return m.wram[address-0xE000]
	case regionOAM:
		if address > addr.OAMEnd {
			return 0xFF
		}
		return m.oam[address-addr.OAMStart]
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("unmapped read at 0x%04X", address))
	}
}

func (m *MMU) dmaRead(address uint16) uint8 {
	return m.readRaw(address)
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.interrupts.ReadFlags()
	case address == addr.IE:
		return m.interrupts.ReadEnable()
	case address == addr.DMA:
		return m.dma.Register()
	case address >= addr.LCDC && address <= addr.WX:
		if m.video == nil {
			return 0xFF
		}
		return m.video.ReadRegister(address)
	case address >= 0xFF80:
		return m.hram[address-0xFF80]
	default:
		return m.ioRegs[address-0xFF00]
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.interrupts.WriteFlags(value)
	case address == addr.IE:
		m.interrupts.WriteEnable(value)
	case address == addr.DMA:
		m.dma.Start(value)
	case address >= addr.LCDC && address <= addr.WX:
		if m.video != nil {
			m.video.WriteRegister(address, value)
		}
	case address >= 0xFF80:
		m.hram[address-0xFF80] = value
	default:
		m.ioRegs[address-0xFF00] = value
	}
}

// ReadVRAM is the PPU's ungated window into VRAM.
func (m *MMU) ReadVRAM(address uint16) uint8 {
	return m.vram[address-0x8000]
}

// ReadOAM is the PPU's ungated window into OAM, by byte index.
func (m *MMU) ReadOAM(index int) uint8 {
	return m.oam[index]
}
