package addr

// Joypad and serial port registers.
const (
	// P1 selects and reads the joypad matrix. Bits 4-5 pick the nibble
	// (directions vs buttons), bits 0-3 read active-low key lines.
	P1 uint16 = 0xFF00
	// SB holds the byte shifted out (and in) by a serial transfer.
	SB uint16 = 0xFF01
	// SC controls serial transfers. Bit 7 starts one, bit 0 selects the
	// internal clock. Hardware clears bit 7 when the transfer completes.
	SC uint16 = 0xFF02
)

// Timer registers.
const (
	// DIV exposes the high byte of the 16-bit divider counter. Any write
	// resets the whole counter to zero.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter. Overflowing it requests the timer interrupt.
	TIMA uint16 = 0xFF05
	// TMA is the value reloaded into TIMA after an overflow.
	TMA uint16 = 0xFF06
	// TAC enables the timer (bit 2) and selects its rate (bits 0-1).
	TAC uint16 = 0xFF07
)

// Interrupt registers. Only bits 0-4 are wired; the rest read as 1.
const (
	// IF holds the requested (pending) interrupt bits.
	IF uint16 = 0xFF0F
	// IE holds the enabled interrupt bits.
	IE uint16 = 0xFFFF
)

// Audio registers. The core keeps plain storage for these so ROMs that
// program the APU read back sane values, but produces no sound.
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10
	NR11 uint16 = 0xFF11
	NR12 uint16 = 0xFF12
	NR13 uint16 = 0xFF13
	NR14 uint16 = 0xFF14
	NR21 uint16 = 0xFF16
	NR22 uint16 = 0xFF17
	NR23 uint16 = 0xFF18
	NR24 uint16 = 0xFF19
	NR30 uint16 = 0xFF1A
	NR31 uint16 = 0xFF1B
	NR32 uint16 = 0xFF1C
	NR33 uint16 = 0xFF1D
	NR34 uint16 = 0xFF1E
	NR41 uint16 = 0xFF20
	NR42 uint16 = 0xFF21
	NR43 uint16 = 0xFF22
	NR44 uint16 = 0xFF23
	NR50 uint16 = 0xFF24
	NR51 uint16 = 0xFF25
	NR52 uint16 = 0xFF26

	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// LCD registers.
const (
	// LCDC is the LCD control register: master enable plus layer and
	// addressing selects.
	LCDC uint16 = 0xFF40
	// STAT reports the LCD mode and LYC match, and enables STAT interrupt
	// sources. Bits 0-2 are read-only, bit 7 reads as 1.
	STAT uint16 = 0xFF41
	// SCY is the background vertical scroll.
	SCY uint16 = 0xFF42
	// SCX is the background horizontal scroll.
	SCX uint16 = 0xFF43
	// LY is the line currently being drawn (read-only).
	LY uint16 = 0xFF44
	// LYC is compared against LY for the STAT coincidence flag.
	LYC uint16 = 0xFF45
	// DMA starts an OAM DMA transfer from (value * 0x100).
	DMA uint16 = 0xFF46
	// BGP maps background color indices to shades.
	BGP uint16 = 0xFF47
	// OBP0 is the first sprite palette. Index 0 is transparent.
	OBP0 uint16 = 0xFF48
	// OBP1 is the second sprite palette. Index 0 is transparent.
	OBP1 uint16 = 0xFF49
	// WY is the window top edge.
	WY uint16 = 0xFF4A
	// WX is the window left edge plus 7.
	WX uint16 = 0xFF4B
)

// VRAM layout.
const (
	// TileData0 is the base of the unsigned tile data region.
	TileData0 uint16 = 0x8000
	// TileData1 is the base of the signed region's negative half.
	TileData1 uint16 = 0x8800
	// TileData2 is the base used for signed indices 0-127.
	TileData2 uint16 = 0x9000
	// TileMap0 is the first 32x32 background/window tile map.
	TileMap0 uint16 = 0x9800
	// TileMap1 is the second 32x32 background/window tile map.
	TileMap1 uint16 = 0x9C00
)

// OAM holds 40 sprite entries of 4 bytes each.
const (
	OAMStart uint16 = 0xFE00
	OAMEnd   uint16 = 0xFE9F
)

// Interrupt identifies one interrupt source as its bit in IF/IE.
type Interrupt uint8

const (
	// VBlankInterrupt is requested when the LCD enters the vertical blank.
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt is requested by an enabled STAT condition.
	LCDSTATInterrupt Interrupt = 1 << 1
	// TimerInterrupt is requested when TIMA overflows.
	TimerInterrupt Interrupt = 1 << 2
	// SerialInterrupt is requested when a serial transfer completes.
	SerialInterrupt Interrupt = 1 << 3
	// JoypadInterrupt is requested when a selected key line goes low.
	JoypadInterrupt Interrupt = 1 << 4
)
