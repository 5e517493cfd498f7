package video

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// gpuMode is the PPU state within a scanline. The values match the mode
// bits reported in STAT.
type gpuMode uint8

const (
	hblankMode gpuMode = iota
	vblankMode
	oamScanMode
	transferMode
)

const (
	oamScanDots      = 80
	baseTransferDots = 172
	lineDots         = 456

	// each sprite on a line stretches mode 3, up to a cap
	spritePenaltyDots = 6
	maxPenaltyDots    = 60

	visibleLines  = 144
	linesPerFrame = 154
)

// LCDC (LCD Control) register bits.
type lcdcFlag uint8

const (
	lcdEnable           lcdcFlag = 7 // 0 = LCD off, blank and open to the CPU
	windowTileMapSelect lcdcFlag = 6 // 0 = 0x9800, 1 = 0x9C00
	windowEnable        lcdcFlag = 5
	tileDataSelect      lcdcFlag = 4 // 0 = signed from 0x9000, 1 = unsigned from 0x8000
	bgTileMapSelect     lcdcFlag = 3 // 0 = 0x9800, 1 = 0x9C00
	spriteSizeSelect    lcdcFlag = 2 // 0 = 8x8, 1 = 8x16
	spriteEnable        lcdcFlag = 1
	bgAndWindowEnable   lcdcFlag = 0 // 0 = background and window blanked to white
)

// STAT interrupt source enable bits.
const (
	statHBlankSource = 3
	statVBlankSource = 4
	statOAMSource    = 5
	statLYCSource    = 6
)

// Bus is the memory access the PPU needs: ungated reads of VRAM and OAM,
// and the interrupt request line.
type Bus interface {
	ReadVRAM(address uint16) uint8
	ReadOAM(index int) uint8
	RequestInterrupt(kind addr.Interrupt)
}

// GPU is the pixel processing unit. It owns the LCD register file, walks
// the per-line mode sequence one dot per T-cycle, renders scanlines into
// a framebuffer, and raises the VBlank and STAT interrupts.
//
// Register reads and writes arrive through the MMU, which routes the
// 0xFF40-0xFF4B range here.
type GPU struct {
	bus         Bus
	framebuffer *FrameBuffer
	oam         *OAM

	mode gpuMode
	dot  int // position within the current line, 0-455

	lcdc uint8
	stat uint8 // interrupt source enables only, bits 3-6
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	wy   uint8
	wx   uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8

	// scroll registers as latched at line start, so mid-line writes only
	// affect the next line
	lineSCY uint8
	lineSCX uint8

	// windowLine counts lines the window actually rendered, which is why
	// hiding the window mid-frame resumes it where it left off
	windowLine int

	lineSprites  []Sprite
	transferDots int // mode 3 length for the current line

	// statLine is the level of the STAT interrupt line; the interrupt
	// fires on its rising edge only
	statLine bool

	frameReady bool
}

// NewGpu returns a GPU with the LCD off. Writing LCDC with bit 7 set
// starts the mode sequence.
func NewGpu(bus Bus) *GPU {
	return &GPU{
		bus:         bus,
		framebuffer: NewFrameBuffer(),
		oam:         NewOAM(bus),
	}
}

// Framebuffer returns the live frame being rendered into.
func (g *GPU) Framebuffer() *FrameBuffer {
	return g.framebuffer
}

// ConsumeFrameReady reports whether a frame completed since the last call
// and clears the latch.
func (g *GPU) ConsumeFrameReady() bool {
	ready := g.frameReady
	g.frameReady = false
	return ready
}

// CurrentLine returns LY, for host diagnostics.
func (g *GPU) CurrentLine() uint8 {
	return g.ly
}

// Tick advances the dot counter. With the LCD off the clock is stopped.
func (g *GPU) Tick(cycles int) {
	if !g.lcdOn() {
		return
	}

	g.dot += cycles

	// A large enough step can cross several boundaries at once.
	for {
		switch g.mode {
		case oamScanMode:
			if g.dot < oamScanDots {
				return
			}
			g.beginTransfer()
		case transferMode:
			if g.dot < oamScanDots+g.transferDots {
				return
			}
			g.renderScanline()
			g.mode = hblankMode
			g.updateStatLine()
		case hblankMode, vblankMode:
			if g.dot < lineDots {
				return
			}
			g.dot -= lineDots
			g.advanceLine()
		}
	}
}

func (g *GPU) lcdOn() bool {
	return bit.IsSet(uint8(lcdEnable), g.lcdc)
}

func (g *GPU) lcdcSet(flag lcdcFlag) bool {
	return bit.IsSet(uint8(flag), g.lcdc)
}

// startLine enters mode 2 and latches the scroll registers for the row.
func (g *GPU) startLine() {
	g.mode = oamScanMode
	g.lineSCY = g.scy
	g.lineSCX = g.scx
}

// beginTransfer enters mode 3. The OAM scan happens here, which also
// fixes this line's mode 3 length.
func (g *GPU) beginTransfer() {
	height := 8
	if g.lcdcSet(spriteSizeSelect) {
		height = 16
	}
	g.lineSprites = g.oam.CollectScanline(int(g.ly), height)

	penalty := len(g.lineSprites) * spritePenaltyDots
	if penalty > maxPenaltyDots {
		penalty = maxPenaltyDots
	}
	g.transferDots = baseTransferDots + penalty

	g.mode = transferMode
	g.updateStatLine()
}

func (g *GPU) advanceLine() {
	g.ly++

	switch {
	case g.ly == visibleLines:
		g.mode = vblankMode
		g.frameReady = true
		g.bus.RequestInterrupt(addr.VBlankInterrupt)
	case g.ly >= linesPerFrame:
		g.ly = 0
		g.windowLine = 0
		g.startLine()
	case g.ly < visibleLines:
		g.startLine()
	}

	g.updateStatLine()
}

// statLineLevel computes the current level of the STAT interrupt line:
// the OR of every enabled source whose condition holds.
func (g *GPU) statLineLevel() bool {
	if !g.lcdOn() {
		return false
	}

	level := false
	switch g.mode {
	case hblankMode:
		level = bit.IsSet(statHBlankSource, g.stat)
	case vblankMode:
		level = bit.IsSet(statVBlankSource, g.stat)
	case oamScanMode:
		level = bit.IsSet(statOAMSource, g.stat)
	}
	if g.ly == g.lyc && bit.IsSet(statLYCSource, g.stat) {
		level = true
	}
	return level
}

// updateStatLine resamples the STAT line and requests the interrupt on a
// rising edge. Must run after every mode or LY change and after writes
// that touch the source enables or LYC.
func (g *GPU) updateStatLine() {
	level := g.statLineLevel()
	if level && !g.statLine {
		g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	g.statLine = level
}

// ReadRegister serves CPU reads of the LCD register file.
func (g *GPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		return g.readSTAT()
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.ly
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	}
	return 0xFF
}

func (g *GPU) readSTAT() uint8 {
	value := 0x80 | g.stat | uint8(g.mode)
	if g.ly == g.lyc {
		value |= 0x04
	}
	return value
}

// WriteRegister serves CPU writes of the LCD register file.
func (g *GPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		g.writeLCDC(value)
	case addr.STAT:
		// only the source enables are writable
		g.stat = value & 0x78
		g.updateStatLine()
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.LY:
		// read only
	case addr.LYC:
		g.lyc = value
		g.updateStatLine()
	case addr.BGP:
		g.bgp = value
	case addr.OBP0:
		g.obp0 = value
	case addr.OBP1:
		g.obp1 = value
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	}
}

func (g *GPU) writeLCDC(value uint8) {
	wasOn := g.lcdOn()
	g.lcdc = value

	switch {
	case wasOn && !g.lcdOn():
		// The LCD freezes blank, fully open to the CPU.
		g.ly = 0
		g.dot = 0
		g.mode = hblankMode
		g.windowLine = 0
		g.statLine = false
		g.framebuffer.Fill(WhiteColor)
	case !wasOn && g.lcdOn():
		g.dot = 0
		g.startLine()
		g.updateStatLine()
	}
}

// CanAccessVRAM reports whether CPU reads and writes of VRAM go through.
// They are blocked during pixel transfer.
func (g *GPU) CanAccessVRAM() bool {
	return !g.lcdOn() || g.mode != transferMode
}

// CanAccessOAM reports whether CPU reads and writes of OAM go through.
// They are blocked during OAM scan and pixel transfer.
func (g *GPU) CanAccessOAM() bool {
	return !g.lcdOn() || (g.mode != oamScanMode && g.mode != transferMode)
}

// renderScanline composites background, window and sprites for line LY
// into the framebuffer. Runs once per line, at the end of mode 3.
func (g *GPU) renderScanline() {
	y := int(g.ly)

	// color indexes (0-3) of the background and window layer, kept
	// before palette mapping for the sprite priority check
	var row [FramebufferWidth]uint8

	if g.lcdcSet(bgAndWindowEnable) {
		g.drawBackgroundRow(y, &row)
		g.drawWindowRow(y, &row)
		for x := 0; x < FramebufferWidth; x++ {
			g.framebuffer.SetPixel(uint(x), uint(y), paletteShade(g.bgp, row[x]))
		}
	} else {
		for x := 0; x < FramebufferWidth; x++ {
			g.framebuffer.SetPixel(uint(x), uint(y), WhiteColor)
		}
	}

	if g.lcdcSet(spriteEnable) {
		g.drawSpriteRow(y, &row)
	}
}

func (g *GPU) drawBackgroundRow(y int, row *[FramebufferWidth]uint8) {
	mapBase := addr.TileMap0
	if g.lcdcSet(bgTileMapSelect) {
		mapBase = addr.TileMap1
	}

	mapY := (int(g.lineSCY) + y) & 0xFF
	for x := 0; x < FramebufferWidth; x++ {
		mapX := (int(g.lineSCX) + x) & 0xFF
		row[x] = g.tileMapPixel(mapBase, mapX, mapY)
	}
}

func (g *GPU) drawWindowRow(y int, row *[FramebufferWidth]uint8) {
	if !g.lcdcSet(windowEnable) || int(g.wy) > y {
		return
	}

	// WX holds the left edge plus 7
	origin := int(g.wx) - 7
	if origin >= FramebufferWidth {
		return
	}
	startX := origin
	if startX < 0 {
		startX = 0
	}

	mapBase := addr.TileMap0
	if g.lcdcSet(windowTileMapSelect) {
		mapBase = addr.TileMap1
	}

	mapY := g.windowLine & 0xFF
	for x := startX; x < FramebufferWidth; x++ {
		row[x] = g.tileMapPixel(mapBase, (x-origin)&0xFF, mapY)
	}

	g.windowLine++
}

// tileMapPixel resolves one pixel of a 256x256 tile map layer to its
// color index.
func (g *GPU) tileMapPixel(mapBase uint16, mapX, mapY int) uint8 {
	tileIndex := g.bus.ReadVRAM(mapBase + uint16((mapY/8)*32+mapX/8))
	tileRow := FetchTileRow(g.bus, g.tileRowAddress(tileIndex, mapY%8))
	return uint8(tileRow.GetPixel(mapX % 8))
}

// tileRowAddress resolves one row of background or window tile data per
// the LCDC addressing mode: unsigned indices from 0x8000, or signed
// indices from 0x9000.
func (g *GPU) tileRowAddress(tileIndex uint8, rowY int) uint16 {
	if g.lcdcSet(tileDataSelect) {
		return addr.TileData0 + uint16(tileIndex)*16 + uint16(rowY*2)
	}
	return uint16(int(addr.TileData2) + int(int8(tileIndex))*16 + rowY*2)
}

func (g *GPU) drawSpriteRow(y int, bgRow *[FramebufferWidth]uint8) {
	for i := range g.lineSprites {
		sprite := &g.lineSprites[i]

		rowY := y - sprite.Y
		if sprite.FlipY {
			rowY = sprite.Height - 1 - rowY
		}

		tileIndex := sprite.TileIndex
		if sprite.Height == 16 {
			// bit 0 is ignored, the halves are consecutive tiles
			tileIndex &^= 1
		}
		if rowY >= 8 {
			tileIndex++
			rowY -= 8
		}

		// sprites always use unsigned addressing
		rowAddr := addr.TileData0 + uint16(tileIndex)*16 + uint16(rowY*2)
		tileRow := FetchTileRow(g.bus, rowAddr)

		palette := g.obp0
		if sprite.PaletteOBP1 {
			palette = g.obp1
		}

		for pixelX := 0; pixelX < 8; pixelX++ {
			x := sprite.X + pixelX
			if x < 0 || x >= FramebufferWidth {
				continue
			}
			if !sprite.HasPriorityForPixel(pixelX) {
				continue
			}

			var colorIndex int
			if sprite.FlipX {
				colorIndex = tileRow.GetPixelFlipped(pixelX)
			} else {
				colorIndex = tileRow.GetPixel(pixelX)
			}
			if colorIndex == 0 {
				// color 0 is transparent for sprites
				continue
			}
			if sprite.BehindBG && bgRow[x] != 0 {
				continue
			}

			g.framebuffer.SetPixel(uint(x), uint(y), paletteShade(palette, uint8(colorIndex)))
		}
	}
}
