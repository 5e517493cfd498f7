package video

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// maxSpritesPerLine is the hardware cap on sprites drawn per scanline.
const maxSpritesPerLine = 10

// spriteCount is the number of entries in OAM.
const spriteCount = 40

// Sprite is one OAM entry with its attribute flags parsed out. X and Y are
// screen coordinates with the hardware offsets (+8, +16) already removed,
// so both can be negative for partially off-screen sprites.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int // 8 or 16, from LCDC bit 2

	PaletteOBP1 bool // attribute bit 4: false = OBP0, true = OBP1
	FlipX       bool
	FlipY       bool
	BehindBG    bool // attribute bit 7: yields to background colors 1-3

	// PixelMask marks the pixels this sprite owns after priority
	// resolution. Bit 7 is the leftmost pixel.
	PixelMask uint8
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// HasPriorityForPixel reports whether this sprite owns its pixel at
// pixelX (0-7, leftmost first).
func (s *Sprite) HasPriorityForPixel(pixelX int) bool {
	if pixelX < 0 || pixelX > 7 {
		return false
	}
	return s.PixelMask&(1<<(7-pixelX)) != 0
}

// OAMSource is read access to sprite attribute memory, by byte index.
type OAMSource interface {
	ReadOAM(index int) uint8
}

// OAM scans object attribute memory for the sprites on a scanline and
// resolves their pixel ownership.
type OAM struct {
	src            OAMSource
	priorityBuffer SpritePriorityBuffer
	spriteBuffer   [maxSpritesPerLine]Sprite
}

func NewOAM(src OAMSource) *OAM {
	return &OAM{src: src}
}

// CollectScanline returns the sprites overlapping a scanline, in OAM
// order, capped at the hardware limit of 10. Each sprite's PixelMask is
// set from sprite-to-sprite priority, lowest X first and the lower OAM
// index winning ties. The returned slice is valid until the next call.
func (o *OAM) CollectScanline(line, height int) []Sprite {
	sprites := o.spriteBuffer[:0]
	o.priorityBuffer.Clear()

	for i := 0; i < spriteCount && len(sprites) < maxSpritesPerLine; i++ {
		base := i * 4

		spriteY := int(o.src.ReadOAM(base)) - 16
		if line < spriteY || line >= spriteY+height {
			continue
		}

		sprite := Sprite{
			Y:         spriteY,
			X:         int(o.src.ReadOAM(base+1)) - 8,
			TileIndex: o.src.ReadOAM(base + 2),
			Flags:     o.src.ReadOAM(base + 3),
			OAMIndex:  i,
			Height:    height,
		}
		sprite.parseFlags()

		sprites = append(sprites, sprite)

		for pixelX := 0; pixelX < 8; pixelX++ {
			o.priorityBuffer.TryClaimPixel(sprite.X+pixelX, sprite.OAMIndex, sprite.X)
		}
	}

	for i := range sprites {
		var mask uint8
		for pixelX := 0; pixelX < 8; pixelX++ {
			if o.priorityBuffer.GetOwner(sprites[i].X+pixelX) == sprites[i].OAMIndex {
				mask |= 1 << (7 - pixelX)
			}
		}
		sprites[i].PixelMask = mask
	}

	return sprites
}

// GetSprite reads one OAM entry (0-39) without priority resolution.
func (o *OAM) GetSprite(index, height int) *Sprite {
	if index < 0 || index >= spriteCount {
		return nil
	}
	base := index * 4

	sprite := Sprite{
		Y:         int(o.src.ReadOAM(base)) - 16,
		X:         int(o.src.ReadOAM(base+1)) - 8,
		TileIndex: o.src.ReadOAM(base + 2),
		Flags:     o.src.ReadOAM(base + 3),
		OAMIndex:  index,
		Height:    height,
	}
	sprite.parseFlags()

	return &sprite
}
