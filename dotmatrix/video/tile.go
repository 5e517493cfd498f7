package video

import "github.com/beeks/go-dotmatrix/dotmatrix/bit"

// TileRow is one 8-pixel row of a tile pattern in the native bit-plane
// format: the low byte carries bit 0 of each pixel's color index, the high
// byte bit 1. Bit 7 is the leftmost pixel.
//
// Example: bytes 0x3C and 0x7E decode as
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	Colors:      0 2 3 3 3 3 2 0
//
// The 2-bit result is a color index, not a shade; BGP or OBP0/OBP1 map it
// to the displayed color, and for sprites index 0 is transparent.
type TileRow struct {
	Low  uint8
	High uint8
}

// GetPixel returns the color index (0-3) at pixelX, 0 being leftmost.
func (t TileRow) GetPixel(pixelX int) int {
	// bit 7 is the leftmost pixel
	bitIndex := uint8(7 - pixelX)

	pixel := 0
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// GetPixelFlipped returns the color index with the row mirrored, for
// sprites with the flip X attribute.
func (t TileRow) GetPixelFlipped(pixelX int) int {
	bitIndex := uint8(pixelX)

	pixel := 0
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// TileSource is read access to tile pattern memory.
type TileSource interface {
	ReadVRAM(address uint16) uint8
}

// FetchTileRow reads the two bit-plane bytes of one tile row.
func FetchTileRow(src TileSource, rowAddress uint16) TileRow {
	return TileRow{
		Low:  src.ReadVRAM(rowAddress),
		High: src.ReadVRAM(rowAddress + 1),
	}
}
