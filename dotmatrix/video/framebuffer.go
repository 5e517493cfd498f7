package video

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// GBColor is one displayable shade, packed as ARGB.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// ByteToColor maps a 2-bit shade number, as produced by feeding a color
// index through one of the palette registers, to its display color.
func ByteToColor(value uint8) GBColor {
	switch value & 0x03 {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	default:
		return BlackColor
	}
}

// paletteShade resolves a color index (0-3) through a palette register.
// The shade for index i sits in bits 2i+1..2i.
func paletteShade(palette, index uint8) GBColor {
	return ByteToColor(bit.ExtractBits(palette, index*2+1, index*2))
}

// LCD dimensions in pixels.
const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// FrameBuffer holds one rendered frame.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
	fb.Fill(WhiteColor)
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Fill paints every pixel with the same color.
func (fb *FrameBuffer) Fill(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice returns the live pixel buffer, row major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Snapshot returns a copy of the pixel buffer, safe to keep across frames.
func (fb *FrameBuffer) Snapshot() []uint32 {
	out := make([]uint32, len(fb.buffer))
	copy(out, fb.buffer)
	return out
}
