package video

// SpritePriorityBuffer resolves sprite-to-sprite priority per pixel for
// DMG rendering, see https://gbdev.io/pandocs/OAM.html#drawing-priority.
//
// The rules are strict:
//   - the sprite with the lower X coordinate owns a contested pixel
//   - on equal X, the lower OAM index owns it.
//
// Instead of sorting the scanline's sprites, each sprite claims its eight
// pixels in OAM order and a claim succeeds only if it beats the current
// owner. After all claims, each sprite draws exactly the pixels it owns,
// which makes the render loop order-independent.
type SpritePriorityBuffer struct {
	// ownerIndex is the OAM index owning each pixel, -1 when unowned.
	ownerIndex [FramebufferWidth]int

	// ownerX is the owner's X coordinate, kept for later comparisons.
	ownerX [FramebufferWidth]int
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// TryClaimPixel claims a pixel for a sprite if it beats the current owner.
// Reports whether the claim succeeded.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	currentOwner := s.ownerIndex[pixelX]

	if currentOwner == -1 {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	currentX := s.ownerX[pixelX]

	if spriteX < currentX {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	if spriteX == currentX && spriteIndex < currentOwner {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	return false
}

// GetOwner returns the OAM index owning a pixel, or -1 when none does.
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
