package bit

// Combine builds a 16 bit value from a high and a low byte.
func Combine(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Low returns the least significant byte of a 16 bit value.
func Low(value uint16) uint8 {
	return uint8(value & 0xFF)
}

// High returns the most significant byte of a 16 bit value.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet reports whether the bit at index is 1. Indices past 7 report false.
func IsSet(index, b uint8) bool {
	return b&(1<<index) != 0
}

// IsSet16 reports whether the bit at index of a 16 bit value is 1.
func IsSet16(index uint8, value uint16) bool {
	return value&(1<<index) != 0
}

// Set returns b with the bit at index forced to 1.
func Set(index, b uint8) uint8 {
	return b | 1<<index
}

// Clear returns b with the bit at index forced to 0.
func Clear(index, b uint8) uint8 {
	return b &^ (1 << index)
}

// ExtractBits returns the field covering highBit down to lowBit, inclusive,
// shifted down to bit 0. ExtractBits(0b11010110, 6, 4) is 0b101.
func ExtractBits(value, highBit, lowBit uint8) uint8 {
	width := highBit - lowBit + 1
	mask := uint8(1<<width - 1)
	return value >> lowBit & mask
}
