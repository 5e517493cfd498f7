package cpu

import (
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// Arithmetic, logic and control-flow building blocks shared by the opcode
// functions. Flag behavior follows the published LR35902 rules: half
// carries come off bit 3 (bit 11 for 16-bit adds), full carries off bit 7
// (bit 15).

// addToA implements ADD A,value. Flags Z 0 H C.
func (c *CPU) addToA(value uint8) {
	sum := uint16(c.a) + uint16(value)
	half := (c.a&0x0F)+(value&0x0F) > 0x0F

	c.a = uint8(sum)
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, half)
	c.setFlagToCondition(carryFlag, sum > 0xFF)
}

// adcToA implements ADC A,value, adding the carry flag in. Flags Z 0 H C.
func (c *CPU) adcToA(value uint8) {
	carry := c.flagToBit(carryFlag)
	sum := uint16(c.a) + uint16(value) + uint16(carry)
	half := (c.a&0x0F)+(value&0x0F)+carry > 0x0F

	c.a = uint8(sum)
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, half)
	c.setFlagToCondition(carryFlag, sum > 0xFF)
}

// subFromA implements SUB value. Flags Z 1 H C.
func (c *CPU) subFromA(value uint8) {
	borrow := uint16(value) > uint16(c.a)
	half := value&0x0F > c.a&0x0F

	c.a -= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, half)
	c.setFlagToCondition(carryFlag, borrow)
}

// sbcFromA implements SBC A,value, subtracting the carry flag too.
func (c *CPU) sbcFromA(value uint8) {
	carry := c.flagToBit(carryFlag)
	borrow := uint16(value)+uint16(carry) > uint16(c.a)
	half := uint16(value&0x0F)+uint16(carry) > uint16(c.a&0x0F)

	c.a -= value + carry
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, half)
	c.setFlagToCondition(carryFlag, borrow)
}

// andA implements AND value. Flags Z 0 1 0.
func (c *CPU) andA(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// orA implements OR value. Flags Z 0 0 0.
func (c *CPU) orA(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// xorA implements XOR value. Flags Z 0 0 0.
func (c *CPU) xorA(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// compareA implements CP value: SUB flags with A untouched.
func (c *CPU) compareA(value uint8) {
	c.setFlagToCondition(zeroFlag, c.a == value)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0x0F > c.a&0x0F)
	c.setFlagToCondition(carryFlag, value > c.a)
}

// inc implements INC r. Flags Z 0 H -, carry untouched.
func (c *CPU) inc(r *uint8) {
	*r++
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0)
}

// dec implements DEC r. Flags Z 1 H -, carry untouched.
func (c *CPU) dec(r *uint8) {
	*r--
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0x0F)
}

// addToHL implements ADD HL,value. Flags - 0 H C off bits 11/15, zero
// flag untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)
	c.setHL(uint16(sum))
}

// addSignedToSP computes SP plus a signed offset for ADD SP,e and
// LD HL,SP+e. Flags 0 0 H C, with H and C coming off the low byte.
func (c *CPU) addSignedToSP(offset int8) uint16 {
	extended := uint16(offset)

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.sp&0x0F)+(extended&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, (c.sp&0xFF)+(extended&0xFF) > 0xFF)

	return c.sp + extended
}

// rlc rotates left, bit 7 into both carry and bit 0. Flags Z 0 0 C.
func (c *CPU) rlc(r *uint8) {
	out := *r >> 7
	*r = *r<<1 | out
	c.setRotateFlags(*r, out)
}

// rrc rotates right, bit 0 into both carry and bit 7. Flags Z 0 0 C.
func (c *CPU) rrc(r *uint8) {
	out := *r & 1
	*r = *r>>1 | out<<7
	c.setRotateFlags(*r, out)
}

// rl rotates left through carry. Flags Z 0 0 C.
func (c *CPU) rl(r *uint8) {
	out := *r >> 7
	*r = *r<<1 | c.flagToBit(carryFlag)
	c.setRotateFlags(*r, out)
}

// rr rotates right through carry. Flags Z 0 0 C.
func (c *CPU) rr(r *uint8) {
	out := *r & 1
	*r = *r>>1 | c.flagToBit(carryFlag)<<7
	c.setRotateFlags(*r, out)
}

// sla shifts left, bit 7 into carry, bit 0 cleared. Flags Z 0 0 C.
func (c *CPU) sla(r *uint8) {
	out := *r >> 7
	*r <<= 1
	c.setRotateFlags(*r, out)
}

// sra shifts right keeping bit 7, bit 0 into carry. Flags Z 0 0 C.
func (c *CPU) sra(r *uint8) {
	out := *r & 1
	*r = *r>>1 | *r&0x80
	c.setRotateFlags(*r, out)
}

// swap exchanges the nibbles. Flags Z 0 0 0.
func (c *CPU) swap(r *uint8) {
	*r = *r<<4 | *r>>4
	c.setRotateFlags(*r, 0)
}

// srl shifts right, bit 0 into carry, bit 7 cleared. Flags Z 0 0 C.
func (c *CPU) srl(r *uint8) {
	out := *r & 1
	*r >>= 1
	c.setRotateFlags(*r, out)
}

func (c *CPU) setRotateFlags(result, carryOut uint8) {
	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut != 0)
}

// bitTest implements BIT index,value. Flags Z 0 1 -, carry untouched.
func (c *CPU) bitTest(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// daa adjusts A back to packed BCD after an add or subtract.
func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(halfCarryFlag) || (!c.isSetFlag(subFlag) && a&0x0F > 0x09) {
		adjust = 0x06
	}
	if carry || (!c.isSetFlag(subFlag) && a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	if c.isSetFlag(subFlag) {
		a -= adjust
	} else {
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// jumpRelative implements the JR family. Taken jumps cost 12, untaken 8.
func (c *CPU) jumpRelative(condition bool) int {
	offset := c.readSignedImmediate()
	if !condition {
		return 8
	}
	c.pc += uint16(offset)
	return 12
}

// jump implements the JP nn family. Taken jumps cost 16, untaken 12.
func (c *CPU) jump(condition bool) int {
	target := c.readImmediateWord()
	if !condition {
		return 12
	}
	c.pc = target
	return 16
}

// call implements the CALL family. Taken calls cost 24, untaken 12.
func (c *CPU) call(condition bool) int {
	target := c.readImmediateWord()
	if !condition {
		return 12
	}
	c.pushStack(c.pc)
	c.pc = target
	return 24
}

// retCondition implements conditional RET. Taken costs 20, untaken 8.
func (c *CPU) retCondition(condition bool) int {
	if !condition {
		return 8
	}
	c.pc = c.popStack()
	return 20
}

// rst pushes PC and jumps to one of the fixed reset vectors.
func (c *CPU) rst(vector uint16) {
	c.pushStack(c.pc)
	c.pc = vector
}

// readHL loads the byte at (HL).
func (c *CPU) readHL() uint8 {
	return c.bus.Read(c.getHL())
}

// writeHL stores a byte at (HL).
func (c *CPU) writeHL(value uint8) {
	c.bus.Write(c.getHL(), value)
}
